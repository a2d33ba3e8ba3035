// Package scheduler runs the periodic discovery and notification cycles
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"

	"github.com/umputun/kleinwatch/pkg/domain"
)

//go:generate moq -out mocks/preference_store.go -pkg mocks -skip-ensure -fmt goimports . PreferenceStore
//go:generate moq -out mocks/listing_store.go -pkg mocks -skip-ensure -fmt goimports . ListingStore
//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/channel.go -pkg mocks -skip-ensure -fmt goimports . Channel
//go:generate moq -out mocks/cycle.go -pkg mocks -skip-ensure -fmt goimports . Cycle

// PreferenceStore provides preferences and records delivered listings
type PreferenceStore interface {
	AllPreferences(ctx context.Context) ([]domain.Preference, error)
	MarkSent(ctx context.Context, preferenceID, listingID string) error
}

// ListingStore persists and queries listings
type ListingStore interface {
	KnownIDs(ctx context.Context, categoryID, locationID string) (map[string]struct{}, error)
	InsertListings(ctx context.Context, listings []domain.Listing) (int, error)
	FindListings(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error)
}

// Fetcher collects new listings for a scrape task
type Fetcher interface {
	Fetch(ctx context.Context, task domain.ScrapeTask, known map[string]struct{}) ([]domain.Listing, error)
}

// Channel delivers notifications to a user
type Channel interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error
}

// Cycle is one kind of periodic work
type Cycle interface {
	Run(ctx context.Context) error
}

// Scheduler runs discovery and notification cycles on their own intervals.
// Each cycle runs once on start and then on every tick; a cycle still running
// when its next tick comes is skipped, so there is never more than one instance of a kind.
type Scheduler struct {
	discovery         Cycle
	notification      Cycle
	discoveryInterval time.Duration
	notifyInterval    time.Duration

	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
	locks  map[string]*sync.Mutex
}

// Params for NewScheduler
type Params struct {
	Discovery         Cycle
	Notification      Cycle
	DiscoveryInterval time.Duration
	NotifyInterval    time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(params Params) *Scheduler {
	if params.DiscoveryInterval <= 0 {
		params.DiscoveryInterval = 5 * time.Minute
	}
	if params.NotifyInterval <= 0 {
		params.NotifyInterval = 5 * time.Minute
	}
	return &Scheduler{
		discovery:         params.Discovery,
		notification:      params.Notification,
		discoveryInterval: params.DiscoveryInterval,
		notifyInterval:    params.NotifyInterval,
		locks:             map[string]*sync.Mutex{"discovery": {}, "notification": {}},
	}
}

// Start registers both cycles, starts the cron and runs each cycle once right away
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	logger := cronLogger{}
	s.cron = cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	jobs := []struct {
		name     string
		cycle    Cycle
		interval time.Duration
	}{
		{"discovery", s.discovery, s.discoveryInterval},
		{"notification", s.notification, s.notifyInterval},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", j.interval), func() { s.run(ctx, j.name, j.cycle) }); err != nil {
			s.cancel()
			return fmt.Errorf("schedule %s: %w", j.name, err)
		}
	}
	s.cron.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// discovery first, so the first notification cycle sees fresh listings
		s.run(ctx, "discovery", s.discovery)
		s.run(ctx, "notification", s.notification)
	}()

	lgr.Printf("[INFO] scheduler started, discovery every %v, notification every %v", s.discoveryInterval, s.notifyInterval)
	return nil
}

// Stop cancels running cycles and waits for them to return
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// run executes the cycle unless another instance of the same kind is still running
func (s *Scheduler) run(ctx context.Context, name string, c Cycle) {
	if ctx.Err() != nil {
		return
	}
	lock := s.locks[name]
	if !lock.TryLock() {
		lgr.Printf("[DEBUG] %s cycle still running, skipped", name)
		return
	}
	defer lock.Unlock()

	if err := c.Run(ctx); err != nil {
		lgr.Printf("[WARN] %s cycle failed: %v", name, err)
	}
}

// cronLogger sends cron messages to lgr
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	lgr.Printf("[DEBUG] cron %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	lgr.Printf("[WARN] cron %s: %v %v", msg, err, keysAndValues)
}
