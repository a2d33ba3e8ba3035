package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/time/rate"

	"github.com/umputun/kleinwatch/pkg/domain"
	"github.com/umputun/kleinwatch/pkg/notify"
)

// Notifier delivers stored listings matching each preference to its owner.
// Candidates come from the store scoped by the preference location, category, time window
// and sent-set; each one is checked again with Preference.Matches before delivery.
// A listing is added to the sent-set only after its text message is delivered,
// a failed delivery leaves it eligible for the next cycle.
type Notifier struct {
	preferences PreferenceStore
	listings    ListingStore
	channel     Channel
	formatter   notify.Formatter
	limiter     *rate.Limiter
	batchSize   int
	now         func() time.Time
}

// NotifierParams holds dependencies of Notifier
type NotifierParams struct {
	Preferences PreferenceStore
	Listings    ListingStore
	Channel     Channel
	Formatter   notify.Formatter
	Delay       time.Duration // pause after each delivered listing, 0 for none
	BatchSize   int           // max listings per preference and cycle, 0 for all
}

// NotifyStats summarizes one notification cycle
type NotifyStats struct {
	Preferences int
	Candidates  int
	Sent        int
	Failed      int
}

// NewNotifier makes a notifier
func NewNotifier(p NotifierParams) *Notifier {
	limit := rate.Inf
	if p.Delay > 0 {
		limit = rate.Every(p.Delay)
	}
	return &Notifier{
		preferences: p.Preferences,
		listings:    p.Listings,
		channel:     p.Channel,
		formatter:   p.Formatter,
		limiter:     rate.NewLimiter(limit, 1),
		batchSize:   p.BatchSize,
		now:         time.Now,
	}
}

// Run performs one notification cycle and logs its stats
func (n *Notifier) Run(ctx context.Context) error {
	stats, err := n.Notify(ctx)
	if err != nil {
		return err
	}
	if stats.Candidates > 0 {
		lgr.Printf("[INFO] notification done: %d preferences, %d candidates, %d sent, %d failed",
			stats.Preferences, stats.Candidates, stats.Sent, stats.Failed)
	}
	return nil
}

// Notify performs one notification cycle over all preferences
func (n *Notifier) Notify(ctx context.Context) (NotifyStats, error) {
	prefs, err := n.preferences.AllPreferences(ctx)
	if err != nil {
		return NotifyStats{}, fmt.Errorf("load preferences: %w", err)
	}

	stats := NotifyStats{Preferences: len(prefs)}
	for _, p := range prefs {
		if ctx.Err() != nil {
			return stats, fmt.Errorf("notification interrupted: %w", ctx.Err())
		}
		if err := n.notifyPreference(ctx, p, &stats); err != nil {
			lgr.Printf("[WARN] notification for preference %s of %d failed: %v", p.ID, p.UserID, err)
		}
	}
	return stats, nil
}

func (n *Notifier) notifyPreference(ctx context.Context, p domain.Preference, stats *NotifyStats) error {
	if p.Location.ID() == "" || p.Category.ID() == "" {
		lgr.Printf("[DEBUG] preference %s of %d has no location or category id, skipped", p.ID, p.UserID)
		return nil
	}

	now := n.now()
	candidates, err := n.listings.FindListings(ctx, domain.ListingQuery{
		LocationID: p.Location.ID(),
		CategoryID: p.Category.ID(),
		Since:      p.Since(now),
		SentFor:    p.ID,
		Limit:      n.batchSize,
	})
	if err != nil {
		return fmt.Errorf("find listings: %w", err)
	}

	for _, l := range candidates {
		if p.Sent(l.ID) || !p.Matches(l, now) {
			continue
		}
		stats.Candidates++
		if err := n.deliver(ctx, p, l); err != nil {
			stats.Failed++
			lgr.Printf("[WARN] failed to deliver listing %s to %d: %v", l.ID, p.UserID, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		stats.Sent++
		if err := n.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("delivery pause: %w", err)
		}
	}
	return nil
}

// deliver sends the first photo (best-effort) and the text message, then records the listing as sent
func (n *Notifier) deliver(ctx context.Context, p domain.Preference, l domain.Listing) error {
	if len(l.Photos) > 0 {
		if err := n.channel.SendPhoto(ctx, p.UserID, l.Photos[0], n.formatter.Caption(l)); err != nil {
			lgr.Printf("[DEBUG] photo for listing %s to %d not sent: %v", l.ID, p.UserID, err)
		}
	}
	if err := n.channel.SendMessage(ctx, p.UserID, n.formatter.Message(l)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if err := n.preferences.MarkSent(ctx, p.ID, l.ID); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	lgr.Printf("[DEBUG] listing %s delivered to %d for preference %s", l.ID, p.UserID, p.ID)
	return nil
}
