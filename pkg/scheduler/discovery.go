package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/kleinwatch/pkg/domain"
	"github.com/umputun/kleinwatch/pkg/planner"
)

// Discovery runs the scrape side of the pipeline.
// One cycle:
//   - loads all stored preferences and consolidates them into scrape tasks
//   - runs tasks in parallel, limited by MaxWorkers
//   - for each task loads the ids already stored for its scope and fetches new listings
//   - keeps listings matching at least one price range of the task
//   - stores them with the idempotent bulk insert
//
// A failed task is logged and skipped, listings gathered before a fetch error are still stored.
type Discovery struct {
	preferences PreferenceStore
	listings    ListingStore
	fetcher     Fetcher
	maxWorkers  int
}

// DiscoveryParams holds dependencies of Discovery
type DiscoveryParams struct {
	Preferences PreferenceStore
	Listings    ListingStore
	Fetcher     Fetcher
	MaxWorkers  int
}

// DiscoveryStats summarizes one discovery cycle
type DiscoveryStats struct {
	Tasks    int
	Failed   int
	Fetched  int
	Matched  int
	Inserted int
}

// NewDiscovery makes a discovery runner
func NewDiscovery(p DiscoveryParams) *Discovery {
	if p.MaxWorkers <= 0 {
		p.MaxWorkers = 4
	}
	return &Discovery{preferences: p.Preferences, listings: p.Listings, fetcher: p.Fetcher, maxWorkers: p.MaxWorkers}
}

// Run performs one discovery cycle and logs its stats
func (d *Discovery) Run(ctx context.Context) error {
	st := time.Now()
	stats, err := d.Discover(ctx)
	if err != nil {
		return err
	}
	lgr.Printf("[INFO] discovery done in %v: %d tasks (%d failed), %d fetched, %d matched, %d new",
		time.Since(st).Round(time.Millisecond), stats.Tasks, stats.Failed, stats.Fetched, stats.Matched, stats.Inserted)
	return nil
}

// Discover performs one discovery cycle
func (d *Discovery) Discover(ctx context.Context) (DiscoveryStats, error) {
	prefs, err := d.preferences.AllPreferences(ctx)
	if err != nil {
		return DiscoveryStats{}, fmt.Errorf("load preferences: %w", err)
	}
	tasks := planner.Consolidate(prefs)
	stats := DiscoveryStats{Tasks: len(tasks)}
	lgr.Printf("[DEBUG] discovery: %d preferences, %d tasks", len(prefs), len(tasks))

	var mu sync.Mutex
	g := errgroup.Group{}
	g.SetLimit(d.maxWorkers)
	for _, task := range tasks {
		g.Go(func() error {
			res, err := d.runTask(ctx, task)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lgr.Printf("[WARN] task %s failed: %v", task.Key(), err)
				stats.Failed++
			}
			stats.Fetched += res.Fetched
			stats.Matched += res.Matched
			stats.Inserted += res.Inserted
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors, failures are counted
	if ctx.Err() != nil {
		return stats, fmt.Errorf("discovery interrupted: %w", ctx.Err())
	}
	return stats, nil
}

// runTask fetches, filters and stores one task. Partial fetch results are stored
// together with the returned fetch error.
func (d *Discovery) runTask(ctx context.Context, task domain.ScrapeTask) (DiscoveryStats, error) {
	var res DiscoveryStats
	known, err := d.listings.KnownIDs(ctx, task.CategoryID, task.LocationID)
	if err != nil {
		return res, fmt.Errorf("known ids: %w", err)
	}

	fetched, fetchErr := d.fetcher.Fetch(ctx, task, known)
	res.Fetched = len(fetched)
	matched := planner.FilterByPrice(fetched, task.Ranges)
	res.Matched = len(matched)

	if len(matched) > 0 {
		inserted, err := d.listings.InsertListings(ctx, matched)
		if err != nil {
			return res, fmt.Errorf("store listings: %w", err)
		}
		res.Inserted = inserted
	}
	lgr.Printf("[DEBUG] task %s, ceiling %s: fetched %d, matched %d, new %d",
		task.Key(), task.Ceiling, res.Fetched, res.Matched, res.Inserted)

	if fetchErr != nil {
		return res, fmt.Errorf("fetch: %w", fetchErr)
	}
	return res, nil
}
