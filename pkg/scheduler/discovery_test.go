package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/kleinwatch/pkg/domain"
	"github.com/umputun/kleinwatch/pkg/scheduler/mocks"
)

var (
	koeln      = domain.Location{City: "Köln", CityID: "945", State: "Nordrhein-Westfalen", StateID: "928"}
	berlin     = domain.Location{City: "Berlin", CityID: "3331", State: "Berlin", StateID: "3331"}
	wohnzimmer = domain.Category{Category: "Haus & Garten", CategoryID: "80", Subcategory: "Wohnzimmer", SubcategoryID: "88"}
	konsolen   = domain.Category{Category: "Elektronik", CategoryID: "161", Subcategory: "Konsolen", SubcategoryID: "279"}
)

func pref(id string, user int64, loc domain.Location, cat domain.Category, from, to int) domain.Preference {
	return domain.Preference{ID: id, UserID: user, Location: loc, Category: cat,
		Price: domain.PriceRange{From: from, To: to}, TimeWindow: domain.DefaultTimeWindow}
}

func item(id string, loc domain.Location, cat domain.Category, price float64) domain.Listing {
	return domain.Listing{ID: id, Title: "item " + id, Description: "desc " + id, Address: "addr " + id,
		Link: "https://www.kleinanzeigen.de/s-anzeige/" + id, Location: loc, Category: cat, Price: price}
}

func ids(listings []domain.Listing) []string {
	res := make([]string, 0, len(listings))
	for _, l := range listings {
		res = append(res, l.ID)
	}
	sort.Strings(res)
	return res
}

func TestDiscovery_Discover(t *testing.T) {
	prefs := &mocks.PreferenceStoreMock{AllPreferencesFunc: func(ctx context.Context) ([]domain.Preference, error) {
		return []domain.Preference{
			pref("p1", 1, koeln, wohnzimmer, 0, 50),
			pref("p2", 2, koeln, wohnzimmer, 0, 0),
			pref("p3", 3, berlin, konsolen, 100, 0),
			pref("p4", 4, domain.Location{City: "Atlantis"}, konsolen, 0, 10), // no location id, not scraped
		}, nil
	}}

	var mu sync.Mutex
	var inserted []domain.Listing
	listings := &mocks.ListingStoreMock{
		KnownIDsFunc: func(ctx context.Context, categoryID, locationID string) (map[string]struct{}, error) {
			return map[string]struct{}{"known-" + categoryID: {}}, nil
		},
		InsertListingsFunc: func(ctx context.Context, ll []domain.Listing) (int, error) {
			mu.Lock()
			defer mu.Unlock()
			inserted = append(inserted, ll...)
			return len(ll), nil
		},
	}

	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, task domain.ScrapeTask, known map[string]struct{}) ([]domain.Listing, error) {
		_, ok := known["known-"+task.CategoryID]
		assert.True(t, ok, "known ids of the task scope passed")
		switch task.Key() {
		case "88_945":
			assert.Equal(t, domain.Limit(50), task.Ceiling)
			return []domain.Listing{
				item("free", koeln, wohnzimmer, 0),
				item("cheap", koeln, wohnzimmer, 30),
				item("too-much", koeln, wohnzimmer, 70), // ceiling reached only in tests
			}, nil
		case "279_3331":
			assert.True(t, task.Ceiling.IsUnbounded())
			return []domain.Listing{item("low", berlin, konsolen, 20), item("ps5", berlin, konsolen, 350)}, nil
		}
		t.Errorf("unexpected task %s", task.Key())
		return nil, nil
	}}

	d := NewDiscovery(DiscoveryParams{Preferences: prefs, Listings: listings, Fetcher: fetcher, MaxWorkers: 2})
	stats, err := d.Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DiscoveryStats{Tasks: 2, Fetched: 5, Matched: 3, Inserted: 3}, stats)
	assert.Equal(t, []string{"cheap", "free", "ps5"}, ids(inserted))
	assert.Len(t, fetcher.FetchCalls(), 2)
	assert.Len(t, listings.KnownIDsCalls(), 2)
}

func TestDiscovery_TaskFailures(t *testing.T) {
	prefs := &mocks.PreferenceStoreMock{AllPreferencesFunc: func(ctx context.Context) ([]domain.Preference, error) {
		return []domain.Preference{pref("p1", 1, koeln, wohnzimmer, 0, 50), pref("p2", 2, berlin, konsolen, 0, 50)}, nil
	}}

	var mu sync.Mutex
	var inserted []domain.Listing
	listings := &mocks.ListingStoreMock{
		KnownIDsFunc: func(ctx context.Context, categoryID, locationID string) (map[string]struct{}, error) {
			if locationID == berlin.CityID {
				return nil, errors.New("db locked")
			}
			return map[string]struct{}{}, nil
		},
		InsertListingsFunc: func(ctx context.Context, ll []domain.Listing) (int, error) {
			mu.Lock()
			defer mu.Unlock()
			inserted = append(inserted, ll...)
			return len(ll), nil
		},
	}
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, task domain.ScrapeTask, known map[string]struct{}) ([]domain.Listing, error) {
		return []domain.Listing{item("a", koeln, wohnzimmer, 10)}, errors.New("status 503")
	}}

	d := NewDiscovery(DiscoveryParams{Preferences: prefs, Listings: listings, Fetcher: fetcher})
	stats, err := d.Discover(context.Background())
	require.NoError(t, err, "task failures don't fail the cycle")
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 1, stats.Inserted, "partial results stored")
	assert.Equal(t, []string{"a"}, ids(inserted))
	require.Len(t, fetcher.FetchCalls(), 1, "no fetch without known ids")
	assert.Equal(t, "88_945", fetcher.FetchCalls()[0].Task.Key())
}

func TestDiscovery_PreferencesError(t *testing.T) {
	prefs := &mocks.PreferenceStoreMock{AllPreferencesFunc: func(ctx context.Context) ([]domain.Preference, error) {
		return nil, errors.New("no db")
	}}
	d := NewDiscovery(DiscoveryParams{Preferences: prefs, Listings: &mocks.ListingStoreMock{}, Fetcher: &mocks.FetcherMock{}})
	err := d.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load preferences")
}

func TestDiscovery_NothingMatched(t *testing.T) {
	prefs := &mocks.PreferenceStoreMock{AllPreferencesFunc: func(ctx context.Context) ([]domain.Preference, error) {
		return []domain.Preference{pref("p1", 1, koeln, wohnzimmer, 0, 0)}, nil
	}}
	listings := &mocks.ListingStoreMock{
		KnownIDsFunc: func(ctx context.Context, categoryID, locationID string) (map[string]struct{}, error) {
			return map[string]struct{}{}, nil
		},
	}
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, task domain.ScrapeTask, known map[string]struct{}) ([]domain.Listing, error) {
		return []domain.Listing{item("paid", koeln, wohnzimmer, 5)}, nil
	}}
	d := NewDiscovery(DiscoveryParams{Preferences: prefs, Listings: listings, Fetcher: fetcher})
	require.NoError(t, d.Run(context.Background()))
	assert.Empty(t, listings.InsertListingsCalls(), "no insert for empty batch")
}
