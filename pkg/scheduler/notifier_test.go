package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/kleinwatch/pkg/domain"
	"github.com/umputun/kleinwatch/pkg/notify"
	"github.com/umputun/kleinwatch/pkg/scheduler/mocks"
)

func TestNotifier_Notify(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	p := pref("p1", 42, koeln, wohnzimmer, 0, 50)
	p.SentIDs = map[string]struct{}{"old": {}}

	prefs := &mocks.PreferenceStoreMock{
		AllPreferencesFunc: func(ctx context.Context) ([]domain.Preference, error) {
			return []domain.Preference{p, pref("p2", 43, domain.Location{}, wohnzimmer, 0, 50)}, nil
		},
		MarkSentFunc: func(ctx context.Context, preferenceID, listingID string) error { return nil },
	}

	withPhoto := item("a", koeln, wohnzimmer, 10)
	withPhoto.Photos = []string{"https://img/a.jpg", "https://img/a2.jpg"}
	withPhoto.CreatedAt = now.Add(-time.Hour)
	noPhoto := item("b", koeln, wohnzimmer, 0)
	noPhoto.CreatedAt = now.Add(-2 * time.Hour)
	pricey := item("c", koeln, wohnzimmer, 99) // outside the preference range
	pricey.CreatedAt = now.Add(-time.Hour)
	stale := item("d", koeln, wohnzimmer, 5) // outside the time window
	stale.CreatedAt = now.Add(-8 * 24 * time.Hour)

	listings := &mocks.ListingStoreMock{FindListingsFunc: func(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
		assert.Equal(t, "945", q.LocationID)
		assert.Equal(t, "88", q.CategoryID)
		assert.Equal(t, now.Add(-7*24*time.Hour), q.Since)
		assert.Equal(t, "p1", q.SentFor)
		return []domain.Listing{noPhoto, withPhoto, pricey, stale}, nil
	}}

	channel := &mocks.ChannelMock{
		SendMessageFunc: func(ctx context.Context, chatID int64, text string) error { return nil },
		SendPhotoFunc:   func(ctx context.Context, chatID int64, photoURL, caption string) error { return nil },
	}

	n := NewNotifier(NotifierParams{Preferences: prefs, Listings: listings, Channel: channel, Formatter: notify.Formatter{}})
	n.now = func() time.Time { return now }

	stats, err := n.Notify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NotifyStats{Preferences: 2, Candidates: 2, Sent: 2}, stats)
	assert.Len(t, listings.FindListingsCalls(), 1, "preference without location id skipped")

	require.Len(t, channel.SendPhotoCalls(), 1)
	assert.Equal(t, "https://img/a.jpg", channel.SendPhotoCalls()[0].PhotoURL)
	assert.Equal(t, "item a", channel.SendPhotoCalls()[0].Caption)
	assert.Equal(t, int64(42), channel.SendPhotoCalls()[0].ChatID)

	require.Len(t, channel.SendMessageCalls(), 2)
	assert.Contains(t, channel.SendMessageCalls()[0].Text, "*item b*")
	assert.Contains(t, channel.SendMessageCalls()[0].Text, "Price: free")
	assert.Contains(t, channel.SendMessageCalls()[1].Text, "*item a*")

	require.Len(t, prefs.MarkSentCalls(), 2)
	assert.Equal(t, "p1", prefs.MarkSentCalls()[0].PreferenceID)
	assert.Equal(t, "b", prefs.MarkSentCalls()[0].ListingID)
	assert.Equal(t, "a", prefs.MarkSentCalls()[1].ListingID)
}

func TestNotifier_DeliveryFailures(t *testing.T) {
	prefs := &mocks.PreferenceStoreMock{
		AllPreferencesFunc: func(ctx context.Context) ([]domain.Preference, error) {
			return []domain.Preference{pref("p1", 42, koeln, wohnzimmer, 0, 50)}, nil
		},
		MarkSentFunc: func(ctx context.Context, preferenceID, listingID string) error { return nil },
	}
	a, b := item("a", koeln, wohnzimmer, 10), item("b", koeln, wohnzimmer, 20)
	a.Photos, b.Photos = []string{"https://img/a.jpg"}, []string{"https://img/b.jpg"}
	a.CreatedAt, b.CreatedAt = time.Now(), time.Now()
	listings := &mocks.ListingStoreMock{FindListingsFunc: func(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
		return []domain.Listing{a, b}, nil
	}}
	channel := &mocks.ChannelMock{
		SendPhotoFunc: func(ctx context.Context, chatID int64, photoURL, caption string) error {
			return errors.New("bad photo")
		},
		SendMessageFunc: func(ctx context.Context, chatID int64, text string) error {
			if strings.HasPrefix(text, "*item a*") {
				return errors.New("blocked by user")
			}
			return nil
		},
	}

	n := NewNotifier(NotifierParams{Preferences: prefs, Listings: listings, Channel: channel, Delay: time.Millisecond})
	stats, err := n.Notify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NotifyStats{Preferences: 1, Candidates: 2, Sent: 1, Failed: 1}, stats)
	assert.Len(t, channel.SendPhotoCalls(), 2, "photo failure doesn't stop the message")
	require.Len(t, prefs.MarkSentCalls(), 1, "failed message not marked sent")
	assert.Equal(t, "b", prefs.MarkSentCalls()[0].ListingID)
}

func TestNotifier_FindError(t *testing.T) {
	prefs := &mocks.PreferenceStoreMock{
		AllPreferencesFunc: func(ctx context.Context) ([]domain.Preference, error) {
			return []domain.Preference{pref("p1", 1, koeln, wohnzimmer, 0, 50), pref("p2", 2, berlin, konsolen, 0, 50)}, nil
		},
	}
	listings := &mocks.ListingStoreMock{FindListingsFunc: func(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
		return nil, errors.New("db gone")
	}}
	n := NewNotifier(NotifierParams{Preferences: prefs, Listings: listings, Channel: &mocks.ChannelMock{}})
	require.NoError(t, n.Run(context.Background()))
	assert.Len(t, listings.FindListingsCalls(), 2, "next preference processed after failure")
}

func TestNotifier_PreferencesError(t *testing.T) {
	prefs := &mocks.PreferenceStoreMock{AllPreferencesFunc: func(ctx context.Context) ([]domain.Preference, error) {
		return nil, errors.New("no db")
	}}
	n := NewNotifier(NotifierParams{Preferences: prefs})
	require.Error(t, n.Run(context.Background()))
}

func TestNotifier_Canceled(t *testing.T) {
	prefs := &mocks.PreferenceStoreMock{AllPreferencesFunc: func(ctx context.Context) ([]domain.Preference, error) {
		return []domain.Preference{pref("p1", 1, koeln, wohnzimmer, 0, 50)}, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := NewNotifier(NotifierParams{Preferences: prefs, Listings: &mocks.ListingStoreMock{}})
	_, err := n.Notify(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
