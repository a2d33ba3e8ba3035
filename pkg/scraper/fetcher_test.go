package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/kleinwatch/pkg/domain"
)

var pageRe = regexp.MustCompile(`seite:(\d+)`)

// pagedServer serves pages[n-1] for page n, an empty page past the end
func pagedServer(t *testing.T, pages map[int]string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		m := pageRe.FindStringSubmatch(r.URL.Path)
		if len(m) != 2 {
			t.Errorf("unexpected path %s", r.URL.Path)
			return
		}
		n, _ := strconv.Atoi(m[1])
		body, ok := pages[n]
		if !ok {
			body = pageHTML()
		}
		if body == "500" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func testFetcher(baseURL string, now time.Time) *Fetcher {
	f := NewFetcher(FetcherParams{BaseURL: baseURL, Resolver: catalogStub{}})
	f.now = func() time.Time { return now }
	f.parser.now = f.now
	return f
}

func ids(listings []domain.Listing) []string {
	res := make([]string, 0, len(listings))
	for _, l := range listings {
		res = append(res, l.ID)
	}
	return res
}

func TestFetcher_Fetch(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -120).Format("02.01.2006")
	recent := now.AddDate(0, 0, -30).Format("02.01.2006")
	task := domain.ScrapeTask{CategoryID: "88", LocationID: "945", Ceiling: domain.Unbounded()}

	tbl := []struct {
		name      string
		task      domain.ScrapeTask
		pages     map[int]string
		known     map[string]struct{}
		wantIDs   []string
		wantCalls int32
		wantErr   bool
	}{
		{
			name: "stops at listing older than cutoff",
			task: task,
			pages: map[int]string{1: pageHTML(
				fixture{id: "1", title: "Sofa", price: "Zu verschenken", date: "Heute, 10:00"},
				fixture{id: "2", title: "Stuhl", price: "Zu verschenken", date: old},
				fixture{id: "3", title: "Tisch", price: "Zu verschenken", date: "Heute, 10:00"},
			)},
			wantIDs: []string{"1"}, wantCalls: 1,
		},
		{
			name: "stops at negotiable listing",
			task: task,
			pages: map[int]string{1: pageHTML(
				fixture{id: "1", title: "Lampe", price: "5 €", date: "Heute, 10:00"},
				fixture{id: "2", title: "Sessel", price: "40 € VB", date: "Heute, 10:00"},
				fixture{id: "3", title: "Regal", price: "6 €", date: "Heute, 10:00"},
			)},
			wantIDs: []string{"1"}, wantCalls: 1,
		},
		{
			name: "stops above finite ceiling",
			task: domain.ScrapeTask{CategoryID: "88", LocationID: "945", Ceiling: domain.Limit(10)},
			pages: map[int]string{1: pageHTML(
				fixture{id: "1", title: "Lampe", price: "5 €", date: "Heute, 10:00"},
				fixture{id: "2", title: "Regal", price: "10 €", date: recent},
				fixture{id: "3", title: "Sofa", price: "12 €", date: "Heute, 10:00"},
			)},
			wantIDs: []string{"1", "2"}, wantCalls: 1,
		},
		{
			name: "walks pages until empty page",
			task: task,
			pages: map[int]string{
				1: pageHTML(fixture{id: "1", title: "Sofa", price: "Zu verschenken", date: "Heute, 10:00"},
					fixture{id: "2", title: "Bett", price: "Zu verschenken", date: "Gestern, 10:00"}),
				2: pageHTML(fixture{id: "3", title: "Tisch", price: "1 €", date: "Heute, 10:00"}),
			},
			wantIDs: []string{"1", "2", "3"}, wantCalls: 3,
		},
		{
			name: "known listings skipped, page without new listings stops",
			task: task,
			pages: map[int]string{
				1: pageHTML(fixture{id: "1", title: "Sofa", price: "Zu verschenken", date: "Heute, 10:00"},
					fixture{id: "2", title: "Bett", price: "2 €", date: "Heute, 10:00"}),
				2: pageHTML(fixture{id: "3", title: "Tisch", price: "3 €", date: "Heute, 10:00"},
					fixture{id: "4", title: "Stuhl", price: "4 €", date: "Heute, 10:00"}),
				3: pageHTML(fixture{id: "5", title: "Bank", price: "5 €", date: "Heute, 10:00"}),
			},
			known:   map[string]struct{}{"1": {}, "3": {}, "4": {}},
			wantIDs: []string{"2"}, wantCalls: 2,
		},
		{
			// a new listing behind a fully known page waits until the known ones go away
			name: "fully known first page hides new listing on next page",
			task: domain.ScrapeTask{CategoryID: "88", LocationID: "945", Ceiling: domain.Limit(50)},
			pages: map[int]string{
				1: pageHTML(fixture{id: "1", title: "Sofa", price: "5 €", date: "Heute, 10:00"},
					fixture{id: "2", title: "Bett", price: "10 €", date: "Heute, 10:00"}),
				2: pageHTML(fixture{id: "3", title: "Tisch", price: "20 €", date: "Heute, 10:00"}),
			},
			known:   map[string]struct{}{"1": {}, "2": {}},
			wantIDs: []string{}, wantCalls: 1,
		},
		{
			name: "known old listing does not trigger cutoff",
			task: task,
			pages: map[int]string{1: pageHTML(
				fixture{id: "1", title: "Sofa", price: "Zu verschenken", date: old},
				fixture{id: "2", title: "Bett", price: "Zu verschenken", date: "Heute, 10:00"},
			)},
			known:   map[string]struct{}{"1": {}},
			wantIDs: []string{"2"}, wantCalls: 2,
		},
		{
			name: "invalid and unpriced fragments skipped",
			task: task,
			pages: map[int]string{1: pageHTML(
				fixture{id: "", title: "No id", price: "Zu verschenken", date: "Heute, 10:00"},
				fixture{id: "2", title: "Regal", price: "Preis auf Anfrage", date: "Heute, 10:00"},
				fixture{id: "3", title: "Bad date", price: "1 €", date: "bald"},
				fixture{id: "4", title: "Bett", price: "2 €", date: "Heute, 10:00"},
			)},
			wantIDs: []string{"4"}, wantCalls: 2,
		},
		{
			name: "page error returns partial results",
			task: task,
			pages: map[int]string{
				1: pageHTML(fixture{id: "1", title: "Sofa", price: "Zu verschenken", date: "Heute, 10:00"}),
				2: "500",
			},
			wantIDs: []string{"1"}, wantCalls: 2, wantErr: true,
		},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			ts, calls := pagedServer(t, tt.pages)
			f := testFetcher(ts.URL, now)
			res, err := f.Fetch(context.Background(), tt.task, tt.known)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrStatus)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantIDs, ids(res))
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(calls))
		})
	}
}

func TestFetcher_MaxPages(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		id := strconv.Itoa(int(n))
		_, _ = w.Write([]byte(pageHTML(fixture{id: id, title: "Item " + id, price: "Zu verschenken", date: "Heute, 10:00"})))
	}))
	defer ts.Close()

	f := NewFetcher(FetcherParams{BaseURL: ts.URL, Resolver: catalogStub{}, MaxPages: 3})
	res, err := f.Fetch(context.Background(), domain.ScrapeTask{CategoryID: "88", LocationID: "945",
		Ceiling: domain.Unbounded()}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(res))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetcher_FallbackScope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><article class="aditem" data-adid="77">
<h2 class="text-module-begin"><a href="/s-anzeige/lampe/77">Lampe</a></h2>
<div class="aditem-main--top--right">Heute, 09:00</div>
<div class="aditem-main--middle--price-shipping"><p class="aditem-main--middle--price-shipping--price">Zu verschenken</p></div>
</article></body></html>`))
	}))
	defer ts.Close()

	task := domain.ScrapeTask{CategoryID: "161", LocationID: "3331", Ceiling: domain.Limit(0),
		Location: domain.Location{City: "Berlin", CityID: "3331", State: "Berlin", StateID: "3331"},
		Category: domain.Category{Category: "Elektronik", CategoryID: "161"}}
	f := NewFetcher(FetcherParams{BaseURL: ts.URL, Resolver: catalogStub{}, MaxPages: 1})
	res, err := f.Fetch(context.Background(), task, nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, task.Location, res[0].Location)
	assert.Equal(t, task.Category, res[0].Category)
	assert.Equal(t, ts.URL+"/s-anzeige/lampe/77", res[0].Link)
}

func TestFetcher_RequestShape(t *testing.T) {
	var gotPath, gotUA, gotLang string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotUA, gotLang = r.URL.Path, r.Header.Get("User-Agent"), r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte(pageHTML()))
	}))
	defer ts.Close()

	f := NewFetcher(FetcherParams{BaseURL: ts.URL + "/", Resolver: catalogStub{}, UserAgent: "kleinwatch-test"})
	res, err := f.Fetch(context.Background(), domain.ScrapeTask{CategoryID: "88", LocationID: "945"}, nil)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Equal(t, "/sortierung:preis/seite:1/c88/l945", gotPath)
	assert.Equal(t, "kleinwatch-test", gotUA)
	assert.NotEmpty(t, gotLang)
}

func TestFetcher_PageURL(t *testing.T) {
	f := NewFetcher(FetcherParams{})
	assert.Equal(t, "https://www.kleinanzeigen.de/sortierung:preis/seite:7/c80/l928",
		f.PageURL(domain.ScrapeTask{CategoryID: "80", LocationID: "928"}, 7))
}

func TestFetcher_ContextCanceled(t *testing.T) {
	ts, calls := pagedServer(t, nil)
	f := testFetcher(ts.URL, time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, domain.ScrapeTask{CategoryID: "88", LocationID: "945"}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}
