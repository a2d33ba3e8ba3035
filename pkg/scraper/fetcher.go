// Package scraper walks the price-sorted listing index of a category and location
// and turns its pages into listing records.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/umputun/kleinwatch/pkg/domain"
)

// DefaultBaseURL is the listing site root
const DefaultBaseURL = "https://www.kleinanzeigen.de"

const maxPageSize = 10 * 1024 * 1024

// ErrStatus is returned for non-2xx listing page responses
var ErrStatus = errors.New("unexpected status")

// Fetcher retrieves listings for a scrape task.
// It is responsible for:
//   - requesting pages of the price-ascending index strictly one after another
//   - stopping at the first negotiable listing, the first price above a finite ceiling
//     or the first new listing older than the cutoff
//   - stopping when a page brings nothing new, on an empty page and on transport errors
//   - pacing requests with a limiter shared by all tasks
//
// Known listing ids are passed per call, the fetcher keeps no state between tasks.
type Fetcher struct {
	client     *http.Client
	parser     *Parser
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	maxPages   int
	cutoffDays int
	now        func() time.Time
}

// FetcherParams defines fetcher settings
type FetcherParams struct {
	BaseURL     string
	Timeout     time.Duration
	MaxPages    int
	CutoffDays  int
	RequestRate float64 // requests per second, 0 for unlimited
	UserAgent   string
	Resolver    Resolver
}

// stop reasons, used in logs
const (
	stopNegotiable = "negotiable listing"
	stopCeiling    = "price above ceiling"
	stopCutoff     = "listing older than cutoff"
	stopNoProgress = "no new listings on page"
	stopEmpty      = "empty page"
	stopMaxPages   = "page limit reached"
)

// NewFetcher makes a fetcher with defaults for empty params
func NewFetcher(p FetcherParams) *Fetcher {
	if p.BaseURL == "" {
		p.BaseURL = DefaultBaseURL
	}
	if p.Timeout == 0 {
		p.Timeout = 10 * time.Second
	}
	if p.MaxPages == 0 {
		p.MaxPages = 50
	}
	if p.CutoffDays == 0 {
		p.CutoffDays = 90
	}
	limit := rate.Inf
	if p.RequestRate > 0 {
		limit = rate.Limit(p.RequestRate)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		lgr.Printf("[WARN] can't make cookie jar, continue without: %v", err)
		jar = nil
	}

	baseURL := strings.TrimRight(p.BaseURL, "/")
	return &Fetcher{
		client:     &http.Client{Timeout: p.Timeout, Jar: jar},
		parser:     NewParser(baseURL, p.Resolver),
		limiter:    rate.NewLimiter(limit, 1),
		baseURL:    baseURL,
		userAgent:  p.UserAgent,
		maxPages:   p.MaxPages,
		cutoffDays: p.CutoffDays,
		now:        time.Now,
	}
}

// PageURL returns the url of the given 1-based index page of the task
func (f *Fetcher) PageURL(task domain.ScrapeTask, page int) string {
	return fmt.Sprintf("%s/sortierung:preis/seite:%d/c%s/l%s", f.baseURL, page, task.CategoryID, task.LocationID)
}

// Fetch collects new listings of the task in ascending price order.
// Listings gathered before a stop are always returned, also together with a page error.
func (f *Fetcher) Fetch(ctx context.Context, task domain.ScrapeTask, known map[string]struct{}) ([]domain.Listing, error) {
	now := f.now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -f.cutoffDays)

	var results []domain.Listing
	for page := 1; page <= f.maxPages; page++ {
		parsed, err := f.fetchPage(ctx, task, page)
		if err != nil {
			return results, fmt.Errorf("task %s, page %d: %w", task.Key(), page, err)
		}
		if len(parsed.Items) == 0 {
			lgr.Printf("[DEBUG] task %s stopped at page %d: %s", task.Key(), page, stopEmpty)
			return results, nil
		}

		accepted, reason := f.collect(task, parsed.Items, known, cutoff, &results)
		if reason == "" && accepted == 0 {
			reason = stopNoProgress
		}
		if reason != "" {
			lgr.Printf("[DEBUG] task %s stopped at page %d: %s, %d listings", task.Key(), page, reason, len(results))
			return results, nil
		}
	}
	lgr.Printf("[DEBUG] task %s stopped: %s, %d listings", task.Key(), stopMaxPages, len(results))
	return results, nil
}

// collect appends acceptable listings of a page to results in page order.
// It returns the number of accepted listings and a non-empty reason if the task has to stop.
func (f *Fetcher) collect(task domain.ScrapeTask, items []Item, known map[string]struct{}, cutoff time.Time,
	results *[]domain.Listing) (accepted int, reason string) {
	for _, it := range items {
		switch it.Kind {
		case domain.PriceNegotiable:
			return accepted, stopNegotiable
		case domain.PriceFixed:
			if it.Err == nil && task.Ceiling.Exceeded(it.Price) {
				return accepted, stopCeiling
			}
		case domain.PriceFree:
		default:
			continue
		}

		if it.Err != nil || it.Listing == nil {
			lgr.Printf("[DEBUG] skip listing fragment: %v", it.Err)
			continue
		}
		if _, ok := known[it.Listing.ID]; ok {
			continue
		}
		if it.Listing.OfferDate.Before(cutoff) {
			return accepted, stopCutoff
		}

		l := *it.Listing
		if l.Location.ID() == "" {
			l.Location = task.Location
		}
		if l.Category.ID() == "" {
			l.Category = task.Category
		}
		*results = append(*results, l)
		accepted++
	}
	return accepted, ""
}

func (f *Fetcher) fetchPage(ctx context.Context, task domain.ScrapeTask, page int) (Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return Page{}, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.PageURL(task, page), http.NoBody)
	if err != nil {
		return Page{}, fmt.Errorf("make request: %w", err)
	}
	addBrowserHeaders(req, f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("get page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return Page{}, fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}

	parsed, err := f.parser.ParsePage(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return Page{}, err
	}
	return parsed, nil
}
