// Package feed renders listings delivered to a user as an RSS 2.0 feed
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/kleinwatch/pkg/domain"
	"github.com/umputun/kleinwatch/pkg/notify"
)

// Generator creates RSS feeds from delivered listings
type Generator struct {
	baseURL string
	now     func() time.Time
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// GenerateRSS creates an RSS 2.0 feed of the user's delivered listings, entries keep the given order
func (g *Generator) GenerateRSS(userID int64, entries []Entry) (string, error) {
	selfLink := fmt.Sprintf("%s/rss/%d", g.baseURL, userID)

	rssItems := make([]*RSSItem, 0, len(entries))
	for _, e := range entries {
		rssItems = append(rssItems, g.convertToRSSItem(e))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         fmt.Sprintf("Kleinwatch - matches for %d", userID),
			Link:          g.baseURL + "/",
			Description:   "Listings matching your saved search preferences",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: g.now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

// convertToRSSItem converts a delivered listing to an RSS item
func (g *Generator) convertToRSSItem(e Entry) *RSSItem {
	l := e.Listing
	price := "free"
	if l.Price > 0 {
		price = domain.FormatPrice(l.Price)
	}

	var desc strings.Builder
	if d := notify.Clean(l.Description); d != "" {
		desc.WriteString(d + "\n\n")
	}
	desc.WriteString("Price: " + price)
	if l.Address != "" {
		desc.WriteString("\nAddress: " + notify.Clean(l.Address))
	}
	if !l.OfferDate.IsZero() {
		desc.WriteString("\nDate: " + l.OfferDate.Format("02.01.2006"))
	}

	link := l.Link
	if link == "" {
		link = notify.FallbackLink
	}

	item := &RSSItem{
		Title:       fmt.Sprintf("%s (%s)", notify.Clean(l.Title), price),
		Link:        link,
		GUID:        GUID{Value: l.ID},
		Description: desc.String(),
		PubDate:     e.SentAt.Format(time.RFC1123Z),
	}
	if cat := l.Category.Display(); l.Category.ID() != "" {
		item.Categories = []string{cat}
	}
	if len(l.Photos) > 0 {
		item.Enclosure = &Enclosure{URL: l.Photos[0], Type: "image/jpeg"}
	}
	return item
}
