package notify

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/kleinwatch/pkg/domain"
)

// DefaultMaxMessageLength is the Telegram limit for a text message
const DefaultMaxMessageLength = 4096

// FallbackLink is used for listings without own link
const FallbackLink = "https://www.kleinanzeigen.de"

const (
	maxDescriptionLen = 200
	maxCaptionLen     = 1024
	ellipsis          = "..."
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	mdEscaper    = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
)

// Formatter renders listings as Telegram messages
type Formatter struct {
	MaxLength int
}

// Message renders the listing as Markdown text: bold title, description cut to 200 chars,
// address, offer date and link. The result fits MaxLength runes: description, address, title
// and link are shortened in this order as plain text before escaping, so markup is never cut.
func (f Formatter) Message(l domain.Listing) string {
	maxLen := f.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLength
	}

	link := l.Link
	if link == "" {
		link = FallbackLink
	}
	title, address := Clean(l.Title), Clean(l.Address)
	desc := truncate(Clean(l.Description), maxDescriptionLen)
	msg := render(l, title, desc, address, link)
	for _, field := range []*string{&desc, &address, &title, &link} {
		for utf8.RuneCountInString(msg) > maxLen && *field != "" {
			*field = shrink(*field, utf8.RuneCountInString(msg)-maxLen)
			msg = render(l, title, desc, address, link)
		}
	}
	// fixed lines alone exceed a tiny limit
	return capLength(msg, maxLen)
}

func render(l domain.Listing, title, desc, address, link string) string {
	if title == "" {
		title = ellipsis
	}

	var sb strings.Builder
	sb.WriteString("*" + escape(title) + "*\n\n")
	if desc != "" {
		sb.WriteString(escape(desc) + "\n\n")
	}
	if address != "" {
		sb.WriteString("Address: " + escape(address) + "\n")
	}
	if !l.OfferDate.IsZero() {
		sb.WriteString("Date: " + l.OfferDate.Format("02.01.2006") + "\n")
	}
	sb.WriteString("Price: " + priceLabel(l.Price) + "\n")
	sb.WriteString("Link: " + escape(link))
	return sb.String()
}

// Caption renders the plain photo caption
func (f Formatter) Caption(l domain.Listing) string {
	return capLength(Clean(l.Title), maxCaptionLen)
}

// Clean strips html markup and decodes entities of scraped text
func Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

func priceLabel(price float64) string {
	if price == 0 {
		return "free"
	}
	return domain.FormatPrice(price)
}

// escape protects legacy Markdown control characters
func escape(s string) string {
	return mdEscaper.Replace(s)
}

// truncate cuts s to n runes and appends ellipsis if anything was cut
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + ellipsis
}

// shrink drops at least over runes of plain text s, marking the cut with ellipsis.
// Nothing is left when s is too short to keep any of it.
func shrink(s string, over int) string {
	r := []rune(strings.TrimSuffix(s, ellipsis))
	keep := len(r) - over - len(ellipsis)
	if keep <= 0 {
		return ""
	}
	return strings.TrimSpace(string(r[:keep])) + ellipsis
}

// capLength limits s to n runes, the cut text ends with ellipsis
func capLength(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-len(ellipsis)]) + ellipsis
}
