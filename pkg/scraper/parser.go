package scraper

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/umputun/kleinwatch/pkg/domain"
)

// price label markers
const (
	freeMarker       = "Zu verschenken"
	currencyMarker   = "€"
	negotiableMarker = "VB"
)

// ErrInvalidListing is returned for fragments without title or ad id
var ErrInvalidListing = errors.New("invalid listing")

// Resolver maps breadcrumb names to taxonomy ids
type Resolver interface {
	ResolveLocation(city, state string) domain.Location
	FindCategory(category, subcategory string) domain.Category
}

// Parser extracts listings from a listing index page
type Parser struct {
	baseURL  string
	resolver Resolver
	now      func() time.Time
}

// Page is a parsed listing index page. Items keep page order.
type Page struct {
	Location domain.Location
	Category domain.Category
	Items    []Item
}

// Item is one listing fragment of a page. Listing is nil when Err is set,
// Price is known for free and fixed kinds even if the listing itself is invalid.
type Item struct {
	Kind    domain.PriceKind
	Price   float64
	Listing *domain.Listing
	Err     error
}

// NewParser makes a parser resolving relative links against baseURL
func NewParser(baseURL string, resolver Resolver) *Parser {
	return &Parser{baseURL: strings.TrimRight(baseURL, "/"), resolver: resolver, now: time.Now}
}

// ParsePage parses the html of one listing index page
func (p *Parser) ParsePage(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}

	crumb := parseBreadcrumb(doc)
	page := Page{
		Location: p.resolver.ResolveLocation(crumb.city, crumb.state),
		Category: p.resolver.FindCategory(crumb.category, crumb.subcategory),
	}

	doc.Find("div.aditem-main--middle--price-shipping").Each(func(_ int, s *goquery.Selection) {
		priceEl := s.Find("p.aditem-main--middle--price-shipping--price").First()
		if priceEl.Length() == 0 {
			return
		}
		article := s.ParentsFiltered("article.aditem").First()
		if article.Length() == 0 {
			return
		}

		item := Item{}
		item.Kind, item.Price, item.Err = ClassifyPrice(text(priceEl))
		if item.Err != nil || item.Kind == domain.PriceNegotiable || item.Kind == domain.PriceUnknown {
			page.Items = append(page.Items, item)
			return
		}

		listing, err := p.parseListing(article, item.Price)
		if err != nil {
			item.Err = err
		} else {
			listing.Location, listing.Category = page.Location, page.Category
			item.Listing = &listing
		}
		page.Items = append(page.Items, item)
	})

	return page, nil
}

// ClassifyPrice classifies a price label and parses fixed prices.
// "1.250,50 €" parses as 1250.5, dot is the thousands separator.
func ClassifyPrice(label string) (domain.PriceKind, float64, error) {
	switch {
	case strings.Contains(label, freeMarker):
		return domain.PriceFree, 0, nil
	case strings.Contains(label, currencyMarker) && !strings.Contains(label, negotiableMarker):
		num := strings.NewReplacer(currencyMarker, "", ".", "", " ", "", "\u00a0", "").Replace(label)
		num = strings.ReplaceAll(strings.TrimSpace(num), ",", ".")
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return domain.PriceFixed, 0, fmt.Errorf("parse price %q: %w", label, err)
		}
		return domain.PriceFixed, v, nil
	case strings.Contains(label, negotiableMarker):
		return domain.PriceNegotiable, 0, nil
	default:
		return domain.PriceUnknown, 0, nil
	}
}

func (p *Parser) parseListing(article *goquery.Selection, price float64) (domain.Listing, error) {
	res := domain.Listing{
		ID:          strings.TrimSpace(article.AttrOr("data-adid", "")),
		Title:       parseTitle(article),
		Description: text(article.Find("p.aditem-main--middle--description").First()),
		Address:     text(article.Find("div.aditem-main--top--left").First()),
		Link:        p.parseLink(article),
		Photos:      parsePhotos(article),
		Price:       price,
	}
	if res.ID == "" || res.Title == "" {
		return domain.Listing{}, ErrInvalidListing
	}

	dateLabel := text(article.Find("div.aditem-main--top--right").First())
	if dateLabel == "" {
		return domain.Listing{}, fmt.Errorf("listing %s: no date", res.ID)
	}
	date, err := ParseOfferDate(dateLabel, p.now())
	if err != nil {
		return domain.Listing{}, fmt.Errorf("listing %s: %w", res.ID, err)
	}
	res.OfferDate = date
	return res, nil
}

func parseTitle(article *goquery.Selection) string {
	h2 := article.Find("h2.text-module-begin").First()
	if h2.Length() == 0 {
		return ""
	}
	if a := h2.Find("a").First(); a.Length() > 0 {
		return text(a)
	}
	return text(h2)
}

func (p *Parser) parseLink(article *goquery.Selection) string {
	href, ok := article.Find("a[href]").First().Attr("href")
	if !ok {
		return ""
	}
	if strings.HasPrefix(href, "/") {
		return p.baseURL + href
	}
	return href
}

func parsePhotos(article *goquery.Selection) []string {
	var res []string
	article.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", "")
		if src == "" {
			src = img.AttrOr("data-src", "")
		}
		if src != "" && strings.Contains(src, "kleinanzeigen.de") {
			res = append(res, src)
		}
	})
	return res
}

type breadcrumb struct {
	category, subcategory, city, state string
}

// parseBreadcrumb reads category and location names from the page header,
// e.g. "Wohnzimmer in Berlin - Berlin" with "Haus & Garten" as the parent link
func parseBreadcrumb(doc *goquery.Document) breadcrumb {
	var res breadcrumb
	bc := doc.Find("div.breadcrump").First()
	if bc.Length() == 0 || bc.Find("a.breadcrump-link").Length() == 0 {
		return res
	}

	if summary := text(bc.Find("h1 span.breadcrump-summary").First()); strings.Contains(summary, " in ") {
		place := strings.SplitN(summary, " in ", 2)[1]
		if city, state, ok := strings.Cut(place, " - "); ok {
			res.city, res.state = strings.TrimSpace(city), strings.TrimSpace(state)
		} else {
			res.state = strings.TrimSpace(place)
		}
	}

	leaf := bc.Find("h1 span.breadcrump-leaf").First()
	leafName := strings.TrimSpace(strings.SplitN(text(leaf), " in ", 2)[0])
	parent := bc.Find("a.breadcrump-link").FilterFunction(func(_ int, s *goquery.Selection) bool {
		_, hasTitle := s.Attr("title")
		return !hasTitle
	}).First()

	if parent.Length() > 0 {
		res.category = text(parent)
		res.subcategory = leafName
		return res
	}
	if leaf.Length() > 0 {
		res.category = leafName
	}
	return res
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
