package domain

import "time"

// DefaultTimeWindow is the recency window of a new preference, one week in seconds
const DefaultTimeWindow = 604800

// Location is a search or listing location, ids come from the reference catalog
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	CityID  string `json:"city_id,omitempty"`
	StateID string `json:"state_id,omitempty"`
}

// ID returns the most specific location id, city preferred over state
func (l Location) ID() string {
	if l.CityID != "" {
		return l.CityID
	}
	return l.StateID
}

// Category is a search or listing category, ids come from the reference catalog
type Category struct {
	Category      string `json:"category,omitempty"`
	Subcategory   string `json:"subcategory,omitempty"`
	CategoryID    string `json:"category_id,omitempty"`
	SubcategoryID string `json:"subcategory_id,omitempty"`
}

// ID returns the most specific category id, subcategory preferred over category
func (c Category) ID() string {
	if c.SubcategoryID != "" {
		return c.SubcategoryID
	}
	return c.CategoryID
}

// PriceRange is a preference price range in whole euros.
// From=0,To=0 means free items only; From>0,To=0 means no upper bound.
type PriceRange struct {
	From int `json:"price_from" validate:"gte=0"`
	To   int `json:"price_to" validate:"gte=0"`
}

// FreeOnly reports whether the range asks for free items only
func (p PriceRange) FreeOnly() bool {
	return p.From == 0 && p.To == 0
}

// Unbounded reports whether the range has a lower bound and no upper bound
func (p PriceRange) Unbounded() bool {
	return p.To == 0 && p.From > 0
}

// Matches checks the price against the range
func (p PriceRange) Matches(price float64) bool {
	switch {
	case p.FreeOnly():
		return price == 0
	case p.Unbounded():
		return price >= float64(p.From)
	default:
		return float64(p.From) <= price && price <= float64(p.To)
	}
}

// Preference is a stored user intent describing which listings to watch for
type Preference struct {
	ID         string              `json:"id"`
	UserID     int64               `json:"user_id"`
	Location   Location            `json:"location"`
	Category   Category            `json:"category"`
	Price      PriceRange          `json:"price"`
	TimeWindow int                 `json:"time_window"` // seconds
	CreatedAt  time.Time           `json:"created_at"`
	SentIDs    map[string]struct{} `json:"-"`
}

// Since returns the earliest ingestion time still inside the preference window
func (p Preference) Since(now time.Time) time.Time {
	return now.Add(-time.Duration(p.TimeWindow) * time.Second)
}

// Sent checks if the listing was already delivered for this preference
func (p Preference) Sent(listingID string) bool {
	_, ok := p.SentIDs[listingID]
	return ok
}

// SentList returns sent listing ids as a slice, order is not defined
func (p Preference) SentList() []string {
	res := make([]string, 0, len(p.SentIDs))
	for id := range p.SentIDs {
		res = append(res, id)
	}
	return res
}

// Matches performs the final field-by-field check of a listing against the preference.
// Empty preference ids match any listing value.
func (p Preference) Matches(l Listing, now time.Time) bool {
	if p.Location.CityID != "" && l.Location.CityID != p.Location.CityID {
		return false
	}
	if p.Location.StateID != "" && l.Location.StateID != p.Location.StateID {
		return false
	}
	if p.Category.CategoryID != "" && l.Category.CategoryID != p.Category.CategoryID {
		return false
	}
	if p.Category.SubcategoryID != "" && l.Category.SubcategoryID != p.Category.SubcategoryID {
		return false
	}
	if !p.Price.Matches(l.Price) {
		return false
	}
	return !l.CreatedAt.Before(p.Since(now))
}

// Draft is a structured preference produced by the text extractor before it is resolved
// against reference data. Nil price fields mean the text said nothing about price.
type Draft struct {
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	PriceFrom   *int   `json:"price_from,omitempty"`
	PriceTo     *int   `json:"price_to,omitempty"`
	TimeWindow  int    `json:"time_window,omitempty"`
}

// Empty reports whether the extractor found nothing at all
func (d Draft) Empty() bool {
	return d.City == "" && d.State == "" && d.Category == "" && d.Subcategory == "" &&
		d.PriceFrom == nil && d.PriceTo == nil && d.TimeWindow == 0
}
