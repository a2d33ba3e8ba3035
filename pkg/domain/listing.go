package domain

import "time"

// Listing is one classified-ad record taken from the listing feed.
// ID is the source ad id and the only deduplication key.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	OfferDate   time.Time `json:"offer_date"` // calendar date, time part is zero
	Link        string    `json:"link,omitempty"`
	Photos      []string  `json:"photos,omitempty"`
	Location    Location  `json:"location"`
	Category    Category  `json:"category"`
	Price       float64   `json:"price"` // 0 for free listings
	CreatedAt   time.Time `json:"created_at"`
}

// PriceKind classifies the price label of a listing
type PriceKind int

// price kinds
const (
	PriceUnknown PriceKind = iota
	PriceFree
	PriceFixed
	PriceNegotiable
)

func (k PriceKind) String() string {
	switch k {
	case PriceFree:
		return "free"
	case PriceFixed:
		return "fixed"
	case PriceNegotiable:
		return "negotiable"
	default:
		return "unknown"
	}
}

// ListingQuery selects stored listings for a preference scope
type ListingQuery struct {
	LocationID string    // matched against city or state id
	CategoryID string    // matched against category or subcategory id
	Since      time.Time // inclusive lower bound of CreatedAt
	SentFor    string    // skip listings already sent for this preference id
	Limit      int       // 0 for no limit
}
