package domain

import (
	"fmt"
	"strings"
)

// Display formats location for humans
func (l Location) Display() string {
	switch {
	case l.City != "" && l.State != "":
		return l.City + ", " + l.State
	case l.City != "":
		return l.City
	default:
		return "Any location"
	}
}

// Display formats category for humans, subcategory wins
func (c Category) Display() string {
	switch {
	case c.Subcategory != "":
		return c.Subcategory
	case c.Category != "":
		return c.Category
	default:
		return "Any category"
	}
}

// Display formats price range for humans
func (p PriceRange) Display() string {
	switch {
	case p.FreeOnly():
		return "Free (verschenken)"
	case p.From == 0:
		return fmt.Sprintf("Up to %d EUR", p.To)
	case p.To == 0:
		return fmt.Sprintf("From %d EUR", p.From)
	default:
		return fmt.Sprintf("%d EUR - %d EUR", p.From, p.To)
	}
}

// FormatTimeWindow formats a window given in seconds as days
func FormatTimeWindow(seconds int) string {
	days := seconds / 86400
	switch days {
	case 1:
		return "1 day"
	case 7:
		return "1 week"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// Summary returns multi-line human description of the preference
func (p Preference) Summary() string {
	var sb strings.Builder
	sb.WriteString("Location: " + p.Location.Display() + "\n")
	sb.WriteString("Category: " + p.Category.Display() + "\n")
	sb.WriteString("Price: " + p.Price.Display() + "\n")
	sb.WriteString("Time window: " + FormatTimeWindow(p.TimeWindow))
	return sb.String()
}

// FormatPrice formats a listing price in euro, cents only when present
func FormatPrice(price float64) string {
	if price == float64(int64(price)) {
		return fmt.Sprintf("%d EUR", int64(price))
	}
	return fmt.Sprintf("%.2f EUR", price)
}
