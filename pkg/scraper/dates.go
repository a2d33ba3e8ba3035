package scraper

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var absDateRe = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)

// ParseOfferDate normalizes listing date label to a calendar date in now's location.
// Supported labels are "Heute", "Gestern" and dd.mm.yyyy; anything else is an error.
func ParseOfferDate(label string, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case strings.Contains(label, "Heute"):
		return today, nil
	case strings.Contains(label, "Gestern"):
		return today.AddDate(0, 0, -1), nil
	}

	m := absDateRe.FindString(label)
	if m == "" {
		return time.Time{}, fmt.Errorf("unsupported date format %q", label)
	}
	d, err := time.ParseInLocation("02.01.2006", m, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", label, err)
	}
	return d, nil
}
