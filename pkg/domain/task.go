package domain

import (
	"fmt"
	"math"
)

// Ceiling is the highest price a scrape task has to reach, or unbounded
type Ceiling struct {
	value     int
	unbounded bool
}

// Unbounded returns a ceiling without upper limit
func Unbounded() Ceiling { return Ceiling{unbounded: true} }

// Limit returns a finite ceiling
func Limit(v int) Ceiling { return Ceiling{value: v} }

// IsUnbounded reports whether the ceiling has no upper limit
func (c Ceiling) IsUnbounded() bool { return c.unbounded }

// Value returns the finite ceiling, math.MaxInt for unbounded one
func (c Ceiling) Value() int {
	if c.unbounded {
		return math.MaxInt
	}
	return c.value
}

// Exceeded checks if the price is above a finite ceiling
func (c Ceiling) Exceeded(price float64) bool {
	return !c.unbounded && price > float64(c.value)
}

func (c Ceiling) String() string {
	if c.unbounded {
		return "unbounded"
	}
	return fmt.Sprintf("%d", c.value)
}

// ScrapeTask is a consolidated unit of fetch work for one category and location scope.
// Location and Category come from the first contributing preference and are used
// as a fallback scope for listings whose page breadcrumb can't be resolved.
type ScrapeTask struct {
	CategoryID string
	LocationID string
	Ceiling    Ceiling
	Ranges     []PriceRange
	Location   Location
	Category   Category
}

// Key returns the grouping key of the task
func (t ScrapeTask) Key() string {
	return t.CategoryID + "_" + t.LocationID
}
