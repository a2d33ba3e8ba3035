// Package planner turns stored preferences into scrape tasks and narrows fetched
// listings back to the price ranges of the preferences behind each task.
package planner

import (
	"github.com/umputun/kleinwatch/pkg/domain"
)

// Consolidate groups preferences by (category id, location id) and emits one task per group.
// Subcategory id is preferred over category id and city id over state id; a preference
// missing either id has nothing to scrape against and is skipped.
// The task ceiling is unbounded if any member has a lower bound without upper one,
// otherwise it is the largest upper bound in the group. Tasks keep first-seen order.
func Consolidate(prefs []domain.Preference) []domain.ScrapeTask {
	index := map[string]int{}
	var tasks []domain.ScrapeTask

	for _, p := range prefs {
		catID, locID := p.Category.ID(), p.Location.ID()
		if catID == "" || locID == "" {
			continue
		}
		key := catID + "_" + locID
		i, ok := index[key]
		if !ok {
			tasks = append(tasks, domain.ScrapeTask{
				CategoryID: catID,
				LocationID: locID,
				Location:   p.Location,
				Category:   p.Category,
			})
			i = len(tasks) - 1
			index[key] = i
		}
		tasks[i].Ranges = append(tasks[i].Ranges, p.Price)
	}

	for i := range tasks {
		tasks[i].Ceiling = Ceiling(tasks[i].Ranges)
	}
	return tasks
}

// Ceiling computes the highest price a group of ranges needs fetched
func Ceiling(ranges []domain.PriceRange) domain.Ceiling {
	maxPrice := 0
	for _, r := range ranges {
		if r.Unbounded() {
			return domain.Unbounded()
		}
		if r.To > maxPrice {
			maxPrice = r.To
		}
	}
	return domain.Limit(maxPrice)
}

// FilterByPrice keeps listings matching at least one of the ranges.
// With no ranges all listings are kept.
func FilterByPrice(listings []domain.Listing, ranges []domain.PriceRange) []domain.Listing {
	if len(ranges) == 0 {
		return listings
	}
	res := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		for _, r := range ranges {
			if r.Matches(l.Price) {
				res = append(res, l)
				break
			}
		}
	}
	return res
}
