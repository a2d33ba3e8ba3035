// Package refdata provides the category and location taxonomy used to resolve
// human names into listing-site ids. All lookups are exact and case-insensitive.
package refdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/umputun/kleinwatch/pkg/domain"
)

//go:embed categories.json
var embeddedCategories []byte

//go:embed cities.json
var embeddedCities []byte

type categoryEntry struct {
	ID            string            `json:"id"`
	Subcategories map[string]string `json:"subcategories"`
}

type stateEntry struct {
	ID     string            `json:"id"`
	Cities map[string]string `json:"cities"`
}

// Catalog is an immutable in-memory taxonomy, safe for concurrent use
type Catalog struct {
	categories    map[string]domain.Category // lower-case category name
	subcategories map[string]domain.Category // lower-case subcategory name, parent filled
	states        map[string]domain.Location // lower-case state name
	cities        map[string]domain.Location // lower-case city name, state filled

	categoryNames []string            // sorted, canonical
	stateCities   map[string][]string // canonical state name -> sorted city names
	stateNames    []string            // sorted, canonical
}

// Load reads catalog files, an empty path selects the embedded data set
func Load(categoriesPath, citiesPath string) (*Catalog, error) {
	cats, cities := embeddedCategories, embeddedCities
	var err error
	if categoriesPath != "" {
		if cats, err = os.ReadFile(categoriesPath); err != nil { //nolint:gosec // path comes from config
			return nil, fmt.Errorf("read categories %s: %w", categoriesPath, err)
		}
	}
	if citiesPath != "" {
		if cities, err = os.ReadFile(citiesPath); err != nil { //nolint:gosec // path comes from config
			return nil, fmt.Errorf("read cities %s: %w", citiesPath, err)
		}
	}
	return New(cats, cities)
}

// New makes catalog from raw categories and cities json documents
func New(categoriesJSON, citiesJSON []byte) (*Catalog, error) {
	var cats map[string]categoryEntry
	if err := json.Unmarshal(categoriesJSON, &cats); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	var states map[string]stateEntry
	if err := json.Unmarshal(citiesJSON, &states); err != nil {
		return nil, fmt.Errorf("parse cities: %w", err)
	}

	c := &Catalog{
		categories:    map[string]domain.Category{},
		subcategories: map[string]domain.Category{},
		states:        map[string]domain.Location{},
		cities:        map[string]domain.Location{},
		stateCities:   map[string][]string{},
	}

	// sorted iteration makes duplicate names resolve the same way on every start
	for _, name := range sortedKeys(cats) {
		entry := cats[name]
		c.categoryNames = append(c.categoryNames, name)
		c.categories[strings.ToLower(name)] = domain.Category{Category: name, CategoryID: entry.ID}
		for _, sub := range sortedKeys(entry.Subcategories) {
			key := strings.ToLower(sub)
			if _, dup := c.subcategories[key]; dup {
				continue
			}
			c.subcategories[key] = domain.Category{Category: name, CategoryID: entry.ID,
				Subcategory: sub, SubcategoryID: entry.Subcategories[sub]}
		}
	}

	for _, name := range sortedKeys(states) {
		entry := states[name]
		c.stateNames = append(c.stateNames, name)
		c.states[strings.ToLower(name)] = domain.Location{State: name, StateID: entry.ID}
		cityNames := sortedKeys(entry.Cities)
		c.stateCities[name] = cityNames
		for _, city := range cityNames {
			key := strings.ToLower(city)
			if _, dup := c.cities[key]; dup {
				continue
			}
			c.cities[key] = domain.Location{City: city, CityID: entry.Cities[city], State: name, StateID: entry.ID}
		}
	}
	return c, nil
}

// FindCity looks up a city and returns it with its state
func (c *Catalog) FindCity(name string) (domain.Location, bool) {
	loc, ok := c.cities[normalize(name)]
	return loc, ok
}

// FindState looks up a state
func (c *Catalog) FindState(name string) (domain.Location, bool) {
	loc, ok := c.states[normalize(name)]
	return loc, ok
}

// ResolveLocation resolves city and state names into a location with ids.
// City wins; unresolved names are kept as given with empty ids.
func (c *Catalog) ResolveLocation(city, state string) domain.Location {
	if city != "" {
		if loc, ok := c.FindCity(city); ok {
			return loc
		}
	}
	res := domain.Location{City: strings.TrimSpace(city), State: strings.TrimSpace(state)}
	if st, ok := c.FindState(state); ok {
		res.State, res.StateID = st.State, st.StateID
	}
	return res
}

// FindCategory resolves category and subcategory names into a category with ids.
// A known subcategory also fills its parent category when the category name is missing or unknown.
func (c *Catalog) FindCategory(category, subcategory string) domain.Category {
	var res domain.Category
	if cat, ok := c.categories[normalize(category)]; ok && category != "" {
		res = cat
	}
	if subcategory == "" {
		return res
	}
	sub, ok := c.subcategories[normalize(subcategory)]
	if !ok {
		return res
	}
	res.Subcategory, res.SubcategoryID = sub.Subcategory, sub.SubcategoryID
	if res.CategoryID == "" {
		res.Category, res.CategoryID = sub.Category, sub.CategoryID
	}
	return res
}

// Prompt renders the category tree and a sample of cities for the extraction prompt
func (c *Catalog) Prompt(maxStates, maxCities int) string {
	var sb strings.Builder
	sb.WriteString("Available categories:\n")
	for _, name := range c.categoryNames {
		cat := c.categories[strings.ToLower(name)]
		subs := []string{}
		for _, sub := range c.subcategories {
			if sub.CategoryID == cat.CategoryID {
				subs = append(subs, sub.Subcategory)
			}
		}
		sort.Strings(subs)
		sb.WriteString(fmt.Sprintf("- %s: %s\n", name, strings.Join(subs, ", ")))
	}

	sb.WriteString("\nSample cities (there are more available):\n")
	for i, state := range c.stateNames {
		if i >= maxStates {
			break
		}
		cities := c.stateCities[state]
		if len(cities) > maxCities {
			cities = cities[:maxCities]
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", state, strings.Join(cities, ", ")))
	}
	return sb.String()
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
