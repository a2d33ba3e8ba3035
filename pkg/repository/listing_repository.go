package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/kleinwatch/pkg/domain"
)

const offerDateLayout = "2006-01-02"

// maxQueryIDs limits ids bound in a single IN clause
const maxQueryIDs = 500

// ListingRepository handles listing storage
type ListingRepository struct {
	db *sqlx.DB
}

// listingRow is the db representation of a listing
type listingRow struct {
	ID            string    `db:"id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	Address       string    `db:"address"`
	OfferDate     string    `db:"offer_date"` // yyyy-mm-dd, empty if unknown
	Link          string    `db:"link"`
	Photos        string    `db:"photos"`
	City          string    `db:"city"`
	State         string    `db:"state"`
	CityID        string    `db:"city_id"`
	StateID       string    `db:"state_id"`
	Category      string    `db:"category"`
	Subcategory   string    `db:"subcategory"`
	CategoryID    string    `db:"category_id"`
	SubcategoryID string    `db:"subcategory_id"`
	Price         float64   `db:"price"`
	CreatedAt     time.Time `db:"created_at"`
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// KnownIDs returns ids of stored listings in the category and location scope.
// Both ids are matched against either level of the taxonomy.
func (r *ListingRepository) KnownIDs(ctx context.Context, categoryID, locationID string) (map[string]struct{}, error) {
	query := `
		SELECT id FROM listings
		WHERE (city_id = ? OR state_id = ?)
		  AND (category_id = ? OR subcategory_id = ?)
	`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, locationID, locationID, categoryID, categoryID); err != nil {
		return nil, fmt.Errorf("get known ids for %s/%s: %w", categoryID, locationID, err)
	}

	res := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		res[id] = struct{}{}
	}
	return res, nil
}

// InsertListings stores listings in one transaction, ignoring ids already present.
// Returns the number of newly inserted rows. Zero CreatedAt is set to the current time.
func (r *ListingRepository) InsertListings(ctx context.Context, listings []domain.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	rows := make([]listingRow, 0, len(listings))
	now := time.Now().UTC()
	for i := range listings {
		row, err := toListingRow(listings[i], now)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	query := `
		INSERT OR IGNORE INTO listings (
			id, title, description, address, offer_date, link, photos,
			city, state, city_id, state_id,
			category, subcategory, category_id, subcategory_id,
			price, created_at
		) VALUES (
			:id, :title, :description, :address, :offer_date, :link, :photos,
			:city, :state, :city_id, :state_id,
			:category, :subcategory, :category_id, :subcategory_id,
			:price, :created_at
		)
	`

	var inserted int
	err := withRetry(ctx, func() error {
		inserted = 0
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return lockOrCritical(fmt.Errorf("begin transaction: %w", err))
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		stmt, err := tx.PrepareNamedContext(ctx, query)
		if err != nil {
			return lockOrCritical(fmt.Errorf("prepare insert: %w", err))
		}
		defer stmt.Close()

		for i := range rows {
			res, err := stmt.ExecContext(ctx, rows[i])
			if err != nil {
				return lockOrCritical(fmt.Errorf("insert listing %s: %w", rows[i].ID, err))
			}
			n, err := res.RowsAffected()
			if err != nil {
				return &criticalError{err: fmt.Errorf("rows affected: %w", err)}
			}
			inserted += int(n)
		}
		if err := tx.Commit(); err != nil {
			return lockOrCritical(fmt.Errorf("commit listings: %w", err))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// FindListings returns stored listings in the query scope created since the given time,
// cheapest first
func (r *ListingRepository) FindListings(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	query := `
		SELECT * FROM listings
		WHERE (city_id = ? OR state_id = ?)
		  AND (category_id = ? OR subcategory_id = ?)
		  AND created_at >= ?`
	args := []any{q.LocationID, q.LocationID, q.CategoryID, q.CategoryID, q.Since.UTC()}

	if q.SentFor != "" {
		query += `
		  AND NOT EXISTS (SELECT 1 FROM preference_sent ps
		                  WHERE ps.preference_id = ? AND ps.listing_id = listings.id)`
		args = append(args, q.SentFor)
	}
	query += " ORDER BY price ASC, created_at ASC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	var rows []listingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	return toDomainListings(rows)
}

// GetListings returns listings by ids, newest first, missing ids are ignored.
// Ids are queried in chunks to stay below the sqlite bound variables limit.
func (r *ListingRepository) GetListings(ctx context.Context, ids []string) ([]domain.Listing, error) {
	var rows []listingRow
	for start := 0; start < len(ids); start += maxQueryIDs {
		chunk := ids[start:min(start+maxQueryIDs, len(ids))]
		query, args, err := sqlx.In("SELECT * FROM listings WHERE id IN (?)", chunk)
		if err != nil {
			return nil, fmt.Errorf("expand query: %w", err)
		}
		var part []listingRow
		if err := r.db.SelectContext(ctx, &part, r.db.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("get listings: %w", err)
		}
		rows = append(rows, part...)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return toDomainListings(rows)
}

// CountListings returns the number of stored listings
func (r *ListingRepository) CountListings(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM listings"); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}

func toListingRow(l domain.Listing, now time.Time) (listingRow, error) {
	photos := l.Photos
	if photos == nil {
		photos = []string{}
	}
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return listingRow{}, fmt.Errorf("marshal photos of %s: %w", l.ID, err)
	}

	created := l.CreatedAt
	if created.IsZero() {
		created = now
	}
	row := listingRow{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Address:       l.Address,
		Link:          l.Link,
		Photos:        string(photosJSON),
		City:          l.Location.City,
		State:         l.Location.State,
		CityID:        l.Location.CityID,
		StateID:       l.Location.StateID,
		Category:      l.Category.Category,
		Subcategory:   l.Category.Subcategory,
		CategoryID:    l.Category.CategoryID,
		SubcategoryID: l.Category.SubcategoryID,
		Price:         l.Price,
		CreatedAt:     created.UTC(),
	}
	if !l.OfferDate.IsZero() {
		row.OfferDate = l.OfferDate.Format(offerDateLayout)
	}
	return row, nil
}

func toDomainListings(rows []listingRow) ([]domain.Listing, error) {
	res := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		l := domain.Listing{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			Address:     row.Address,
			Link:        row.Link,
			Location:    domain.Location{City: row.City, State: row.State, CityID: row.CityID, StateID: row.StateID},
			Category: domain.Category{Category: row.Category, Subcategory: row.Subcategory,
				CategoryID: row.CategoryID, SubcategoryID: row.SubcategoryID},
			Price:     row.Price,
			CreatedAt: row.CreatedAt.UTC(),
		}
		if row.OfferDate != "" {
			d, err := time.Parse(offerDateLayout, row.OfferDate)
			if err != nil {
				return nil, fmt.Errorf("parse offer date of %s: %w", row.ID, err)
			}
			l.OfferDate = d
		}
		if row.Photos != "" {
			if err := json.Unmarshal([]byte(row.Photos), &l.Photos); err != nil {
				return nil, fmt.Errorf("unmarshal photos of %s: %w", row.ID, err)
			}
		}
		res = append(res, l)
	}
	return res, nil
}
