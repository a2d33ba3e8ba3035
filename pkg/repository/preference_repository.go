package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/umputun/kleinwatch/pkg/domain"
)

// ErrNotFound is returned when a preference doesn't exist for the user
var ErrNotFound = errors.New("not found")

// PreferenceRepository handles user preferences and their sent-sets
type PreferenceRepository struct {
	db *sqlx.DB
}

// preferenceRow is the db representation of a preference
type preferenceRow struct {
	ID            string    `db:"id"`
	UserID        int64     `db:"user_id"`
	City          string    `db:"city"`
	State         string    `db:"state"`
	CityID        string    `db:"city_id"`
	StateID       string    `db:"state_id"`
	Category      string    `db:"category"`
	Subcategory   string    `db:"subcategory"`
	CategoryID    string    `db:"category_id"`
	SubcategoryID string    `db:"subcategory_id"`
	PriceFrom     int       `db:"price_from"`
	PriceTo       int       `db:"price_to"`
	TimeWindow    int       `db:"time_window"`
	CreatedAt     time.Time `db:"created_at"`
}

type sentRow struct {
	PreferenceID string `db:"preference_id"`
	ListingID    string `db:"listing_id"`
}

// SentListing is a listing delivered to a user for one of the preferences
type SentListing struct {
	PreferenceID string    `db:"preference_id"`
	SentAt       time.Time `db:"sent_at"`
	domain.Listing
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// AddPreference stores a new preference. Empty id is generated, zero CreatedAt is set to now,
// zero time window gets the default one. The stored preference is returned.
func (r *PreferenceRepository) AddPreference(ctx context.Context, p domain.Preference) (domain.Preference, error) {
	if p.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return domain.Preference{}, fmt.Errorf("generate preference id: %w", err)
		}
		p.ID = id
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = p.CreatedAt.UTC()
	if p.TimeWindow <= 0 {
		p.TimeWindow = domain.DefaultTimeWindow
	}
	if p.SentIDs == nil {
		p.SentIDs = map[string]struct{}{}
	}

	row := toPreferenceRow(p)
	query := `
		INSERT INTO preferences (
			id, user_id, city, state, city_id, state_id,
			category, subcategory, category_id, subcategory_id,
			price_from, price_to, time_window, created_at
		) VALUES (
			:id, :user_id, :city, :state, :city_id, :state_id,
			:category, :subcategory, :category_id, :subcategory_id,
			:price_from, :price_to, :time_window, :created_at
		)
	`
	err := withRetry(ctx, func() error {
		if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
			return lockOrCritical(fmt.Errorf("add preference: %w", err))
		}
		return nil
	})
	if err != nil {
		return domain.Preference{}, err
	}
	return p, nil
}

// ListPreferences returns preferences of the user in creation order, with sent-sets loaded
func (r *PreferenceRepository) ListPreferences(ctx context.Context, userID int64) ([]domain.Preference, error) {
	var rows []preferenceRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM preferences WHERE user_id = ? ORDER BY created_at ASC, id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("list preferences of %d: %w", userID, err)
	}
	return r.withSent(ctx, rows)
}

// AllPreferences returns preferences of all users, with sent-sets loaded
func (r *PreferenceRepository) AllPreferences(ctx context.Context) ([]domain.Preference, error) {
	var rows []preferenceRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT * FROM preferences ORDER BY user_id ASC, created_at ASC, id ASC"); err != nil {
		return nil, fmt.Errorf("get all preferences: %w", err)
	}
	return r.withSent(ctx, rows)
}

// GetPreference returns a preference of the user by id
func (r *PreferenceRepository) GetPreference(ctx context.Context, userID int64, id string) (domain.Preference, error) {
	var row preferenceRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM preferences WHERE user_id = ? AND id = ?", userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Preference{}, fmt.Errorf("preference %s of %d: %w", id, userID, ErrNotFound)
	}
	if err != nil {
		return domain.Preference{}, fmt.Errorf("get preference %s: %w", id, err)
	}
	res, err := r.withSent(ctx, []preferenceRow{row})
	if err != nil {
		return domain.Preference{}, err
	}
	return res[0], nil
}

// DeletePreference removes a preference of the user with its sent-set
func (r *PreferenceRepository) DeletePreference(ctx context.Context, userID int64, id string) error {
	var affected int64
	err := withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, "DELETE FROM preferences WHERE user_id = ? AND id = ?", userID, id)
		if err != nil {
			return lockOrCritical(fmt.Errorf("delete preference %s: %w", id, err))
		}
		if affected, err = res.RowsAffected(); err != nil {
			return &criticalError{err: fmt.Errorf("rows affected: %w", err)}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("preference %s of %d: %w", id, userID, ErrNotFound)
	}
	return nil
}

// DeleteAllPreferences removes all preferences of the user, returns the number removed
func (r *PreferenceRepository) DeleteAllPreferences(ctx context.Context, userID int64) (int, error) {
	var affected int64
	err := withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, "DELETE FROM preferences WHERE user_id = ?", userID)
		if err != nil {
			return lockOrCritical(fmt.Errorf("delete preferences of %d: %w", userID, err))
		}
		if affected, err = res.RowsAffected(); err != nil {
			return &criticalError{err: fmt.Errorf("rows affected: %w", err)}
		}
		return nil
	})
	return int(affected), err
}

// MarkSent adds the listing to the preference sent-set. Repeated calls are no-ops.
func (r *PreferenceRepository) MarkSent(ctx context.Context, preferenceID, listingID string) error {
	return withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO preference_sent (preference_id, listing_id, sent_at) VALUES (?, ?, ?)",
			preferenceID, listingID, time.Now().UTC())
		if err != nil {
			return lockOrCritical(fmt.Errorf("mark %s sent for %s: %w", listingID, preferenceID, err))
		}
		return nil
	})
}

// SentListings returns the most recently delivered listings of the user, newest first
func (r *PreferenceRepository) SentListings(ctx context.Context, userID int64, limit int) ([]SentListing, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ps.preference_id, ps.sent_at, l.*
		FROM preference_sent ps
		JOIN preferences p ON p.id = ps.preference_id
		JOIN listings l ON l.id = ps.listing_id
		WHERE p.user_id = ?
		ORDER BY ps.sent_at DESC, l.id ASC
		LIMIT ?
	`
	var rows []struct {
		PreferenceID string    `db:"preference_id"`
		SentAt       time.Time `db:"sent_at"`
		listingRow
	}
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("get sent listings of %d: %w", userID, err)
	}

	res := make([]SentListing, 0, len(rows))
	for _, row := range rows {
		ll, err := toDomainListings([]listingRow{row.listingRow})
		if err != nil {
			return nil, err
		}
		res = append(res, SentListing{PreferenceID: row.PreferenceID, SentAt: row.SentAt.UTC(), Listing: ll[0]})
	}
	return res, nil
}

// withSent converts rows to preferences and loads their sent-sets in one query
func (r *PreferenceRepository) withSent(ctx context.Context, rows []preferenceRow) ([]domain.Preference, error) {
	res := make([]domain.Preference, 0, len(rows))
	if len(rows) == 0 {
		return res, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	query, args, err := sqlx.In("SELECT preference_id, listing_id FROM preference_sent WHERE preference_id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("expand sent query: %w", err)
	}
	var sent []sentRow
	if err := r.db.SelectContext(ctx, &sent, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get sent listings: %w", err)
	}

	sets := make(map[string]map[string]struct{}, len(rows))
	for _, s := range sent {
		if sets[s.PreferenceID] == nil {
			sets[s.PreferenceID] = map[string]struct{}{}
		}
		sets[s.PreferenceID][s.ListingID] = struct{}{}
	}

	for _, row := range rows {
		p := toDomainPreference(row)
		if set, ok := sets[row.ID]; ok {
			p.SentIDs = set
		}
		res = append(res, p)
	}
	return res, nil
}

func toPreferenceRow(p domain.Preference) preferenceRow {
	return preferenceRow{
		ID:            p.ID,
		UserID:        p.UserID,
		City:          p.Location.City,
		State:         p.Location.State,
		CityID:        p.Location.CityID,
		StateID:       p.Location.StateID,
		Category:      p.Category.Category,
		Subcategory:   p.Category.Subcategory,
		CategoryID:    p.Category.CategoryID,
		SubcategoryID: p.Category.SubcategoryID,
		PriceFrom:     p.Price.From,
		PriceTo:       p.Price.To,
		TimeWindow:    p.TimeWindow,
		CreatedAt:     p.CreatedAt,
	}
}

func toDomainPreference(row preferenceRow) domain.Preference {
	return domain.Preference{
		ID:     row.ID,
		UserID: row.UserID,
		Location: domain.Location{City: row.City, State: row.State, CityID: row.CityID,
			StateID: row.StateID},
		Category: domain.Category{Category: row.Category, Subcategory: row.Subcategory,
			CategoryID: row.CategoryID, SubcategoryID: row.SubcategoryID},
		Price:      domain.PriceRange{From: row.PriceFrom, To: row.PriceTo},
		TimeWindow: row.TimeWindow,
		CreatedAt:  row.CreatedAt.UTC(),
		SentIDs:    map[string]struct{}{},
	}
}
