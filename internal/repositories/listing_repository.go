// backend/internal/repositories/listing_repository.go

// Package repositories implements the persistence boundary. The
// extraction core never touches it: the HTTP layer hands over the
// canonical record and this package appends the fields it owns (votes,
// status, timestamps, coordinates).
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/maison-seeker/backend/internal/domain"
)

type PostgresListingRepository struct {
	db *sql.DB
}

// NewPostgresListingRepository opens the connection, waits for the
// database to come up, and runs the schema migration.
func NewPostgresListingRepository(dsn string) (*PostgresListingRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	repo := &PostgresListingRepository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return repo, nil
}

func (r *PostgresListingRepository) migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id            BIGSERIAL PRIMARY KEY,
			url           TEXT UNIQUE NOT NULL,
			source_site   VARCHAR(50) NOT NULL,
			title         TEXT NOT NULL,
			price         INTEGER,
			surface       INTEGER,
			rooms         INTEGER,
			bedrooms      INTEGER,
			city          TEXT NOT NULL DEFAULT '',
			postal_code   TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT '',
			photos        TEXT[] NOT NULL DEFAULT '{}',
			thumbnail     TEXT NOT NULL DEFAULT '',
			property_type TEXT NOT NULL DEFAULT '',
			energy_class  TEXT NOT NULL DEFAULT '',
			ghg_class     TEXT NOT NULL DEFAULT '',
			lat           DOUBLE PRECISION,
			lng           DOUBLE PRECISION,
			votes         JSONB NOT NULL DEFAULT '{}',
			status        VARCHAR(20) NOT NULL DEFAULT 'active',
			imported_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);
		CREATE INDEX IF NOT EXISTS idx_listings_city   ON listings(city);
	`)
	return err
}

const listingColumns = `
	id, url, source_site, title, price, surface, rooms, bedrooms,
	city, postal_code, description, photos, thumbnail,
	property_type, energy_class, ghg_class,
	lat, lng, votes, status, imported_at, updated_at`

// Save upserts a listing keyed by its URL. Re-importing the same URL
// refreshes the metadata but keeps votes and status.
func (r *PostgresListingRepository) Save(ctx context.Context, url string, meta domain.ListingMetadata, coords *domain.Coordinates) (*domain.Listing, error) {
	var lat, lng any
	if coords != nil {
		lat, lng = coords.Lat, coords.Lng
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO listings (
			url, source_site, title, price, surface, rooms, bedrooms,
			city, postal_code, description, photos, thumbnail,
			property_type, energy_class, ghg_class, lat, lng
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (url) DO UPDATE SET
			source_site   = EXCLUDED.source_site,
			title         = EXCLUDED.title,
			price         = EXCLUDED.price,
			surface       = EXCLUDED.surface,
			rooms         = EXCLUDED.rooms,
			bedrooms      = EXCLUDED.bedrooms,
			city          = EXCLUDED.city,
			postal_code   = EXCLUDED.postal_code,
			description   = EXCLUDED.description,
			photos        = EXCLUDED.photos,
			thumbnail     = EXCLUDED.thumbnail,
			property_type = EXCLUDED.property_type,
			energy_class  = EXCLUDED.energy_class,
			ghg_class     = EXCLUDED.ghg_class,
			lat           = EXCLUDED.lat,
			lng           = EXCLUDED.lng,
			updated_at    = NOW()
		RETURNING `+listingColumns,
		url, meta.SourceSite, meta.Title,
		nullableInt(meta.Price), nullableInt(meta.Surface),
		nullableInt(meta.Rooms), nullableInt(meta.Bedrooms),
		meta.City, meta.PostalCode, meta.Description,
		pq.Array(meta.Photos), meta.Thumbnail,
		meta.PropertyType, meta.EnergyClass, meta.GHGClass,
		lat, lng,
	)
	return scanListing(row)
}

// FindByStatus returns listings with the given status, newest first.
func (r *PostgresListingRepository) FindByStatus(ctx context.Context, status string) ([]*domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE status = $1 ORDER BY imported_at DESC`,
		status)
	if err != nil {
		return nil, fmt.Errorf("postgres: find by status: %w", err)
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// Vote records one user's vote; an empty vote clears the user's entry.
func (r *PostgresListingRepository) Vote(ctx context.Context, id int64, user, vote string) error {
	var err error
	if vote == "" {
		_, err = r.db.ExecContext(ctx,
			`UPDATE listings SET votes = votes - $2, updated_at = NOW() WHERE id = $1`,
			id, user)
	} else {
		_, err = r.db.ExecContext(ctx,
			`UPDATE listings SET votes = jsonb_set(votes, ARRAY[$2], to_jsonb($3::text)), updated_at = NOW() WHERE id = $1`,
			id, user, vote)
	}
	if err != nil {
		return fmt.Errorf("postgres: vote: %w", err)
	}
	return nil
}

// SetStatus moves a listing between active and archived.
func (r *PostgresListingRepository) SetStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE listings SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return fmt.Errorf("postgres: set status: %w", err)
	}
	return nil
}

func (r *PostgresListingRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete: %w", err)
	}
	return nil
}

func (r *PostgresListingRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var (
		l        domain.Listing
		price    sql.NullInt64
		surface  sql.NullInt64
		rooms    sql.NullInt64
		bedrooms sql.NullInt64
		photos   pq.StringArray
		lat, lng sql.NullFloat64
		votesRaw []byte
	)

	err := row.Scan(
		&l.ID, &l.URL, &l.Metadata.SourceSite, &l.Metadata.Title,
		&price, &surface, &rooms, &bedrooms,
		&l.Metadata.City, &l.Metadata.PostalCode, &l.Metadata.Description,
		&photos, &l.Metadata.Thumbnail,
		&l.Metadata.PropertyType, &l.Metadata.EnergyClass, &l.Metadata.GHGClass,
		&lat, &lng, &votesRaw, &l.Status, &l.ImportedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan listing: %w", err)
	}

	l.Metadata.Price = fromNullInt(price)
	l.Metadata.Surface = fromNullInt(surface)
	l.Metadata.Rooms = fromNullInt(rooms)
	l.Metadata.Bedrooms = fromNullInt(bedrooms)
	l.Metadata.Photos = []string(photos)
	if l.Metadata.Photos == nil {
		l.Metadata.Photos = []string{}
	}
	if lat.Valid && lng.Valid {
		l.Coordinates = &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	l.Votes = map[string]string{}
	if len(votesRaw) > 0 {
		if err := json.Unmarshal(votesRaw, &l.Votes); err != nil {
			return nil, fmt.Errorf("postgres: decode votes: %w", err)
		}
	}
	return &l, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
