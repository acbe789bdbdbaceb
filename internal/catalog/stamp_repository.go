package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StampRepository defines the interface for stamp persistence.
type StampRepository interface {
	Create(ctx context.Context, stamp *Stamp) error
	GetByID(ctx context.Context, id int) (*Stamp, error)
	List(ctx context.Context) ([]Stamp, error)
	ListByCollection(ctx context.Context, collectionID int) ([]Stamp, error)
	Update(ctx context.Context, stamp *Stamp) error
	UpdatePhotoURL(ctx context.Context, id int, photoURL string) error
	Delete(ctx context.Context, id int) error
}

// SQLiteStampRepository implements StampRepository using SQLite.
type SQLiteStampRepository struct {
	db *sql.DB
}

// NewStampRepository creates a new SQLite-backed stamp repository.
func NewStampRepository(db *sql.DB) *SQLiteStampRepository {
	return &SQLiteStampRepository{db: db}
}

const stampColumns = "id, collection_id, name, serial_number, country, year, circulation, cost, perforation, topic, features, photo_url, created_at, updated_at"

// Create inserts a new stamp and fills in the generated ID.
// A duplicate serial number returns ErrSerialNumberTaken.
func (r *SQLiteStampRepository) Create(ctx context.Context, stamp *Stamp) error {
	if stamp.PhotoURL == "" {
		stamp.PhotoURL = DefaultAvatarURL
	}

	now := time.Now().UTC().Truncate(time.Second)
	stamp.CreatedAt = now
	stamp.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO stamps (collection_id, name, serial_number, country, year, circulation, cost, perforation, topic, features, photo_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stamp.CollectionID, stamp.Name, stamp.SerialNumber, stamp.Country,
		stamp.Year, stamp.Circulation, stamp.Cost, stamp.Perforation,
		stamp.Topic, nullString(stamp.Features), stamp.PhotoURL,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSerialNumberTaken
		}
		return fmt.Errorf("creating stamp: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading stamp ID: %w", err)
	}
	stamp.ID = int(id)

	return nil
}

// GetByID retrieves a stamp by its unique ID.
func (r *SQLiteStampRepository) GetByID(ctx context.Context, id int) (*Stamp, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+stampColumns+" FROM stamps WHERE id = ?", id)
	return scanStampFrom(row)
}

// List returns every stamp in the catalogue.
func (r *SQLiteStampRepository) List(ctx context.Context) ([]Stamp, error) {
	return r.list(ctx, "SELECT "+stampColumns+" FROM stamps ORDER BY id ASC")
}

// ListByCollection returns all stamps within one collection.
func (r *SQLiteStampRepository) ListByCollection(ctx context.Context, collectionID int) ([]Stamp, error) {
	return r.list(ctx,
		"SELECT "+stampColumns+" FROM stamps WHERE collection_id = ? ORDER BY id ASC",
		collectionID)
}

// Update modifies a stamp's catalogue fields. The collection it belongs
// to does not change. A duplicate serial number returns ErrSerialNumberTaken.
func (r *SQLiteStampRepository) Update(ctx context.Context, stamp *Stamp) error {
	now := time.Now().UTC().Truncate(time.Second)
	stamp.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`UPDATE stamps SET name = ?, serial_number = ?, country = ?, year = ?, circulation = ?, cost = ?, perforation = ?, topic = ?, features = ?, updated_at = ?
		 WHERE id = ?`,
		stamp.Name, stamp.SerialNumber, stamp.Country, stamp.Year,
		stamp.Circulation, stamp.Cost, stamp.Perforation, stamp.Topic,
		nullString(stamp.Features), now.Format(time.RFC3339), stamp.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSerialNumberTaken
		}
		return fmt.Errorf("updating stamp: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrStampNotFound
	}
	return nil
}

// UpdatePhotoURL changes the stamp image URL.
func (r *SQLiteStampRepository) UpdatePhotoURL(ctx context.Context, id int, photoURL string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE stamps SET photo_url = ?, updated_at = ? WHERE id = ?",
		photoURL, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating stamp photo: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrStampNotFound
	}
	return nil
}

// Delete removes a stamp by ID.
func (r *SQLiteStampRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM stamps WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting stamp: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrStampNotFound
	}
	return nil
}

func (r *SQLiteStampRepository) list(ctx context.Context, query string, args ...any) ([]Stamp, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stamps: %w", err)
	}
	defer rows.Close()

	var stamps []Stamp
	for rows.Next() {
		st, err := scanStampFrom(rows)
		if err != nil {
			return nil, err
		}
		stamps = append(stamps, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stamps: %w", err)
	}

	if stamps == nil {
		stamps = []Stamp{}
	}
	return stamps, nil
}

// scanStampFrom scans a stamp from any scanner (Row or Rows).
func scanStampFrom(s scanner) (*Stamp, error) {
	var st Stamp
	var features sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&st.ID, &st.CollectionID, &st.Name, &st.SerialNumber, &st.Country,
		&st.Year, &st.Circulation, &st.Cost, &st.Perforation, &st.Topic,
		&features, &st.PhotoURL, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStampNotFound
		}
		return nil, fmt.Errorf("scanning stamp: %w", err)
	}

	st.Features = features.String
	st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	st.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &st, nil
}
