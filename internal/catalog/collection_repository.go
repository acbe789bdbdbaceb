package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CollectionRepository defines the interface for collection persistence.
type CollectionRepository interface {
	Create(ctx context.Context, collection *Collection) error
	GetByID(ctx context.Context, id int) (*Collection, error)
	List(ctx context.Context) ([]Collection, error)
	ListByCollector(ctx context.Context, collectorID int) ([]Collection, error)
	UpdatePhotoURL(ctx context.Context, id int, photoURL string) error
	Delete(ctx context.Context, id int) error
}

// SQLiteCollectionRepository implements CollectionRepository using SQLite.
type SQLiteCollectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new SQLite-backed collection repository.
func NewCollectionRepository(db *sql.DB) *SQLiteCollectionRepository {
	return &SQLiteCollectionRepository{db: db}
}

const collectionColumns = "id, collector_id, name, description, photo_url, created_at, updated_at"

// Create inserts a new collection and fills in the generated ID.
func (r *SQLiteCollectionRepository) Create(ctx context.Context, collection *Collection) error {
	if collection.PhotoURL == "" {
		collection.PhotoURL = DefaultAvatarURL
	}

	now := time.Now().UTC().Truncate(time.Second)
	collection.CreatedAt = now
	collection.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO collections (collector_id, name, description, photo_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		collection.CollectorID, collection.Name, nullString(collection.Description),
		collection.PhotoURL, now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading collection ID: %w", err)
	}
	collection.ID = int(id)

	return nil
}

// GetByID retrieves a collection by its unique ID.
func (r *SQLiteCollectionRepository) GetByID(ctx context.Context, id int) (*Collection, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+collectionColumns+" FROM collections WHERE id = ?", id)
	return scanCollectionFrom(row)
}

// List returns every collection in the catalogue.
func (r *SQLiteCollectionRepository) List(ctx context.Context) ([]Collection, error) {
	return r.list(ctx, "SELECT "+collectionColumns+" FROM collections ORDER BY id ASC")
}

// ListByCollector returns all collections owned by one collector.
func (r *SQLiteCollectionRepository) ListByCollector(ctx context.Context, collectorID int) ([]Collection, error) {
	return r.list(ctx,
		"SELECT "+collectionColumns+" FROM collections WHERE collector_id = ? ORDER BY id ASC",
		collectorID)
}

// UpdatePhotoURL changes the collection cover image URL.
func (r *SQLiteCollectionRepository) UpdatePhotoURL(ctx context.Context, id int, photoURL string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE collections SET photo_url = ?, updated_at = ? WHERE id = ?",
		photoURL, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating collection photo: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrCollectionNotFound
	}
	return nil
}

// Delete removes a collection; its stamps cascade via foreign keys.
func (r *SQLiteCollectionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrCollectionNotFound
	}
	return nil
}

func (r *SQLiteCollectionRepository) list(ctx context.Context, query string, args ...any) ([]Collection, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var collections []Collection
	for rows.Next() {
		c, err := scanCollectionFrom(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}

	if collections == nil {
		collections = []Collection{}
	}
	return collections, nil
}

// scanCollectionFrom scans a collection from any scanner (Row or Rows).
func scanCollectionFrom(s scanner) (*Collection, error) {
	var c Collection
	var description sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&c.ID, &c.CollectorID, &c.Name, &description, &c.PhotoURL, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("scanning collection: %w", err)
	}

	c.Description = description.String
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &c, nil
}
