package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultAvatarURL is assigned to new collector profiles.
const DefaultAvatarURL = "/static/avatars/default_avatar.png"

// CollectorRepository defines the interface for collector profile persistence.
type CollectorRepository interface {
	Create(ctx context.Context, collector *Collector) error
	GetByUserID(ctx context.Context, userID int) (*Collector, error)
	Update(ctx context.Context, collector *Collector) error
	UpdateAvatar(ctx context.Context, userID int, avatarURL string) error
	List(ctx context.Context) ([]Collector, error)
}

// SQLiteCollectorRepository implements CollectorRepository using SQLite.
type SQLiteCollectorRepository struct {
	db *sql.DB
}

// NewCollectorRepository creates a new SQLite-backed collector repository.
func NewCollectorRepository(db *sql.DB) *SQLiteCollectorRepository {
	return &SQLiteCollectorRepository{db: db}
}

const collectorColumns = "user_id, first_name, middle_name, last_name, country, phone_number, avatar_url, created_at, updated_at"

// Create inserts a collector profile for a user. Called at registration
// with only the user ID set; everything else starts empty.
func (r *SQLiteCollectorRepository) Create(ctx context.Context, collector *Collector) error {
	if collector.AvatarURL == "" {
		collector.AvatarURL = DefaultAvatarURL
	}

	now := time.Now().UTC().Truncate(time.Second)
	collector.CreatedAt = now
	collector.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO collectors (user_id, first_name, middle_name, last_name, country, phone_number, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		collector.UserID,
		nullString(collector.FirstName), nullString(collector.MiddleName), nullString(collector.LastName),
		nullString(collector.Country), nullString(collector.PhoneNumber),
		collector.AvatarURL,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating collector: %w", err)
	}

	return nil
}

// GetByUserID retrieves the collector profile for a user.
func (r *SQLiteCollectorRepository) GetByUserID(ctx context.Context, userID int) (*Collector, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+collectorColumns+" FROM collectors WHERE user_id = ?", userID)
	return scanCollectorFrom(row)
}

// Update modifies the profile fields (names, country, phone number).
func (r *SQLiteCollectorRepository) Update(ctx context.Context, collector *Collector) error {
	now := time.Now().UTC().Truncate(time.Second)
	collector.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`UPDATE collectors SET first_name = ?, middle_name = ?, last_name = ?, country = ?, phone_number = ?, updated_at = ?
		 WHERE user_id = ?`,
		nullString(collector.FirstName), nullString(collector.MiddleName), nullString(collector.LastName),
		nullString(collector.Country), nullString(collector.PhoneNumber),
		now.Format(time.RFC3339), collector.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating collector: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrCollectorNotFound
	}
	return nil
}

// UpdateAvatar changes the profile avatar URL.
func (r *SQLiteCollectorRepository) UpdateAvatar(ctx context.Context, userID int, avatarURL string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE collectors SET avatar_url = ?, updated_at = ? WHERE user_id = ?",
		avatarURL, time.Now().UTC().Format(time.RFC3339), userID,
	)
	if err != nil {
		return fmt.Errorf("updating avatar: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrCollectorNotFound
	}
	return nil
}

// List returns all collector profiles ordered by user ID.
func (r *SQLiteCollectorRepository) List(ctx context.Context) ([]Collector, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+collectorColumns+" FROM collectors ORDER BY user_id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing collectors: %w", err)
	}
	defer rows.Close()

	var collectors []Collector
	for rows.Next() {
		c, err := scanCollectorFrom(rows)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collectors: %w", err)
	}

	if collectors == nil {
		collectors = []Collector{}
	}
	return collectors, nil
}

// scanCollectorFrom scans a collector from any scanner (Row or Rows).
func scanCollectorFrom(s scanner) (*Collector, error) {
	var c Collector
	var firstName, middleName, lastName, country, phoneNumber sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&c.UserID, &firstName, &middleName, &lastName, &country, &phoneNumber,
		&c.AvatarURL, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectorNotFound
		}
		return nil, fmt.Errorf("scanning collector: %w", err)
	}

	c.FirstName = firstName.String
	c.MiddleName = middleName.String
	c.LastName = lastName.String
	c.Country = country.String
	c.PhoneNumber = phoneNumber.String

	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &c, nil
}
