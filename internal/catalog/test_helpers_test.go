package catalog

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the catalog schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "catalog-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          INTEGER NOT NULL DEFAULT 2,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		);

		CREATE TABLE collectors (
			user_id      INTEGER PRIMARY KEY,
			first_name   TEXT,
			middle_name  TEXT,
			last_name    TEXT,
			country      TEXT,
			phone_number TEXT,
			avatar_url   TEXT NOT NULL DEFAULT '/static/avatars/default_avatar.png',
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);

		CREATE TABLE collections (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			collector_id INTEGER NOT NULL,
			name         TEXT NOT NULL,
			description  TEXT,
			photo_url    TEXT NOT NULL DEFAULT '/static/avatars/default_avatar.png',
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL,
			FOREIGN KEY (collector_id) REFERENCES collectors(user_id) ON DELETE CASCADE
		);

		CREATE TABLE stamps (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			collection_id INTEGER NOT NULL,
			name          TEXT NOT NULL,
			serial_number TEXT NOT NULL UNIQUE,
			country       TEXT NOT NULL,
			year          INTEGER NOT NULL,
			circulation   INTEGER NOT NULL,
			cost          INTEGER NOT NULL,
			perforation   INTEGER NOT NULL,
			topic         TEXT NOT NULL,
			features      TEXT,
			photo_url     TEXT NOT NULL DEFAULT '/static/avatars/default_avatar.png',
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL,
			FOREIGN KEY (collection_id) REFERENCES collections(id) ON DELETE CASCADE
		);
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

// seedUser inserts a user and their collector profile, returning the user.
func seedUser(t *testing.T, db *sql.DB, email, username string) *User {
	t.Helper()

	users := NewUserRepository(db)
	user := &User{
		Email:        email,
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=16384,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$0000000000000000000000000000000000000000000",
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	collectors := NewCollectorRepository(db)
	if err := collectors.Create(context.Background(), &Collector{UserID: user.ID}); err != nil {
		t.Fatalf("seeding collector: %v", err)
	}

	return user
}

// seedCollection inserts a collection for the given collector.
func seedCollection(t *testing.T, db *sql.DB, collectorID int, name string) *Collection {
	t.Helper()

	repo := NewCollectionRepository(db)
	collection := &Collection{
		CollectorID: collectorID,
		Name:        name,
		Description: "test collection",
	}
	if err := repo.Create(context.Background(), collection); err != nil {
		t.Fatalf("seeding collection: %v", err)
	}
	return collection
}
