package catalog

import (
	"context"
	"errors"
	"testing"
)

func TestCollectorRepository_CreateDefaults(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "alice@example.com", "alice")

	repo := NewCollectorRepository(db)
	got, err := repo.GetByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}

	if got.AvatarURL != DefaultAvatarURL {
		t.Errorf("AvatarURL = %q, want default %q", got.AvatarURL, DefaultAvatarURL)
	}
	if got.FirstName != "" || got.Country != "" {
		t.Errorf("new profile should start empty, got %+v", got)
	}
}

func TestCollectorRepository_Update(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "bob@example.com", "bob")
	repo := NewCollectorRepository(db)

	collector := &Collector{
		UserID:      user.ID,
		FirstName:   "Bob",
		LastName:    "Smith",
		Country:     "UK",
		PhoneNumber: "+441234567890",
	}
	if err := repo.Update(ctx, collector); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}

	if got.FirstName != "Bob" || got.LastName != "Smith" || got.Country != "UK" {
		t.Errorf("Update() not persisted: %+v", got)
	}

	// MiddleName stayed empty.
	if got.MiddleName != "" {
		t.Errorf("MiddleName = %q, want empty", got.MiddleName)
	}
}

func TestCollectorRepository_UpdateMissing(t *testing.T) {
	db := testDB(t)
	repo := NewCollectorRepository(db)

	err := repo.Update(context.Background(), &Collector{UserID: 9999})
	if !errors.Is(err, ErrCollectorNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrCollectorNotFound", err)
	}
}

func TestCollectorRepository_UpdateAvatar(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "carol@example.com", "carol")
	repo := NewCollectorRepository(db)

	newURL := "/static/avatars/42.png"
	if err := repo.UpdateAvatar(ctx, user.ID, newURL); err != nil {
		t.Fatalf("UpdateAvatar() error = %v", err)
	}

	got, err := repo.GetByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if got.AvatarURL != newURL {
		t.Errorf("AvatarURL = %q, want %q", got.AvatarURL, newURL)
	}

	if err := repo.UpdateAvatar(ctx, 9999, newURL); !errors.Is(err, ErrCollectorNotFound) {
		t.Errorf("UpdateAvatar(missing) error = %v, want ErrCollectorNotFound", err)
	}
}

func TestCollectorRepository_List(t *testing.T) {
	db := testDB(t)
	repo := NewCollectorRepository(db)

	collectors, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(collectors) != 0 {
		t.Errorf("List() on empty table = %d entries, want 0", len(collectors))
	}

	seedUser(t, db, "u1@example.com", "u1")
	seedUser(t, db, "u2@example.com", "u2")

	collectors, err = repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(collectors) != 2 {
		t.Errorf("List() = %d entries, want 2", len(collectors))
	}
}
