package catalog

import (
	"context"
	"errors"
	"testing"
)

func TestCollectionRepository_CreateAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "alice@example.com", "alice")
	repo := NewCollectionRepository(db)

	collection := &Collection{
		CollectorID: user.ID,
		Name:        "British Empire",
		Description: "Victorian era",
	}
	if err := repo.Create(ctx, collection); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if collection.ID == 0 {
		t.Error("Create() should fill in the generated ID")
	}
	if collection.PhotoURL != DefaultAvatarURL {
		t.Errorf("PhotoURL = %q, want default", collection.PhotoURL)
	}

	got, err := repo.GetByID(ctx, collection.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "British Empire" || got.CollectorID != user.ID {
		t.Errorf("GetByID() = %+v", got)
	}
}

func TestCollectionRepository_GetMissing(t *testing.T) {
	db := testDB(t)
	repo := NewCollectionRepository(db)

	_, err := repo.GetByID(context.Background(), 9999)
	if !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrCollectionNotFound", err)
	}
}

func TestCollectionRepository_ListByCollector(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com", "alice")
	bob := seedUser(t, db, "bob@example.com", "bob")

	seedCollection(t, db, alice.ID, "Alice One")
	seedCollection(t, db, alice.ID, "Alice Two")
	seedCollection(t, db, bob.ID, "Bob One")

	repo := NewCollectionRepository(db)

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List() = %d collections, want 3", len(all))
	}

	aliceOnly, err := repo.ListByCollector(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByCollector() error = %v", err)
	}
	if len(aliceOnly) != 2 {
		t.Errorf("ListByCollector(alice) = %d, want 2", len(aliceOnly))
	}
	for _, c := range aliceOnly {
		if c.CollectorID != alice.ID {
			t.Errorf("collection %d belongs to %d, want %d", c.ID, c.CollectorID, alice.ID)
		}
	}
}

func TestCollectionRepository_UpdatePhotoURL(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "carol@example.com", "carol")
	collection := seedCollection(t, db, user.ID, "Carol's")

	repo := NewCollectionRepository(db)
	if err := repo.UpdatePhotoURL(ctx, collection.ID, "/static/collections/1.png"); err != nil {
		t.Fatalf("UpdatePhotoURL() error = %v", err)
	}

	got, err := repo.GetByID(ctx, collection.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.PhotoURL != "/static/collections/1.png" {
		t.Errorf("PhotoURL = %q", got.PhotoURL)
	}
}

func TestCollectionRepository_DeleteCascadesStamps(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "dave@example.com", "dave")
	collection := seedCollection(t, db, user.ID, "Dave's")

	stamps := NewStampRepository(db)
	stamp := &Stamp{
		CollectionID: collection.ID,
		Name:         "Penny Black",
		SerialNumber: "PB-1840",
		Country:      "UK",
		Year:         1840,
		Circulation:  1000,
		Cost:         5000,
		Perforation:  0,
		Topic:        "history",
	}
	if err := stamps.Create(ctx, stamp); err != nil {
		t.Fatalf("Create(stamp) error = %v", err)
	}

	repo := NewCollectionRepository(db)
	if err := repo.Delete(ctx, collection.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := stamps.GetByID(ctx, stamp.ID); !errors.Is(err, ErrStampNotFound) {
		t.Errorf("GetByID(cascaded stamp) error = %v, want ErrStampNotFound", err)
	}

	if err := repo.Delete(ctx, collection.ID); !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrCollectionNotFound", err)
	}
}
