package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/philatelist/backend/internal/auth"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &User{
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "hash",
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == 0 {
		t.Error("Create() should fill in the generated ID")
	}

	if user.Role != auth.RoleUser {
		t.Errorf("default Role = %v, want %v", user.Role, auth.RoleUser)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Email != "alice@example.com" || got.Username != "alice" {
		t.Errorf("GetByID() = %+v, want alice fields", got)
	}
}

func TestUserRepository_GetByLogin(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &User{Email: "bob@example.com", Username: "bob", PasswordHash: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Login works with either email or username.
	for _, login := range []string{"bob@example.com", "bob"} {
		got, err := repo.GetByLogin(ctx, login)
		if err != nil {
			t.Fatalf("GetByLogin(%q) error = %v", login, err)
		}
		if got.ID != user.ID {
			t.Errorf("GetByLogin(%q) ID = %d, want %d", login, got.ID, user.ID)
		}
	}

	if _, err := repo.GetByLogin(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByLogin(unknown) error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_DuplicateCredentials(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &User{Email: "carol@example.com", Username: "carol", PasswordHash: "hash"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name string
		user *User
	}{
		{"duplicate email", &User{Email: "carol@example.com", Username: "other", PasswordHash: "hash"}},
		{"duplicate username", &User{Email: "other@example.com", Username: "carol", PasswordHash: "hash"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if !errors.Is(err, ErrCredentialsTaken) {
				t.Errorf("Create() error = %v, want ErrCredentialsTaken", err)
			}
		})
	}
}

func TestUserRepository_Delete(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "dave@example.com", "dave")

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.GetByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID(deleted) error = %v, want ErrUserNotFound", err)
	}

	// Collector profile cascades with the user.
	collectors := NewCollectorRepository(db)
	if _, err := collectors.GetByUserID(ctx, user.ID); !errors.Is(err, ErrCollectorNotFound) {
		t.Errorf("GetByUserID(cascaded) error = %v, want ErrCollectorNotFound", err)
	}

	if err := repo.Delete(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_ListAndCount(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	seedUser(t, db, "u1@example.com", "u1")
	seedUser(t, db, "u2@example.com", "u2")

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 2 {
		t.Errorf("List() returned %d users, want 2", len(users))
	}

	count, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestUserRepository_ResolveIdentity(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "erin@example.com", "erin")

	id, err := repo.ResolveIdentity(ctx, user.ID)
	if err != nil {
		t.Fatalf("ResolveIdentity() error = %v", err)
	}
	if id.UserID != user.ID || id.Role != auth.RoleUser {
		t.Errorf("ResolveIdentity() = %+v", id)
	}

	_, err = repo.ResolveIdentity(ctx, 9999)
	if !errors.Is(err, auth.ErrIdentityNotFound) {
		t.Errorf("ResolveIdentity(missing) error = %v, want auth.ErrIdentityNotFound", err)
	}
}

func TestUserRepository_Update(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "frank@example.com", "frank")
	seedUser(t, db, "gina@example.com", "gina")

	user.Email = "frank.new@example.com"
	user.Username = "frankie"
	if err := repo.Update(ctx, user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "frank.new@example.com" || got.Username != "frankie" {
		t.Errorf("updated user = %s/%s", got.Email, got.Username)
	}

	// Taking another account's username is rejected.
	user.Username = "gina"
	if err := repo.Update(ctx, user); !errors.Is(err, ErrCredentialsTaken) {
		t.Errorf("Update(taken username) error = %v, want ErrCredentialsTaken", err)
	}

	missing := &User{ID: 9999, Email: "x@example.com", Username: "x"}
	if err := repo.Update(ctx, missing); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrUserNotFound", err)
	}
}
