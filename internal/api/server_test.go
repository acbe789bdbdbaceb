package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "github.com/mattn/go-sqlite3"

	"github.com/philatelist/backend/internal/audit"
	"github.com/philatelist/backend/internal/auth"
	"github.com/philatelist/backend/internal/catalog"
	"github.com/philatelist/backend/internal/infrastructure/config"
	"github.com/philatelist/backend/internal/infrastructure/logging"
)

const testJWTSecret = "test-secret-key-at-least-32-characters-long"

// testServer creates a Server backed by a temp SQLite database and a temp
// static directory.
func testServer(t *testing.T) *Server {
	t.Helper()

	db := setupTestDB(t)
	users := catalog.NewUserRepository(db)
	collectors := catalog.NewCollectorRepository(db)
	collections := catalog.NewCollectionRepository(db)
	stamps := catalog.NewStampRepository(db)

	codec := auth.NewTokenCodec(auth.TokenConfig{Secret: testJWTSecret})
	issuer := auth.NewSessionIssuer(codec, users)
	hasher := auth.NewHasher(auth.HashParams{Time: 1, Memory: 16 * 1024, Threads: 1})

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.ServerTimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		Security: config.SecurityConfig{
			JWT: config.JWTConfig{
				Secret:              testJWTSecret,
				AccessTokenTTL:      30,
				RefreshTokenTTLDays: 7,
			},
		},
		Static: config.StaticConfig{
			Dir:           t.TempDir(),
			AvatarDir:     "avatars",
			CollectionDir: "collections",
			StampDir:      "stamps",
			DefaultAvatar: "/static/avatars/default_avatar.png",
		},
	}

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")

	srv, err := New(Deps{
		Config:      cfg,
		Logger:      log,
		Users:       users,
		Collectors:  collectors,
		Collections: collections,
		Stamps:      stamps,
		AuditRepo:   audit.NewSQLiteRepository(db),
		Codec:       codec,
		Issuer:      issuer,
		Hasher:      hasher,
		Version:     "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Audit entries are written synchronously in tests via the drain goroutine.
	ctx, cancel := context.WithCancel(context.Background())
	go srv.drainAuditLog(ctx)
	t.Cleanup(cancel)

	return srv
}

// setupTestDB creates a temp-file SQLite database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := t.TempDir() + "/test.db"
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
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
			user_id      INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			first_name   TEXT,
			middle_name  TEXT,
			last_name    TEXT,
			country      TEXT,
			phone_number TEXT,
			avatar_url   TEXT NOT NULL DEFAULT '/static/avatars/default_avatar.png',
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		);
		CREATE TABLE collections (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			collector_id INTEGER NOT NULL REFERENCES collectors(user_id) ON DELETE CASCADE,
			name         TEXT NOT NULL,
			description  TEXT NOT NULL,
			photo_url    TEXT NOT NULL DEFAULT '/static/avatars/default_avatar.png',
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		);
		CREATE TABLE stamps (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
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
			updated_at    TEXT NOT NULL
		);
		CREATE TABLE audit_logs (
			id          TEXT PRIMARY KEY,
			action      TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id   TEXT,
			user_id     TEXT,
			source      TEXT NOT NULL,
			details     TEXT,
			created_at  TEXT NOT NULL
		);
	`
	if _, execErr := db.Exec(schema); execErr != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", execErr)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// registerTestUser registers an account through the real endpoint and returns
// the access token and refresh cookie.
func registerTestUser(t *testing.T, router http.Handler, email, username string) (accessToken string, refreshCookie *http.Cookie, userID int) {
	t.Helper()

	body := `{"email":"` + email + `","username":"` + username + `","password":"password123","re_password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.RefreshCookieName {
			refreshCookie = c
		}
	}
	if refreshCookie == nil {
		t.Fatal("register did not set refresh cookie")
	}

	return resp.AccessToken, refreshCookie, subjectID(t, resp.AccessToken)
}

// subjectID decodes the token with the test codec and returns its user id.
func subjectID(t *testing.T, token string) int {
	t.Helper()

	codec := auth.NewTokenCodec(auth.TokenConfig{Secret: testJWTSecret})
	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	id, err := claims.Identity()
	if err != nil {
		t.Fatalf("Identity() error = %v", err)
	}
	return id.UserID
}

// expiredAccessToken signs an access token that expired a minute ago.
// Signed outside the codec because the codec clamps non-positive TTLs
// to the default.
func expiredAccessToken(t *testing.T, id auth.Identity) string {
	t.Helper()

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(id.UserID),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		Role: id.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}
	return token
}

// ─── Health Endpoint Tests ─────────────────────────────────────────

func TestHealth(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
}

// ─── Middleware Tests ──────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("ACAO = %q, want %q", got, "http://localhost:3000")
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != newAccessTokenHeader {
		t.Errorf("exposed headers = %q, want %q", got, newAccessTokenHeader)
	}
}

func TestNotFound(t *testing.T) {
	srv := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/collections/nonexistent/extra", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
