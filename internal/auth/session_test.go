package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// fakeResolver resolves identities from an in-memory map.
type fakeResolver struct {
	identities map[int]Identity
}

func (f *fakeResolver) ResolveIdentity(_ context.Context, userID int) (Identity, error) {
	id, ok := f.identities[userID]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}
	return id, nil
}

func testIssuer(identities map[int]Identity) *SessionIssuer {
	return NewSessionIssuer(testCodec(), &fakeResolver{identities: identities})
}

func TestSessionIssuer_Issue(t *testing.T) {
	issuer := testIssuer(nil)
	id := Identity{UserID: 5, Role: RoleUser}

	sess, err := issuer.Issue(id)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if sess.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want %q", sess.TokenType, "bearer")
	}

	codec := testCodec()
	for _, token := range []string{sess.AccessToken, sess.RefreshToken} {
		claims, err := codec.Decode(token)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		got, err := claims.Identity()
		if err != nil {
			t.Fatalf("Identity() error = %v", err)
		}
		if got != id {
			t.Errorf("token identity = %+v, want %+v", got, id)
		}
	}
}

func TestSessionIssuer_Refresh(t *testing.T) {
	id := Identity{UserID: 5, Role: RoleUser}
	issuer := testIssuer(map[int]Identity{5: id})

	sess, err := issuer.Issue(id)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	access, err := issuer.Refresh(context.Background(), sess.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	claims, err := testCodec().Decode(access)
	if err != nil {
		t.Fatalf("Decode(new access) error = %v", err)
	}
	got, err := claims.Identity()
	if err != nil {
		t.Fatalf("Identity() error = %v", err)
	}
	if got != id {
		t.Errorf("renewed identity = %+v, want %+v", got, id)
	}
}

func TestSessionIssuer_Refresh_UsesCurrentRole(t *testing.T) {
	// Role was user when the refresh token was minted, but the account
	// has since been promoted. The renewed access token must carry the
	// current role.
	issuer := testIssuer(map[int]Identity{5: {UserID: 5, Role: RoleAdmin}})

	sess, err := issuer.Issue(Identity{UserID: 5, Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	access, err := issuer.Refresh(context.Background(), sess.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	claims, err := testCodec().Decode(access)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("renewed Role = %v, want %v", claims.Role, RoleAdmin)
	}
}

func TestSessionIssuer_Refresh_InvalidToken(t *testing.T) {
	issuer := testIssuer(map[int]Identity{5: {UserID: 5, Role: RoleUser}})

	expired := signTestToken(t, testSecret, jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "5",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		Role: RoleUser,
	})

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"expired refresh", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Refresh(context.Background(), tt.token)
			if !errors.Is(err, ErrInvalidRefresh) {
				t.Errorf("Refresh() error = %v, want ErrInvalidRefresh", err)
			}
		})
	}
}

func TestSessionIssuer_Refresh_DeletedAccount(t *testing.T) {
	issuer := testIssuer(map[int]Identity{})

	sess, err := issuer.Issue(Identity{UserID: 5, Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = issuer.Refresh(context.Background(), sess.RefreshToken)
	if !errors.Is(err, ErrIdentityNotFound) {
		t.Errorf("Refresh() error = %v, want ErrIdentityNotFound", err)
	}
}

func TestSessionIssuer_RefreshCookie(t *testing.T) {
	issuer := testIssuer(nil)

	w := httptest.NewRecorder()
	issuer.SetRefreshCookie(w, "the-refresh-token")

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	c := cookies[0]
	if c.Name != RefreshCookieName {
		t.Errorf("cookie name = %q, want %q", c.Name, RefreshCookieName)
	}
	if c.Value != "the-refresh-token" {
		t.Errorf("cookie value = %q, want the token", c.Value)
	}
	if !c.HttpOnly {
		t.Error("refresh cookie must be HttpOnly")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite = %v, want Lax", c.SameSite)
	}
	if c.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Errorf("cookie MaxAge = %d, want %d", c.MaxAge, int((7*24*time.Hour).Seconds()))
	}
}

func TestSessionIssuer_ClearRefreshCookie(t *testing.T) {
	issuer := testIssuer(nil)

	w := httptest.NewRecorder()
	issuer.ClearRefreshCookie(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	c := cookies[0]
	if c.Value != "" {
		t.Errorf("cleared cookie value = %q, want empty", c.Value)
	}
	if c.MaxAge >= 0 {
		t.Errorf("cleared cookie MaxAge = %d, want negative", c.MaxAge)
	}
}
