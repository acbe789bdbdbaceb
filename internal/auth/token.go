package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token lifetimes, used when TokenConfig leaves them zero.
const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims are the JWT claims carried by both access and refresh tokens.
// Subject holds the user ID as a decimal string.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// Identity extracts the authenticated principal from the claims.
func (c *Claims) Identity() (Identity, error) {
	userID, err := strconv.Atoi(c.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: subject %q is not a user ID", ErrTokenMalformed, c.Subject)
	}
	if !c.Role.IsValid() {
		return Identity{}, fmt.Errorf("%w: unknown role %d", ErrTokenMalformed, c.Role)
	}
	return Identity{UserID: userID, Role: c.Role}, nil
}

// TokenConfig holds the signing secret and token lifetimes.
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenCodec encodes and decodes HS256-signed JWTs.
//
// All configuration is injected at construction; the codec holds no
// global state and is safe for concurrent use.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec creates a TokenCodec from the given configuration.
// Zero TTLs fall back to the package defaults.
func NewTokenCodec(cfg TokenConfig) *TokenCodec {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &TokenCodec{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (c *TokenCodec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// EncodeAccess creates a signed short-lived access token for the identity.
func (c *TokenCodec) EncodeAccess(id Identity) (string, error) {
	return c.encode(id, c.accessTTL)
}

// EncodeRefresh creates a signed long-lived refresh token for the identity.
func (c *TokenCodec) EncodeRefresh(id Identity) (string, error) {
	return c.encode(id, c.refreshTTL)
}

func (c *TokenCodec) encode(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(id.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Role: id.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Decode validates a token and returns its claims, classifying failures:
//
//   - ErrTokenExpired: signature valid but exp is in the past
//   - ErrTokenMissingExpiry: valid token with no exp claim
//   - ErrTokenMalformed: everything else (bad signature, wrong
//     algorithm, truncated or garbage input)
//
// The signing algorithm is pinned to HS256; a token asserting any other
// method is malformed regardless of its signature.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.ExpiresAt == nil {
		return nil, ErrTokenMissingExpiry
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}

	return claims, nil
}
