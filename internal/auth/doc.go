// Package auth provides session authentication for the PhilateList backend.
//
// It is built from four pieces:
//
//   - Hasher: Argon2id password hashing (OWASP 2025 recommendation) in PHC string format
//   - TokenCodec: HS256 JWT encoding and classified decoding
//   - SessionIssuer: access/refresh token pair issuance and inline renewal
//   - Route rules: which request paths require a valid session
//
// Access tokens are short-lived and validated by signature only (no
// database hit). Refresh tokens are longer-lived JWTs carried in an
// HttpOnly cookie; when an access token expires mid-request, the API
// gate mints a replacement from the cookie without interrupting the
// request.
//
// Decoding distinguishes an expired token from a malformed one:
//
//   - ErrTokenExpired: signature valid, exp in the past (renewable)
//   - ErrTokenMalformed: bad signature, wrong algorithm, or garbage (never renewable)
//   - ErrTokenMissingExpiry: structurally valid but carries no exp claim
//
// Only an expired token with a valid refresh cookie gets a replacement.
package auth
