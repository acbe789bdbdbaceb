// Package catalog holds the PhilateList domain model and its SQLite
// persistence: user accounts, collector profiles, stamp collections
// and the stamps themselves.
//
// Each aggregate gets a repository interface plus a SQLite
// implementation. Repositories return sentinel errors (ErrUserNotFound,
// ErrSerialNumberTaken, ...) that the API layer maps onto HTTP status
// codes.
//
// Timestamps are stored as RFC3339 TEXT in UTC. Identifiers are
// INTEGER AUTOINCREMENT columns; the collector profile shares its
// user's ID as primary key.
package catalog
