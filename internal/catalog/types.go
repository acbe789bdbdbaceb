package catalog

import (
	"errors"
	"time"

	"github.com/philatelist/backend/internal/auth"
)

// User is a registered account.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialised
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the auth principal for this account.
func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Role: u.Role}
}

// Collector is the public profile attached to every user at
// registration. It shares the user's ID as primary key.
type Collector struct {
	UserID      int       `json:"user_id"`
	FirstName   string    `json:"first_name,omitempty"`
	MiddleName  string    `json:"middle_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Country     string    `json:"country,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Collection is a named set of stamps owned by one collector.
type Collection struct {
	ID          int       `json:"id"`
	CollectorID int       `json:"collector_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PhotoURL    string    `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stamp is a single catalogued stamp within a collection.
// SerialNumber is unique across the whole catalogue.
type Stamp struct {
	ID           int       `json:"id"`
	CollectionID int       `json:"collection_id"`
	Name         string    `json:"name"`
	SerialNumber string    `json:"serial_number"`
	Country      string    `json:"country"`
	Year         int       `json:"year"`
	Circulation  int       `json:"circulation"`
	Cost         int       `json:"cost"`
	Perforation  int       `json:"perforation"`
	Topic        string    `json:"topic"`
	Features     string    `json:"features,omitempty"`
	PhotoURL     string    `json:"photo_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// rareCostThreshold is the cost above which a stamp counts as rare.
const rareCostThreshold = 1000

// Rarity returns the display rarity class derived from cost.
func (s *Stamp) Rarity() string {
	if s.Cost > rareCostThreshold {
		return "rare"
	}
	return "common"
}

// Sentinel errors for catalog operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCollectorNotFound  = errors.New("collector not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrStampNotFound      = errors.New("stamp not found")
	ErrCredentialsTaken   = errors.New("email or username already registered")
	ErrSerialNumberTaken  = errors.New("serial number already registered")
)
