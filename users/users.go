package users

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Kind says which portal an account signs in to.
type Kind string

const (
	KindMember Kind = "member"
	KindAdmin  Kind = "admin"
)

// MembershipStatus is the dues standing of a member account.
type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
	MembershipExpired  MembershipStatus = "expired"
)

type User struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // never serialize
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Kind         Kind      `json:"kind,omitempty"`
	DateJoined   time.Time `json:"date_joined,omitempty"`
	LastLogin    time.Time `json:"last_login,omitempty"`

	// Member accounts
	MembershipStatus MembershipStatus `json:"membership_status,omitempty"`
	MembershipType   string           `json:"membership_type,omitempty"`
	MemberNumber     string           `json:"member_number,omitempty"`

	// Admin accounts
	AdminRole   string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`

	Deactivated bool `json:"deactivated,omitempty"` // Deactivated accounts cannot sign in to either portal
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

func (u *User) IsAdmin() bool {
	return u.Kind == KindAdmin
}

// HasActiveMembership reports whether a member's dues are current. Accounts without a
// recorded status are treated as active.
func (u *User) HasActiveMembership() bool {
	return u.MembershipStatus == "" || u.MembershipStatus == MembershipActive
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormaliseEmail is the form emails are stored and looked up in.
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
