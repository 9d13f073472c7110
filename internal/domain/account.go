package domain

import (
	"regexp"
	"strings"
	"time"
)

type Account struct {
	ID           AccountID `gorm:"type:uuid;primaryKey" db:"id" json:"_id"`
	Name         string    `gorm:"type:text;not null" db:"name" json:"name"`
	Email        string    `gorm:"type:text;not null;uniqueIndex:ux_accounts_email" db:"email" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" db:"password_hash" json:"-"`
	Role         Role      `gorm:"type:text;not null;default:user" db:"role" json:"role"`
	Verified     bool      `gorm:"not null;default:false" db:"verified" json:"verified"`
	CreatedAt    time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Account) TableName() string { return "accounts" }

// Principal is what the auth gates attach to a request once a bearer token
// has been verified and its account resolved.
type Principal struct {
	AccountID AccountID
	Role      Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// NormalizeEmail is the uniqueness key for accounts and verification codes.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmail(email string) bool { return emailPattern.MatchString(email) }
