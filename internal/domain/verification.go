package domain

import "time"

// VerificationCode holds the digest of the last code sent to an address.
// There is at most one record per normalized email.
type VerificationCode struct {
	Email     string    `gorm:"type:text;primaryKey" db:"email" json:"email"`
	CodeHash  string    `gorm:"type:text;not null" db:"code_hash" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (VerificationCode) TableName() string { return "email_verifications" }

func (v *VerificationCode) Expired(now time.Time) bool { return now.After(v.ExpiresAt) }
