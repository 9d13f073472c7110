package impl

import (
	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 10

type PasswordServiceBcrypt struct {
	cost int
}

func NewPasswordServiceBcrypt(cost int) *PasswordServiceBcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordServiceBcrypt{cost: cost}
}

// Hash returns a salted bcrypt hash in modular crypt format.
func (p *PasswordServiceBcrypt) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (p *PasswordServiceBcrypt) Verify(hash, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
