package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"xuper/internal/domain"
)

type RegisterRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	VerificationCode string `json:"verificationCode"`
	AdminCode        string `json:"adminCode,omitempty"`
}

// UnmarshalJSON accepts verificationCode as a string or as a JSON integer,
// since some clients send the six digits as a number.
func (r *RegisterRequest) UnmarshalJSON(b []byte) error {
	type plain RegisterRequest
	aux := struct {
		*plain
		VerificationCode json.RawMessage `json:"verificationCode"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	code, err := codeString(aux.VerificationCode)
	if err != nil {
		return err
	}
	r.VerificationCode = code
	return nil
}

var errCodeType = errors.New("verificationCode must be a string or an integer")

func codeString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errCodeType
	}
	if _, err := n.Int64(); err != nil {
		return "", errCodeType
	}
	return n.String(), nil
}

// AdminRegisterRequest is used by an authenticated admin to create another
// admin without going through email verification.
type AdminRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AccountResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AccountSummary struct {
	AccountResponse
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:    a.ID.String(),
		Name:  a.Name,
		Email: a.Email,
		Role:  string(a.Role),
	}
}

func NewAccountSummary(a *domain.Account) AccountSummary {
	return AccountSummary{
		AccountResponse: NewAccountResponse(a),
		Verified:        a.Verified,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
