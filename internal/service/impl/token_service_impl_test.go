package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"xuper/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func seedAccount(h *harness, role domain.Role) *domain.Account {
	acc := &domain.Account{ID: uuid.New(), Name: "Tok", Email: uuid.NewString() + "@example.com", Role: role, Verified: true}
	h.accounts.seed(acc)
	return acc
}

func TestTokenServiceIssueEncodesIDAndThirtyDayExpiry(t *testing.T) {
	h := newHarness()
	acc := seedAccount(h, domain.RoleAdmin)

	raw, err := h.tokens.Issue(context.Background(), acc)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := &AccessClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.AccountID != acc.ID.String() {
		t.Fatalf("id claim mismatch: %q", claims.AccountID)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 30*24*time.Hour {
		t.Fatalf("expected 30 day lifetime, got %v", got)
	}

	p, err := h.tokens.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.AccountID != acc.ID || !p.IsAdmin() {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestTokenServiceVerifyExpired(t *testing.T) {
	h := newHarness()
	acc := seedAccount(h, domain.RoleUser)
	raw, _ := h.tokens.Issue(context.Background(), acc)

	h.clock.Advance(30*24*time.Hour + time.Minute)
	if _, err := h.tokens.Verify(context.Background(), raw); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestTokenServiceVerifyRejectsForgeries(t *testing.T) {
	h := newHarness()
	acc := seedAccount(h, domain.RoleUser)
	now := h.clock.Now()

	sign := func(method jwt.SigningMethod, key any, claims AccessClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	valid := AccessClaims{
		AccountID: acc.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	noExpiry := valid
	noExpiry.ExpiresAt = nil
	badID := valid
	badID.AccountID = "not-a-uuid"

	cases := map[string]string{
		"garbage":      "not.a.token",
		"wrong secret": sign(jwt.SigningMethodHS256, []byte("other-secret"), valid),
		"other hmac":   sign(jwt.SigningMethodHS512, []byte("test-secret"), valid),
		"alg none":     sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid),
		"no expiry":    sign(jwt.SigningMethodHS256, []byte("test-secret"), noExpiry),
		"bad id":       sign(jwt.SigningMethodHS256, []byte("test-secret"), badID),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := h.tokens.Verify(context.Background(), raw); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected invalid token, got %v", err)
			}
		})
	}
}

func TestTokenServiceVerifyDeletedAccount(t *testing.T) {
	h := newHarness()
	acc := seedAccount(h, domain.RoleUser)
	raw, _ := h.tokens.Issue(context.Background(), acc)

	_ = h.accounts.Delete(context.Background(), acc.ID)
	if _, err := h.tokens.Verify(context.Background(), raw); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestTokenServiceIssuerIsEnforcedWhenConfigured(t *testing.T) {
	h := newHarness()
	acc := seedAccount(h, domain.RoleUser)

	issuing := NewTokenServiceHS256(TokenConfig{SigningKey: []byte("test-secret"), Issuer: "xuper"}, h.accounts)
	issuing.Now = h.clock.Now
	raw, _ := h.tokens.Issue(context.Background(), acc) // no issuer

	if _, err := issuing.Verify(context.Background(), raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected issuer mismatch to be invalid, got %v", err)
	}
	withIss, _ := issuing.Issue(context.Background(), acc)
	if _, err := issuing.Verify(context.Background(), withIss); err != nil {
		t.Fatalf("matching issuer should verify: %v", err)
	}
}
