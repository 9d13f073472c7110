package impl

import (
	"context"
	"errors"
	"time"

	"xuper/internal/domain"
	"xuper/internal/observability/metrics"
	"xuper/internal/observability/middleware"
	"xuper/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenTTL = 30 * 24 * time.Hour

type TokenConfig struct {
	TTL        time.Duration
	SigningKey []byte // HS256 secret
	Issuer     string // optional; enforced on verify when set
}

// AccessClaims carries the account id under "id".
type AccessClaims struct {
	AccountID string `json:"id"`
	jwt.RegisteredClaims
}

type accountResolver interface {
	GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error)
}

type TokenServiceHS256 struct {
	cfg      TokenConfig
	accounts accountResolver
	Now      func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig, accounts accountResolver) *TokenServiceHS256 {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	return &TokenServiceHS256{
		cfg:      cfg,
		accounts: accounts,
		Now:      time.Now,
	}
}

func (t *TokenServiceHS256) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *TokenServiceHS256) Issue(ctx context.Context, acc *domain.Account) (string, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("issue", result).Inc()
	}()

	now := t.now()
	claims := AccessClaims{
		AccountID: acc.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
	if err != nil {
		result = "failure"
		return "", err
	}

	middleware.Logger(ctx).Debug("issued token", "account_id", acc.ID, "expires_at", claims.ExpiresAt.Time)
	return signed, nil
}

// Verify checks signature and expiry, then resolves the account so that a
// token for a deleted account fails with ErrAccountNotFound.
func (t *TokenServiceHS256) Verify(ctx context.Context, raw string) (*domain.Principal, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("verify", result).Inc()
	}()

	claims, err := t.parse(raw)
	if err != nil {
		result = "failure"
		return nil, err
	}

	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		result = "failure"
		return nil, domain.ErrInvalidToken
	}

	acc, err := t.accounts.GetByID(ctx, id)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &domain.Principal{AccountID: acc.ID, Role: acc.Role}, nil
}

func (t *TokenServiceHS256) parse(raw string) (*AccessClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.cfg.Issuer))
	}

	claims := &AccessClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrExpiredToken
	default:
		return nil, domain.ErrInvalidToken
	}
}
