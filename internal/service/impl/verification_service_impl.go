package impl

import (
	"context"
	"errors"
	"strings"
	"time"

	"xuper/internal/domain"
	"xuper/internal/observability/metrics"
	"xuper/internal/observability/middleware"
	"xuper/internal/service"
	"xuper/internal/store"
)

const DefaultCodeTTL = 15 * time.Minute

type accountLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type VerificationServiceImpl struct {
	Accounts accountLookup
	Codes    store.VerificationStore
	Mailer   service.EmailService
	TTL      time.Duration

	// MailProvider labels delivery failure metrics.
	MailProvider string
	Now          func() time.Time
	Generate     func() (string, error)
}

func NewVerificationServiceImpl(accounts accountLookup, codes store.VerificationStore, mailer service.EmailService, ttl time.Duration, provider string) *VerificationServiceImpl {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &VerificationServiceImpl{
		Accounts:     accounts,
		Codes:        codes,
		Mailer:       mailer,
		TTL:          ttl,
		MailProvider: provider,
		Now:          func() time.Time { return time.Now().UTC() },
		Generate:     GenerateVerificationCode,
	}
}

func (v *VerificationServiceImpl) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now().UTC()
}

func (v *VerificationServiceImpl) RequestCode(ctx context.Context, email string) (*domain.VerificationCode, error) {
	result := "failure"
	defer func() {
		metrics.VerificationCodesRequestedTotal.WithLabelValues(result).Inc()
	}()

	if blank(email) {
		return nil, validationErr("email", msgMissingEmail)
	}
	if !domain.IsValidEmail(email) {
		return nil, validationErr("email", msgInvalidEmail)
	}
	email = domain.NormalizeEmail(email)

	_, err := v.Accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailAlreadyRegistered
	case !errors.Is(err, store.ErrRecordNotFound):
		return nil, err
	}

	generate := v.Generate
	if generate == nil {
		generate = GenerateVerificationCode
	}
	code, err := generate()
	if err != nil {
		return nil, err
	}

	rec := &domain.VerificationCode{
		Email:     email,
		CodeHash:  HashVerificationCode(code),
		ExpiresAt: v.now().Add(v.TTL),
	}
	if err := v.Codes.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	result = "success"

	logger := middleware.Logger(ctx)
	if err := v.Mailer.SendVerificationCode(ctx, email, code); err != nil {
		metrics.EmailDeliveryFailuresTotal.WithLabelValues(v.MailProvider).Inc()
		logger.Error("verification email delivery failed", "email", email, "provider", v.MailProvider, "error", err)
	} else {
		logger.Info("verification code sent", "email", email, "expires_at", rec.ExpiresAt)
	}
	return rec, nil
}

func (v *VerificationServiceImpl) ConsumeCode(ctx context.Context, email, code string) error {
	result := "success"
	defer func() {
		metrics.VerificationCodesConsumedTotal.WithLabelValues(result).Inc()
	}()

	email = domain.NormalizeEmail(email)
	rec, err := v.Codes.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			result = "not_found"
			return domain.ErrCodeNotFound
		}
		result = "error"
		return err
	}

	if rec.Expired(v.now()) {
		result = "expired"
		if err := v.Codes.Delete(ctx, email); err != nil {
			middleware.Logger(ctx).Warn("delete expired verification code", "email", email, "error", err)
		}
		return domain.ErrCodeExpired
	}

	if !codeMatches(rec.CodeHash, strings.TrimSpace(code)) {
		result = "mismatch"
		return domain.ErrCodeMismatch
	}
	return nil
}

func (v *VerificationServiceImpl) Discard(ctx context.Context, email string) error {
	return v.Codes.Delete(ctx, domain.NormalizeEmail(email))
}
