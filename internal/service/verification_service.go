package service

import (
	"context"

	"xuper/internal/domain"
)

type VerificationService interface {
	// RequestCode stores a fresh code for email and hands it to the mailer.
	RequestCode(ctx context.Context, email string) (*domain.VerificationCode, error)
	// ConsumeCode checks a submitted code. The record is left in place on
	// success; callers remove it with Discard once their work is done.
	ConsumeCode(ctx context.Context, email, code string) error
	Discard(ctx context.Context, email string) error
}
