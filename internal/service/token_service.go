package service

import (
	"context"

	"xuper/internal/domain"
)

type TokenService interface {
	Issue(ctx context.Context, acc *domain.Account) (string, error)
	Verify(ctx context.Context, raw string) (*domain.Principal, error)
}
