package service

import (
	"context"

	"xuper/internal/domain"
	"xuper/internal/dto"
)

type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.AccountResponse, error)
	RegisterAdmin(ctx context.Context, r dto.AdminRegisterRequest) (*dto.AccountResponse, error)
	Login(ctx context.Context, r dto.LoginRequest) (*dto.LoginResponse, error)
	ListAccounts(ctx context.Context) ([]dto.AccountSummary, error)
	DeleteAccount(ctx context.Context, id domain.AccountID) error
}
