package impl

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"xuper/internal/domain"
	"xuper/internal/dto"
	"xuper/internal/events"
	"xuper/internal/observability/metrics"
	"xuper/internal/observability/middleware"
	"xuper/internal/service"
	"xuper/internal/store"

	"github.com/google/uuid"
)

type accountStore interface {
	Create(ctx context.Context, acc *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Delete(ctx context.Context, id domain.AccountID) error
}

type downloadCleaner interface {
	DeleteByAccount(ctx context.Context, accountID domain.AccountID) (int64, error)
}

type AuthServiceImpl struct {
	Accounts        accountStore
	Downloads       downloadCleaner
	Verification    service.VerificationService
	PasswordService service.PasswordService
	TService        service.TokenService
	Events          events.Publisher

	// AdminCode elevates a self-service registration to admin when matched.
	// Empty disables elevation.
	AdminCode string
	Now       func() time.Time
}

func NewAuthServiceImpl(
	accounts accountStore,
	downloads downloadCleaner,
	verification service.VerificationService,
	passwords service.PasswordService,
	tokens service.TokenService,
	publisher events.Publisher,
	adminCode string,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		Accounts:        accounts,
		Downloads:       downloads,
		Verification:    verification,
		PasswordService: passwords,
		TService:        tokens,
		Events:          publisher,
		AdminCode:       adminCode,
		Now:             func() time.Time { return time.Now().UTC() },
	}
}

func (a *AuthServiceImpl) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func (a *AuthServiceImpl) publish(ctx context.Context, e events.Event) {
	if a.Events != nil {
		a.Events.Publish(ctx, e)
	}
}

// Register creates a user after the email has been proven with a code.
// Checks run in a fixed order and the first failure wins.
func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (*dto.AccountResponse, error) {
	role := domain.RoleUser
	result := "failure"
	defer func() {
		metrics.RegistrationsTotal.WithLabelValues(string(role), result).Inc()
	}()

	// 1) presence
	if blank(r.Name) || blank(r.Email) || r.Password == "" || blank(r.VerificationCode) {
		return nil, validationErr("", msgRegisterMissingFields)
	}
	// 2) format
	if err := validateAccountFields(r.Name, r.Email, r.Password); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(r.Email)

	// 3) uniqueness
	if err := a.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	// 4) code
	if err := a.Verification.ConsumeCode(ctx, email, r.VerificationCode); err != nil {
		return nil, err
	}

	// 5) role
	if a.adminCodeMatches(r.AdminCode) {
		role = domain.RoleAdmin
	}

	// 6) account
	acc, err := a.createAccount(ctx, r.Name, email, r.Password, role)
	if err != nil {
		return nil, err
	}

	// 7) the code is spent; a leftover record expires on its own
	if err := a.Verification.Discard(ctx, email); err != nil {
		middleware.Logger(ctx).Warn("discard verification code", "email", email, "error", err)
	}

	result = "success"
	out := dto.NewAccountResponse(acc)
	return &out, nil
}

// RegisterAdmin is reachable only behind the admin gate and skips the email
// code step.
func (a *AuthServiceImpl) RegisterAdmin(ctx context.Context, r dto.AdminRegisterRequest) (*dto.AccountResponse, error) {
	result := "failure"
	defer func() {
		metrics.RegistrationsTotal.WithLabelValues(string(domain.RoleAdmin), result).Inc()
	}()

	if blank(r.Name) || blank(r.Email) || r.Password == "" {
		return nil, validationErr("", msgMissingFields)
	}
	if err := validateAccountFields(r.Name, r.Email, r.Password); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(r.Email)
	if err := a.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	acc, err := a.createAccount(ctx, r.Name, email, r.Password, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	result = "success"
	out := dto.NewAccountResponse(acc)
	return &out, nil
}

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest) (*dto.LoginResponse, error) {
	result := "failure"
	defer func() {
		metrics.LoginsTotal.WithLabelValues(result).Inc()
	}()

	if blank(r.Email) || r.Password == "" {
		return nil, validationErr("", msgMissingFields)
	}

	acc, err := a.Accounts.GetByEmail(ctx, domain.NormalizeEmail(r.Email))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	// Accounts are created verified; kept in case unverified creation is
	// ever introduced.
	if !acc.Verified {
		result = "unverified"
		return nil, domain.ErrEmailNotVerified
	}
	if !a.PasswordService.Verify(acc.PasswordHash, r.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := a.TService.Issue(ctx, acc)
	if err != nil {
		return nil, err
	}

	result = "success"
	middleware.Logger(ctx).Info("login succeeded", "account_id", acc.ID, "role", acc.Role)
	return &dto.LoginResponse{
		AccountResponse: dto.NewAccountResponse(acc),
		Token:           token,
	}, nil
}

func (a *AuthServiceImpl) ListAccounts(ctx context.Context) ([]dto.AccountSummary, error) {
	accounts, err := a.Accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AccountSummary, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, dto.NewAccountSummary(acc))
	}
	return out, nil
}

// DeleteAccount removes the account and its download history. Tokens issued
// for it stop resolving immediately.
func (a *AuthServiceImpl) DeleteAccount(ctx context.Context, id domain.AccountID) error {
	if err := a.Accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return validationErr("id", msgAccountMissing)
		}
		return err
	}

	logger := middleware.Logger(ctx)
	if a.Downloads != nil {
		n, err := a.Downloads.DeleteByAccount(ctx, id)
		if err != nil {
			logger.Error("delete download history", "account_id", id, "error", err)
		} else if n > 0 {
			logger.Info("deleted download history", "account_id", id, "count", n)
		}
	}

	a.publish(ctx, events.AccountDeleted{AccountID: id.String(), At: a.now()})
	return nil
}

func (a *AuthServiceImpl) ensureEmailFree(ctx context.Context, email string) error {
	_, err := a.Accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrDuplicateEmail
	case errors.Is(err, store.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}

func (a *AuthServiceImpl) adminCodeMatches(code string) bool {
	if a.AdminCode == "" || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(a.AdminCode)) == 1
}

func (a *AuthServiceImpl) createAccount(ctx context.Context, name, email, password string, role domain.Role) (*domain.Account, error) {
	hash, err := a.PasswordService.Hash(password)
	if err != nil {
		return nil, err
	}

	now := a.now()
	acc := &domain.Account{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Accounts.Create(ctx, acc); err != nil {
		// The unique index is the only hard guarantee against two concurrent
		// registrations for the same address.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}

	middleware.Logger(ctx).Info("account registered", "account_id", acc.ID, "role", acc.Role)
	a.publish(ctx, events.AccountRegistered{AccountID: acc.ID.String(), Email: acc.Email, Role: string(acc.Role), At: now})
	return acc, nil
}
