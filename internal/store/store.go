package store

import (
	"context"
	"errors"
	"time"

	"xuper/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate key")
)

// AccountStore persists accounts keyed by normalized email. Implementations
// must enforce email uniqueness themselves and report it as ErrDuplicate.
type AccountStore interface {
	Create(ctx context.Context, acc *domain.Account) error
	GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Delete(ctx context.Context, id domain.AccountID) error
}

type VerificationStore interface {
	Upsert(ctx context.Context, v *domain.VerificationCode) error
	GetByEmail(ctx context.Context, email string) (*domain.VerificationCode, error)
	Delete(ctx context.Context, email string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type DownloadStore interface {
	Create(ctx context.Context, d *domain.Download) error
	ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*domain.Download, error)
	DeleteByAccount(ctx context.Context, accountID domain.AccountID) (int64, error)
}

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

// Migrate creates or updates the tables and the unique email index.
func (s *Store) Migrate(ctx context.Context) error {
	return s.DB.WithContext(ctx).AutoMigrate(&domain.Account{}, &domain.VerificationCode{}, &domain.Download{})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

var (
	_ AccountStore      = (*AccountStoreGorm)(nil)
	_ VerificationStore = (*VerificationStoreGorm)(nil)
	_ DownloadStore     = (*DownloadStoreGorm)(nil)
)
