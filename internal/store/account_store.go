package store

import (
	"context"
	"time"

	"xuper/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountStoreGorm struct{ db *gorm.DB }

func (s *Store) Accounts() *AccountStoreGorm { return &AccountStoreGorm{db: s.DB} }

func (a *AccountStoreGorm) Create(ctx context.Context, acc *domain.Account) error {
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	now := time.Now().UTC()
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = now
	}
	acc.UpdatedAt = now
	return translate(a.db.WithContext(ctx).Create(acc).Error)
}

func (a *AccountStoreGorm) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	var acc domain.Account
	if err := a.db.WithContext(ctx).First(&acc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &acc, nil
}

func (a *AccountStoreGorm) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var acc domain.Account
	if err := a.db.WithContext(ctx).First(&acc, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &acc, nil
}

func (a *AccountStoreGorm) List(ctx context.Context) ([]*domain.Account, error) {
	var out []*domain.Account
	if err := a.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (a *AccountStoreGorm) Delete(ctx context.Context, id domain.AccountID) error {
	tx := a.db.WithContext(ctx).Delete(&domain.Account{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
