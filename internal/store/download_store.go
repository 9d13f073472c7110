package store

import (
	"context"
	"time"

	"xuper/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DownloadStoreGorm struct{ db *gorm.DB }

func (s *Store) Downloads() *DownloadStoreGorm { return &DownloadStoreGorm{db: s.DB} }

func (d *DownloadStoreGorm) Create(ctx context.Context, dl *domain.Download) error {
	if dl.ID == uuid.Nil {
		dl.ID = uuid.New()
	}
	now := time.Now().UTC()
	if dl.DownloadDate.IsZero() {
		dl.DownloadDate = now
	}
	if dl.CreatedAt.IsZero() {
		dl.CreatedAt = now
	}
	dl.UpdatedAt = now
	return d.db.WithContext(ctx).Create(dl).Error
}

func (d *DownloadStoreGorm) ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*domain.Download, error) {
	var out []*domain.Download
	if err := d.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("download_date DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DownloadStoreGorm) DeleteByAccount(ctx context.Context, accountID domain.AccountID) (int64, error) {
	tx := d.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&domain.Download{})
	return tx.RowsAffected, tx.Error
}
