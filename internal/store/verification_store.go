package store

import (
	"context"
	"time"

	"xuper/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationStoreGorm struct{ db *gorm.DB }

func (s *Store) Verifications() *VerificationStoreGorm { return &VerificationStoreGorm{db: s.DB} }

// Upsert replaces any previous code for the same email.
func (vs *VerificationStoreGorm) Upsert(ctx context.Context, v *domain.VerificationCode) error {
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	return vs.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "updated_at"}),
	}).Create(v).Error
}

func (vs *VerificationStoreGorm) GetByEmail(ctx context.Context, email string) (*domain.VerificationCode, error) {
	var out domain.VerificationCode
	if err := vs.db.WithContext(ctx).First(&out, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (vs *VerificationStoreGorm) Delete(ctx context.Context, email string) error {
	return vs.db.WithContext(ctx).Delete(&domain.VerificationCode{}, "email = ?", email).Error
}

func (vs *VerificationStoreGorm) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := vs.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&domain.VerificationCode{})
	return tx.RowsAffected, tx.Error
}
