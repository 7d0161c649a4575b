package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civic-trust-service/internal/model"
)

type DisposalRepository struct {
	db *gorm.DB
}

func NewDisposalRepository(db *gorm.DB) *DisposalRepository {
	return &DisposalRepository{db: db}
}

func (r *DisposalRepository) Create(ctx context.Context, record *model.DisposalRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *DisposalRepository) List(ctx context.Context) ([]model.DisposalRecord, error) {
	var records []model.DisposalRecord
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *DisposalRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.DisposalRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []model.DisposalRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountPriorAtBin counts the user's disposals at the bin since the given
// time, verified or not. Used for the cooldown rule.
func (r *DisposalRepository) CountPriorAtBin(ctx context.Context, userID, binID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DisposalRecord{}).
		Where("user_id = ? AND bin_id = ? AND created_at >= ?", userID, binID, since).
		Count(&count).Error
	return count, err
}

func (r *DisposalRepository) HasVerifiedByUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DisposalRecord{}).
		Where("user_id = ? AND verified = TRUE", userID).
		Count(&count).Error
	return count > 0, err
}
