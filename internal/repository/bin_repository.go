package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civic-trust-service/internal/model"
)

type BinRepository struct {
	db *gorm.DB
}

func NewBinRepository(db *gorm.DB) *BinRepository {
	return &BinRepository{db: db}
}

func (r *BinRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Bin, error) {
	var bin model.Bin
	if err := r.db.WithContext(ctx).First(&bin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bin, nil
}

func (r *BinRepository) List(ctx context.Context) ([]model.Bin, error) {
	var bins []model.Bin
	if err := r.db.WithContext(ctx).Order("name").Find(&bins).Error; err != nil {
		return nil, err
	}
	return bins, nil
}

func (r *BinRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BinStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Bin{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *BinRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Bin{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}
