package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"civic-trust-service/internal/model"
)

// UserLocationRepository keeps the per-user last-location map used by the
// impossible-travel rule.
type UserLocationRepository struct {
	db *gorm.DB
}

func NewUserLocationRepository(db *gorm.DB) *UserLocationRepository {
	return &UserLocationRepository{db: db}
}

func (r *UserLocationRepository) Last(ctx context.Context, userID uuid.UUID) (*model.UserLocation, error) {
	var loc model.UserLocation
	err := r.db.WithContext(ctx).First(&loc, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *UserLocationRepository) Upsert(ctx context.Context, loc *model.UserLocation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(loc).Error
}

// ImageHashRepository is the running used-hash set for duplicate detection.
type ImageHashRepository struct {
	db *gorm.DB
}

func NewImageHashRepository(db *gorm.DB) *ImageHashRepository {
	return &ImageHashRepository{db: db}
}

func (r *ImageHashRepository) Exists(ctx context.Context, hash string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UsedImageHash{}).
		Where("hash = ?", hash).
		Count(&count).Error
	return count > 0, err
}

func (r *ImageHashRepository) Add(ctx context.Context, hash string, actionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UsedImageHash{Hash: hash, ActionID: actionID}).Error
}

// PendingActionRepository backs the durable FIFO sync queue.
type PendingActionRepository struct {
	db *gorm.DB
}

func NewPendingActionRepository(db *gorm.DB) *PendingActionRepository {
	return &PendingActionRepository{db: db}
}

// Enqueue stores a descriptor; a repeated idempotency key is a no-op.
func (r *PendingActionRepository) Enqueue(ctx context.Context, action *model.PendingAction) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(action).Error
}

func (r *PendingActionRepository) NextQueued(ctx context.Context, limit int) ([]model.PendingAction, error) {
	if limit <= 0 {
		limit = 50
	}
	var actions []model.PendingAction
	if err := r.db.WithContext(ctx).
		Where("status = ?", model.PendingActionQueued).
		Order("created_at").
		Limit(limit).
		Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *PendingActionRepository) MarkApplied(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.PendingAction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.PendingActionApplied,
			"applied_at": at,
		}).Error
}

func (r *PendingActionRepository) RecordAttempt(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.PendingAction{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}
