package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"civic-trust-service/internal/model"
)

type FraudAlertRepository struct {
	db *gorm.DB
}

func NewFraudAlertRepository(db *gorm.DB) *FraudAlertRepository {
	return &FraudAlertRepository{db: db}
}

// CreateBatch inserts alerts, ignoring conflicts on the (action, type) pair
// so re-processing an action never duplicates alerts.
func (r *FraudAlertRepository) CreateBatch(ctx context.Context, alerts []model.FraudAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&alerts).Error
}

func (r *FraudAlertRepository) List(ctx context.Context, statuses []model.AlertStatus, limit int) ([]model.FraudAlert, error) {
	if limit <= 0 {
		limit = 200
	}
	query := r.db.WithContext(ctx).Model(&model.FraudAlert{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var alerts []model.FraudAlert
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *FraudAlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.FraudAlert, error) {
	var alert model.FraudAlert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *FraudAlertRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AlertStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.FraudAlert{}).
		Where("id = ?", id).
		Update("status", status).Error
}
