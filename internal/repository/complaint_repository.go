package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civic-trust-service/internal/model"
)

type ComplaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

func (r *ComplaintRepository) Create(ctx context.Context, complaint *model.Complaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

func (r *ComplaintRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	var complaint model.Complaint
	if err := r.db.WithContext(ctx).
		Preload("CleanupProof").
		First(&complaint, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *ComplaintRepository) List(ctx context.Context, statuses []model.ComplaintStatus, limit int) ([]model.Complaint, error) {
	if limit <= 0 {
		limit = 200
	}
	query := r.db.WithContext(ctx).Model(&model.Complaint{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var complaints []model.Complaint
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Preload("CleanupProof").
		Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}

func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ComplaintStatus, note *string, resolvedAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            status,
			"verification_note": note,
			"resolved_at":       resolvedAt,
		}).Error
}

// ReplaceProof stores a cleanup proof, replacing any earlier one for the same
// complaint. Proofs are immutable; resubmission replaces wholesale.
func (r *ComplaintRepository) ReplaceProof(ctx context.Context, proof *model.CleanupProof) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("complaint_id = ?", proof.ComplaintID).
			Delete(&model.CleanupProof{}).Error; err != nil {
			return err
		}
		return tx.Create(proof).Error
	})
}

func (r *ComplaintRepository) LogStatusChange(ctx context.Context, logEntry *model.ComplaintStatusLog) error {
	return r.db.WithContext(ctx).Create(logEntry).Error
}
