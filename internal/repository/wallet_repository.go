package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civic-trust-service/internal/model"
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Append(ctx context.Context, entry *model.WalletEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Balance folds the signed ledger for one user. The balance is never stored.
func (r *WalletRepository) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var balance int
	err := r.db.WithContext(ctx).
		Model(&model.WalletEntry{}).
		Select("COALESCE(SUM(CASE WHEN type = 'EARN' THEN points ELSE -points END), 0)").
		Where("user_id = ?", userID).
		Scan(&balance).Error
	return balance, err
}

func (r *WalletRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WalletEntry, error) {
	var entries []model.WalletEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *WalletRepository) ListAll(ctx context.Context) ([]model.WalletEntry, error) {
	var entries []model.WalletEntry
	if err := r.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

type RewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

func (r *RewardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Reward, error) {
	var reward model.Reward
	if err := r.db.WithContext(ctx).First(&reward, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

func (r *RewardRepository) ListActive(ctx context.Context) ([]model.Reward, error) {
	var rewards []model.Reward
	if err := r.db.WithContext(ctx).
		Where("active = TRUE").
		Order("points_required").
		Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *RewardRepository) CreateRedemption(ctx context.Context, redemption *model.RedemptionRecord) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *RewardRepository) ListRedemptions(ctx context.Context, userID uuid.UUID) ([]model.RedemptionRecord, error) {
	var redemptions []model.RedemptionRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&redemptions).Error; err != nil {
		return nil, err
	}
	return redemptions, nil
}

func (r *RewardRepository) CountRedemptions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RedemptionRecord{}).Count(&count).Error
	return count, err
}
