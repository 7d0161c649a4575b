package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"civic-trust-service/internal/model"
)

type RewardService struct {
	policy    Policy
	wallet    WalletStore
	rewards   RewardStore
	publisher Publisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewRewardService(policy Policy, wallet WalletStore, rewards RewardStore, publisher Publisher, log zerolog.Logger) *RewardService {
	return &RewardService{
		policy:    policy,
		wallet:    wallet,
		rewards:   rewards,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (s *RewardService) Statement(ctx context.Context, userID uuid.UUID) (*model.WalletStatement, error) {
	balance, err := s.wallet.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.wallet.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.WalletStatement{Balance: balance, Entries: entries}, nil
}

func (s *RewardService) ListRewards(ctx context.Context) ([]model.Reward, error) {
	return s.rewards.ListActive(ctx)
}

func (s *RewardService) ListRedemptions(ctx context.Context, userID uuid.UUID) ([]model.RedemptionRecord, error) {
	return s.rewards.ListRedemptions(ctx, userID)
}

// Redeem exchanges points for a reward coupon. The balance check happens
// before any write: an insufficient balance leaves the wallet and redemption
// history untouched.
func (s *RewardService) Redeem(ctx context.Context, principal model.Principal, rewardID uuid.UUID) (*model.RedemptionRecord, error) {
	reward, err := s.rewards.GetByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !reward.Active {
		return nil, ErrNotFound
	}

	balance, err := s.wallet.Balance(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if balance < reward.PointsRequired {
		return nil, ErrInsufficientPoints
	}

	now := s.now()
	coupon, err := s.couponCode()
	if err != nil {
		return nil, err
	}

	redemption := &model.RedemptionRecord{
		ID:          uuid.New(),
		UserID:      principal.UserID,
		RewardID:    reward.ID,
		RewardTitle: reward.Title,
		CouponCode:  coupon,
		PointsUsed:  reward.PointsRequired,
		Status:      model.RedemptionStatusActive,
		ExpiresAt:   now.Add(s.policy.RedemptionValidity),
		CreatedAt:   now,
	}
	if err := s.rewards.CreateRedemption(ctx, redemption); err != nil {
		return nil, err
	}

	entry := &model.WalletEntry{
		ID:          uuid.New(),
		UserID:      principal.UserID,
		Type:        model.WalletEntryRedeem,
		Points:      reward.PointsRequired,
		Reason:      fmt.Sprintf("redeemed: %s", reward.Title),
		Source:      "redemption",
		ReferenceID: &redemption.ID,
		CreatedAt:   now,
	}
	if err := s.wallet.Append(ctx, entry); err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, "wallet_entry", entry.ID.String(), entry)

	s.log.Info().
		Str("user_id", principal.UserID.String()).
		Str("reward_id", reward.ID.String()).
		Int("points", reward.PointsRequired).
		Msg("reward redeemed")

	publish(ctx, s.publisher, "redemption", redemption.ID.String(), redemption)
	return redemption, nil
}

const couponCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// couponCode builds codes like "MMC-7K2Q-9XAB".
func (s *RewardService) couponCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = couponCharset[int(b)%len(couponCharset)]
	}
	return fmt.Sprintf("%s-%s-%s", s.policy.CouponPrefix, buf[:4], buf[4:]), nil
}
