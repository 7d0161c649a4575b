package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-trust-service/internal/model"
)

func newRewardFixture(reward *model.Reward) (*RewardService, *memWallet, *memRewards, *capturePublisher) {
	wallet := &memWallet{}
	rewards := newMemRewards(reward)
	publisher := &capturePublisher{}
	svc := NewRewardService(DefaultPolicy(), wallet, rewards, publisher, zerolog.Nop())
	svc.now = func() time.Time { return testTime }
	return svc, wallet, rewards, publisher
}

func earn(wallet *memWallet, userID uuid.UUID, points int) {
	wallet.entries = append(wallet.entries, model.WalletEntry{
		ID:     uuid.New(),
		UserID: userID,
		Type:   model.WalletEntryEarn,
		Points: points,
		Reason: "verified medium disposal",
		Source: "disposal",
	})
}

func TestRedeemDeductsPointsAndIssuesCoupon(t *testing.T) {
	reward := &model.Reward{ID: uuid.New(), Title: "Bus Pass", PointsRequired: 50, Active: true}
	svc, wallet, rewards, publisher := newRewardFixture(reward)
	user := model.Principal{UserID: uuid.New(), Role: model.UserRoleCitizen}
	earn(wallet, user.UserID, 20)
	earn(wallet, user.UserID, 50)

	redemption, err := svc.Redeem(context.Background(), user, reward.ID)
	require.NoError(t, err)

	assert.Equal(t, 50, redemption.PointsUsed)
	assert.Equal(t, "Bus Pass", redemption.RewardTitle)
	assert.Equal(t, model.RedemptionStatusActive, redemption.Status)
	assert.Regexp(t, regexp.MustCompile(`^MMC-[A-Z0-9]{4}-[A-Z0-9]{4}$`), redemption.CouponCode)
	assert.Equal(t, testTime.Add(14*24*time.Hour), redemption.ExpiresAt)

	balance, err := wallet.Balance(context.Background(), user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)

	require.Len(t, rewards.redemptions, 1)

	// Both sides of the exchange are queued for remote sync.
	require.Len(t, publisher.events, 2)
	assert.Equal(t, "wallet_entry", publisher.events[0].entity)
	assert.Equal(t, "redemption", publisher.events[1].entity)
	assert.Equal(t, redemption.ID.String(), publisher.events[1].id)
}

func TestRedeemInsufficientPointsLeavesEverythingUnchanged(t *testing.T) {
	reward := &model.Reward{ID: uuid.New(), Title: "Bus Pass", PointsRequired: 50, Active: true}
	svc, wallet, rewards, publisher := newRewardFixture(reward)
	user := model.Principal{UserID: uuid.New(), Role: model.UserRoleCitizen}
	earn(wallet, user.UserID, 30)

	_, err := svc.Redeem(context.Background(), user, reward.ID)
	assert.True(t, errors.Is(err, ErrInsufficientPoints))

	balance, err := wallet.Balance(context.Background(), user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 30, balance)
	assert.Len(t, wallet.entries, 1)
	assert.Empty(t, rewards.redemptions)
	assert.Empty(t, publisher.events)
}

func TestRedeemInactiveRewardNotFound(t *testing.T) {
	reward := &model.Reward{ID: uuid.New(), Title: "Retired", PointsRequired: 10, Active: false}
	svc, wallet, _, _ := newRewardFixture(reward)
	user := model.Principal{UserID: uuid.New(), Role: model.UserRoleCitizen}
	earn(wallet, user.UserID, 100)

	_, err := svc.Redeem(context.Background(), user, reward.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.Redeem(context.Background(), user, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStatementFoldsLedger(t *testing.T) {
	reward := &model.Reward{ID: uuid.New(), Title: "Bus Pass", PointsRequired: 50, Active: true}
	svc, wallet, _, _ := newRewardFixture(reward)
	user := model.Principal{UserID: uuid.New(), Role: model.UserRoleCitizen}
	earn(wallet, user.UserID, 20)
	earn(wallet, user.UserID, 50)

	_, err := svc.Redeem(context.Background(), user, reward.ID)
	require.NoError(t, err)

	statement, err := svc.Statement(context.Background(), user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 20, statement.Balance)
	require.Len(t, statement.Entries, 3)
	assert.Equal(t, model.WalletEntryRedeem, statement.Entries[2].Type)
}
