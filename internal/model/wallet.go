package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WalletEntryType string

const (
	WalletEntryEarn   WalletEntryType = "EARN"
	WalletEntryRedeem WalletEntryType = "REDEEM"
)

// WalletEntry is one row of the append-only point ledger. The balance is
// strictly the fold of signed entries; it is never stored or mutated
// directly.
type WalletEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Type        WalletEntryType `gorm:"type:wallet_entry_type;not null" json:"type"`
	Points      int             `gorm:"not null" json:"points"`
	Reason      string          `gorm:"type:text;not null" json:"reason"`
	Source      string          `gorm:"type:varchar(64);not null" json:"source"`
	ReferenceID *uuid.UUID      `gorm:"type:uuid" json:"reference_id,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (WalletEntry) TableName() string {
	return "wallet_entries"
}

func (e *WalletEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Signed returns the entry's contribution to the balance.
func (e WalletEntry) Signed() int {
	if e.Type == WalletEntryRedeem {
		return -e.Points
	}
	return e.Points
}

// Reward is one redeemable catalog item.
type Reward struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Title          string    `gorm:"type:varchar(128);not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	PointsRequired int       `gorm:"not null" json:"points_required"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Reward) TableName() string {
	return "rewards"
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type RedemptionStatus string

const (
	RedemptionStatusActive  RedemptionStatus = "ACTIVE"
	RedemptionStatusUsed    RedemptionStatus = "USED"
	RedemptionStatusExpired RedemptionStatus = "EXPIRED"
)

type RedemptionRecord struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	RewardID    uuid.UUID        `gorm:"type:uuid;not null" json:"reward_id"`
	RewardTitle string           `gorm:"type:varchar(128);not null" json:"reward_title"`
	CouponCode  string           `gorm:"type:varchar(32);not null;uniqueIndex" json:"coupon_code"`
	PointsUsed  int              `gorm:"not null" json:"points_used"`
	ExpiresAt   time.Time        `gorm:"not null" json:"expires_at"`
	Status      RedemptionStatus `gorm:"type:redemption_status;not null;default:'ACTIVE'" json:"status"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (RedemptionRecord) TableName() string {
	return "redemption_records"
}

func (r *RedemptionRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
