package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civic-trust-service/internal/geo"
)

// UserLocation is the last known position snapshot per user, kept for the
// impossible-travel check. Updated on every submitted action regardless of
// the verification outcome.
type UserLocation struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Latitude       float64   `gorm:"not null" json:"latitude"`
	Longitude      float64   `gorm:"not null" json:"longitude"`
	AccuracyMeters float64   `gorm:"not null" json:"accuracy_meters"`
	RecordedAt     time.Time `gorm:"not null" json:"recorded_at"`
}

func (UserLocation) TableName() string {
	return "user_locations"
}

func (u *UserLocation) Coordinates() geo.Coordinates {
	return geo.Coordinates{Latitude: u.Latitude, Longitude: u.Longitude}
}

// UsedImageHash is one member of the duplicate-detection set. The set grows
// on every non-duplicate submission hash, whether or not the submission
// itself was verified.
type UsedImageHash struct {
	Hash      string    `gorm:"type:varchar(32);primaryKey" json:"hash"`
	ActionID  uuid.UUID `gorm:"type:uuid;not null" json:"action_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UsedImageHash) TableName() string {
	return "used_image_hashes"
}

type PendingActionStatus string

const (
	PendingActionQueued  PendingActionStatus = "QUEUED"
	PendingActionApplied PendingActionStatus = "APPLIED"
)

// PendingAction is one queued remote-sync descriptor. The queue is FIFO and
// durable; the idempotency key makes replaying an already-applied action a
// no-op. Payloads carry the locally computed verdict so replay never
// recomputes verification.
type PendingAction struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	IdempotencyKey string              `gorm:"type:varchar(64);not null;uniqueIndex" json:"idempotency_key"`
	Entity         string              `gorm:"type:varchar(64);not null" json:"entity"`
	Payload        []byte              `gorm:"type:jsonb;not null" json:"payload"`
	Status         PendingActionStatus `gorm:"type:varchar(16);not null;default:'QUEUED'" json:"status"`
	Attempts       int                 `gorm:"not null;default:0" json:"attempts"`
	AppliedAt      *time.Time          `json:"applied_at"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (PendingAction) TableName() string {
	return "pending_actions"
}

func (p *PendingAction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
