package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FlagKind string

const (
	FlagDuplicateImage      FlagKind = "DUPLICATE_IMAGE"
	FlagLocationAnomaly     FlagKind = "LOCATION_ANOMALY"
	FlagBeforeAfterMismatch FlagKind = "BEFORE_AFTER_MISMATCH"
	FlagQRMismatch          FlagKind = "QR_MISMATCH"
	FlagGeoFenceFailure     FlagKind = "GEO_FENCE_FAILURE"
	FlagMockLocation        FlagKind = "MOCK_LOCATION_DETECTED"
	FlagCooldownViolation   FlagKind = "COOLDOWN_VIOLATION"
	FlagAccuracyFailure     FlagKind = "LOCATION_ACCURACY_FAILURE"
	FlagTimestampInvalid    FlagKind = "TIMESTAMP_INVALID"
)

type AlertSeverity string

const (
	AlertSeverityLow    AlertSeverity = "LOW"
	AlertSeverityMedium AlertSeverity = "MEDIUM"
	AlertSeverityHigh   AlertSeverity = "HIGH"
)

type AlertStatus string

const (
	AlertStatusOpen     AlertStatus = "OPEN"
	AlertStatusReviewed AlertStatus = "REVIEWED"
	AlertStatusBlocked  AlertStatus = "BLOCKED"
)

// FraudAlert is one detected suspicious pattern on one action. At most one
// alert exists per (action, flag kind) pair.
type FraudAlert struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Type      FlagKind      `gorm:"type:varchar(64);not null;uniqueIndex:uniq_fraud_alert_action_type,priority:2" json:"type"`
	Severity  AlertSeverity `gorm:"type:alert_severity;not null" json:"severity"`
	Message   string        `gorm:"type:text" json:"message"`
	ActionID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:uniq_fraud_alert_action_type,priority:1" json:"action_id"`
	RiskScore int           `gorm:"not null" json:"risk_score"`
	Status    AlertStatus   `gorm:"type:alert_status;not null;default:'OPEN'" json:"status"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (FraudAlert) TableName() string {
	return "fraud_alerts"
}

func (a *FraudAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
