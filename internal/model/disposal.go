package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civic-trust-service/internal/geo"
)

type WasteSize string

const (
	WasteSizeLarge     WasteSize = "LARGE"
	WasteSizeMedium    WasteSize = "MEDIUM"
	WasteSizeSmall     WasteSize = "SMALL"
	WasteSizeHomeDaily WasteSize = "HOME_DAILY"
)

// DisposalRecord is one submitted disposal action with its full verification
// verdict. Append-only: never mutated after creation.
type DisposalRecord struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	BinID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"bin_id"`
	QRCodeID        string     `gorm:"type:varchar(64);not null" json:"qr_code_id"`
	PhotoRef        string     `gorm:"type:text;not null" json:"photo_ref"`
	ImageHash       string     `gorm:"type:varchar(32);not null;index" json:"image_hash"`
	Latitude        float64    `gorm:"not null" json:"latitude"`
	Longitude       float64    `gorm:"not null" json:"longitude"`
	AccuracyMeters  float64    `gorm:"not null" json:"accuracy_meters"`
	DistanceMeters  float64    `gorm:"not null" json:"distance_meters"`
	GeoVerified     bool       `gorm:"not null" json:"geo_verified"`
	QRVerified      bool       `gorm:"not null" json:"qr_verified"`
	AIVerified      bool       `gorm:"not null" json:"ai_verified"`
	WasteSize       WasteSize  `gorm:"type:waste_size;not null" json:"waste_size"`
	FraudFlags      []FlagKind `gorm:"serializer:json;type:jsonb" json:"fraud_flags"`
	Verified        bool       `gorm:"not null" json:"verified"`
	PointsAwarded   int        `gorm:"not null" json:"points_awarded"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Bin *Bin `gorm:"foreignKey:BinID" json:"bin,omitempty"`
}

func (DisposalRecord) TableName() string {
	return "disposal_records"
}

func (d *DisposalRecord) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d *DisposalRecord) Coordinates() geo.Coordinates {
	return geo.Coordinates{Latitude: d.Latitude, Longitude: d.Longitude}
}
