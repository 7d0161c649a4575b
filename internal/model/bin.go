package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civic-trust-service/internal/geo"
)

type BinStatus string

const (
	BinStatusAvailable    BinStatus = "AVAILABLE"
	BinStatusReportedFull BinStatus = "REPORTED_FULL"
	BinStatusDisabled     BinStatus = "TEMPORARILY_DISABLED"
)

type Bin struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	QRCodeID   string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"qr_code_id"`
	Name       string     `gorm:"type:varchar(128);not null" json:"name"`
	Ward       string     `gorm:"type:varchar(64)" json:"ward"`
	Latitude   float64    `gorm:"not null" json:"latitude"`
	Longitude  float64    `gorm:"not null" json:"longitude"`
	Status     BinStatus  `gorm:"type:bin_status;not null;default:'AVAILABLE'" json:"status"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Bin) TableName() string {
	return "bins"
}

func (b *Bin) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b *Bin) Coordinates() geo.Coordinates {
	return geo.Coordinates{Latitude: b.Latitude, Longitude: b.Longitude}
}
