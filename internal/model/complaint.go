package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civic-trust-service/internal/geo"
)

type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "OPEN"
	ComplaintStatusAssigned   ComplaintStatus = "ASSIGNED"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
)

type ComplaintCategory string

const (
	CategoryGarbageDump    ComplaintCategory = "GARBAGE_DUMP"
	CategoryOverflowingBin ComplaintCategory = "OVERFLOWING_BIN"
	CategoryStreetLitter   ComplaintCategory = "STREET_LITTER"
	CategoryDrainBlockage  ComplaintCategory = "DRAIN_BLOCKAGE"
	CategoryOther          ComplaintCategory = "OTHER"
)

type Complaint struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Category         ComplaintCategory `gorm:"type:varchar(64);not null" json:"category"`
	Description      string            `gorm:"type:text" json:"description"`
	PhotoRef         string            `gorm:"type:text;not null" json:"photo_ref"`
	ImageHash        string            `gorm:"type:varchar(32);not null" json:"image_hash"`
	Latitude         float64           `gorm:"not null" json:"latitude"`
	Longitude        float64           `gorm:"not null" json:"longitude"`
	Status           ComplaintStatus   `gorm:"type:complaint_status;not null;default:'OPEN'" json:"status"`
	ReportFraudFlags []FlagKind        `gorm:"serializer:json;type:jsonb" json:"report_fraud_flags"`
	VerificationNote *string           `gorm:"type:text" json:"verification_note,omitempty"`
	ResolvedAt       *time.Time        `json:"resolved_at"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	CleanupProof *CleanupProof `gorm:"foreignKey:ComplaintID" json:"cleanup_proof,omitempty"`
}

func (Complaint) TableName() string {
	return "complaints"
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Complaint) Coordinates() geo.Coordinates {
	return geo.Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}
}

// CleanupProof is a worker's before/after evidence for one complaint.
// Immutable once created; a resubmission replaces it wholesale.
type CleanupProof struct {
	ID                          uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ComplaintID                 uuid.UUID  `gorm:"type:uuid;not null;index" json:"complaint_id"`
	SubmittedBy                 uuid.UUID  `gorm:"type:uuid;not null" json:"submitted_by"`
	PhotoRef                    string     `gorm:"type:text;not null" json:"photo_ref"`
	ImageHash                   string     `gorm:"type:varchar(32);not null" json:"image_hash"`
	Latitude                    float64    `gorm:"not null" json:"latitude"`
	Longitude                   float64    `gorm:"not null" json:"longitude"`
	AccuracyMeters              float64    `gorm:"not null" json:"accuracy_meters"`
	Watermark                   string     `gorm:"type:varchar(128)" json:"watermark"`
	DistanceFromComplaintMeters float64    `gorm:"not null" json:"distance_from_complaint_meters"`
	AICleanVerified             bool       `gorm:"not null" json:"ai_clean_verified"`
	FraudFlags                  []FlagKind `gorm:"serializer:json;type:jsonb" json:"fraud_flags"`
	CreatedAt                   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (CleanupProof) TableName() string {
	return "cleanup_proofs"
}

func (p *CleanupProof) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ComplaintStatusLog keeps the audit trail of complaint transitions,
// including admin accept/reject notes.
type ComplaintStatusLog struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ComplaintID uuid.UUID        `gorm:"type:uuid;not null;index" json:"complaint_id"`
	OldStatus   *ComplaintStatus `gorm:"type:complaint_status" json:"old_status"`
	NewStatus   ComplaintStatus  `gorm:"type:complaint_status;not null" json:"new_status"`
	Note        string           `gorm:"type:text" json:"note"`
	ChangedBy   *uuid.UUID       `gorm:"type:uuid" json:"changed_by"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (ComplaintStatusLog) TableName() string {
	return "complaint_status_log"
}

func (l *ComplaintStatusLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
