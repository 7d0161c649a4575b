package model

import (
	"time"

	"github.com/google/uuid"
)

// DisposalResult is the API view of a processed disposal: the stored record
// plus everything the client surfaces immediately.
type DisposalResult struct {
	Record     DisposalRecord `json:"record"`
	RiskScore  int            `json:"risk_score"`
	Advisories []string       `json:"advisories,omitempty"`
}

// CleanupResult is the API view of a submitted cleanup proof.
type CleanupResult struct {
	Proof           CleanupProof    `json:"proof"`
	ComplaintStatus ComplaintStatus `json:"complaint_status"`
	GeoOK           bool            `json:"geo_ok"`
}

type WalletStatement struct {
	Balance int           `json:"balance"`
	Entries []WalletEntry `json:"entries"`
}

type BinUsage struct {
	BinID         uuid.UUID `json:"bin_id"`
	Name          string    `json:"name"`
	TotalActions  int       `json:"total_actions"`
	VerifiedCount int       `json:"verified_count"`
}

type Hotspot struct {
	CellKey string `json:"cell_key"`
	Count   int    `json:"count"`
}

type AnalyticsSummary struct {
	BinUsage                []BinUsage `json:"bin_usage"`
	ComplaintResolutionRate float64    `json:"complaint_resolution_rate"`
	AvgResolutionHours      float64    `json:"avg_resolution_hours"`
	VerificationRate        float64    `json:"verification_rate"`
	ActiveUsers             int        `json:"active_users"`
	TotalPointsDistributed  int        `json:"total_points_distributed"`
	TotalRedemptions        int        `json:"total_redemptions"`
	Hotspots                []Hotspot  `json:"hotspots"`
	GeneratedAt             time.Time  `json:"generated_at"`
}
