package fraud

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"civic-trust-service/internal/geo"
	"civic-trust-service/internal/model"
)

const (
	// CooldownWindow is the minimum gap between two disposals by the same
	// user at the same bin.
	CooldownWindow = 2 * time.Hour

	// BlockThreshold auto-blocks an alert when the action's risk score
	// reaches it.
	BlockThreshold = 80

	maxPlausibleSpeedMps     = 33.33 // ~120 km/h
	maxPlausibleDisplacement = 2000.0
)

var flagWeights = map[model.FlagKind]int{
	model.FlagDuplicateImage:      40,
	model.FlagLocationAnomaly:     50,
	model.FlagBeforeAfterMismatch: 45,
	model.FlagQRMismatch:          20,
	model.FlagGeoFenceFailure:     50,
	model.FlagMockLocation:        50,
	model.FlagCooldownViolation:   30,
	model.FlagAccuracyFailure:     20,
	model.FlagTimestampInvalid:    20,
}

var flagSeverities = map[model.FlagKind]model.AlertSeverity{
	model.FlagDuplicateImage:      model.AlertSeverityMedium,
	model.FlagLocationAnomaly:     model.AlertSeverityHigh,
	model.FlagBeforeAfterMismatch: model.AlertSeverityHigh,
	model.FlagQRMismatch:          model.AlertSeverityLow,
	model.FlagGeoFenceFailure:     model.AlertSeverityHigh,
	model.FlagMockLocation:        model.AlertSeverityHigh,
	model.FlagCooldownViolation:   model.AlertSeverityMedium,
	model.FlagAccuracyFailure:     model.AlertSeverityLow,
	model.FlagTimestampInvalid:    model.AlertSeverityLow,
}

var flagMessages = map[model.FlagKind]string{
	model.FlagDuplicateImage:      "image hash already used by a previous submission",
	model.FlagLocationAnomaly:     "implied travel from last known location is impossible",
	model.FlagBeforeAfterMismatch: "after photo is identical to the before photo",
	model.FlagQRMismatch:          "submitted QR code does not match the bin",
	model.FlagGeoFenceFailure:     "submission outside the allowed radius",
	model.FlagMockLocation:        "mocked or simulated location reported",
	model.FlagCooldownViolation:   "repeat disposal at the same bin within the cooldown window",
	model.FlagAccuracyFailure:     "location accuracy above the allowed ceiling",
	model.FlagTimestampInvalid:    "location fix older than the allowed age",
}

// Weight returns the fixed risk weight of a flag kind.
func Weight(kind model.FlagKind) int {
	return flagWeights[kind]
}

// Severity returns the fixed severity of a flag kind.
func Severity(kind model.FlagKind) model.AlertSeverity {
	return flagSeverities[kind]
}

// RiskScore is the weighted sum of an action's flags. Unbounded above.
func RiskScore(flags []model.FlagKind) int {
	score := 0
	for _, f := range flags {
		score += flagWeights[f]
	}
	return score
}

// Facts are the per-action rule inputs, already resolved by the caller.
// Every true field raises exactly one flag of the matching kind.
type Facts struct {
	DuplicateImage      bool
	LocationAnomaly     bool
	BeforeAfterMismatch bool
	QRMismatch          bool
	GeoFenceFailure     bool
	MockLocation        bool
	CooldownViolation   bool
	AccuracyFailure     bool
	TimestampInvalid    bool
}

// evaluationOrder fixes the flag ordering across the codebase and in stored
// records.
var evaluationOrder = []model.FlagKind{
	model.FlagDuplicateImage,
	model.FlagLocationAnomaly,
	model.FlagBeforeAfterMismatch,
	model.FlagQRMismatch,
	model.FlagGeoFenceFailure,
	model.FlagMockLocation,
	model.FlagCooldownViolation,
	model.FlagAccuracyFailure,
	model.FlagTimestampInvalid,
}

// Evaluate runs the rule sweep and returns the ordered flag list. No kind
// appears twice.
func Evaluate(f Facts) []model.FlagKind {
	raised := map[model.FlagKind]bool{
		model.FlagDuplicateImage:      f.DuplicateImage,
		model.FlagLocationAnomaly:     f.LocationAnomaly,
		model.FlagBeforeAfterMismatch: f.BeforeAfterMismatch,
		model.FlagQRMismatch:          f.QRMismatch,
		model.FlagGeoFenceFailure:     f.GeoFenceFailure,
		model.FlagMockLocation:        f.MockLocation,
		model.FlagCooldownViolation:   f.CooldownViolation,
		model.FlagAccuracyFailure:     f.AccuracyFailure,
		model.FlagTimestampInvalid:    f.TimestampInvalid,
	}

	flags := make([]model.FlagKind, 0, len(evaluationOrder))
	for _, kind := range evaluationOrder {
		if raised[kind] {
			flags = append(flags, kind)
		}
	}
	return flags
}

// LocationAnomaly reports impossible travel between a user's previous known
// location and the current one: implied speed above ~120 km/h or an absolute
// displacement beyond 2 km. False when there is no previous snapshot.
func LocationAnomaly(previous *model.UserLocation, current geo.Coordinates, at time.Time) bool {
	if previous == nil {
		return false
	}

	elapsed := at.Sub(previous.RecordedAt).Seconds()
	if elapsed < 1 {
		elapsed = 1
	}

	displacement := geo.Distance(previous.Coordinates(), current)
	speed := displacement / elapsed

	return speed > maxPlausibleSpeedMps || displacement > maxPlausibleDisplacement
}

// BuildAlerts produces one alert per raised flag kind for the action. Alerts
// are born blocked when the combined risk score reaches the threshold, open
// otherwise.
func BuildAlerts(actionID uuid.UUID, flags []model.FlagKind) []model.FraudAlert {
	if len(flags) == 0 {
		return nil
	}

	score := RiskScore(flags)
	status := model.AlertStatusOpen
	if score >= BlockThreshold {
		status = model.AlertStatusBlocked
	}

	alerts := make([]model.FraudAlert, 0, len(flags))
	for _, kind := range flags {
		alerts = append(alerts, model.FraudAlert{
			ID:        uuid.New(),
			Type:      kind,
			Severity:  flagSeverities[kind],
			Message:   fmt.Sprintf("%s (weight %d)", flagMessages[kind], flagWeights[kind]),
			ActionID:  actionID,
			RiskScore: score,
			Status:    status,
		})
	}
	return alerts
}
