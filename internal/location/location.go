package location

import (
	"context"
	"errors"
	"time"

	"civic-trust-service/internal/geo"
)

type Strength string

const (
	StrengthStrong Strength = "strong"
	StrengthMedium Strength = "medium"
	StrengthWeak   Strength = "weak"
	StrengthNone   Strength = "none"
)

const (
	// MaxAccuracyMeters is the ceiling beyond which a fix is advisory-flagged
	// and later fails the authoritative geo-verification check.
	MaxAccuracyMeters = 10.0
	// MaxFixAge is the freshness ceiling for a fix.
	MaxFixAge = 30 * time.Second
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrMockLocation     = errors.New("mock location detected")

	// Advisory errors: the snapshot is still returned and the verification
	// rules perform the authoritative check later.
	ErrLowAccuracy = errors.New("location accuracy exceeds allowed ceiling")
	ErrStaleFix    = errors.New("location fix is stale")
)

// Classify maps a fix accuracy to a signal strength via fixed thresholds.
func Classify(accuracyMeters float64) Strength {
	switch {
	case accuracyMeters <= 5:
		return StrengthStrong
	case accuracyMeters <= 10:
		return StrengthMedium
	case accuracyMeters <= 40:
		return StrengthWeak
	default:
		return StrengthNone
	}
}

// Fix is one raw position reading as reported by a device location
// collaborator or a client payload.
type Fix struct {
	Coordinates    geo.Coordinates
	AccuracyMeters float64
	Timestamp      time.Time
	Mocked         bool
}

// Snapshot is a fix graded at capture time. Immutable once produced.
type Snapshot struct {
	Coordinates    geo.Coordinates `json:"coordinates"`
	AccuracyMeters float64         `json:"accuracy_meters"`
	Timestamp      time.Time       `json:"timestamp"`
	AgeSeconds     float64         `json:"age_seconds"`
	Mocked         bool            `json:"mocked"`
	Strength       Strength        `json:"strength"`
}

// Grade derives a snapshot from a raw fix. It never rejects: server-side
// flows keep mocked fixes and flag them through the fraud rules instead.
func Grade(fix Fix, now time.Time) Snapshot {
	age := now.Sub(fix.Timestamp).Seconds()
	if age < 0 {
		age = 0
	}
	return Snapshot{
		Coordinates:    fix.Coordinates,
		AccuracyMeters: fix.AccuracyMeters,
		Timestamp:      fix.Timestamp,
		AgeSeconds:     age,
		Mocked:         fix.Mocked,
		Strength:       Classify(fix.AccuracyMeters),
	}
}

// NewSnapshot grades a fix against the capture-time quality rules. A mocked
// fix is fatal and produces no snapshot. Low accuracy and staleness are
// returned as advisory errors alongside a still-present snapshot so the
// caller decides whether to proceed.
func NewSnapshot(fix Fix, now time.Time) (*Snapshot, []error, error) {
	if fix.Mocked {
		return nil, nil, ErrMockLocation
	}

	snapshot := Grade(fix, now)

	var advisories []error
	if fix.AccuracyMeters > MaxAccuracyMeters {
		advisories = append(advisories, ErrLowAccuracy)
	}
	if snapshot.AgeSeconds > MaxFixAge.Seconds() {
		advisories = append(advisories, ErrStaleFix)
	}

	return &snapshot, advisories, nil
}

// Provider is the device location collaborator: it requests permission and
// produces one high-accuracy fix. Implementations return ErrPermissionDenied
// when access is refused.
type Provider interface {
	Fix(ctx context.Context) (Fix, error)
}

// Capture obtains a fix from the provider and grades it.
func Capture(ctx context.Context, p Provider, now time.Time) (*Snapshot, []error, error) {
	fix, err := p.Fix(ctx)
	if err != nil {
		return nil, nil, err
	}
	return NewSnapshot(fix, now)
}
