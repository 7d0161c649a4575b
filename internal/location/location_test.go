package location

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-trust-service/internal/geo"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     Strength
	}{
		{1, StrengthStrong},
		{5, StrengthStrong},
		{5.1, StrengthMedium},
		{10, StrengthMedium},
		{11, StrengthWeak},
		{40, StrengthWeak},
		{41, StrengthNone},
		{200, StrengthNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.accuracy), "accuracy %v", tt.accuracy)
	}
}

func TestNewSnapshotRejectsMockedFix(t *testing.T) {
	now := time.Now()
	fix := Fix{Timestamp: now, AccuracyMeters: 2, Mocked: true}

	snapshot, advisories, err := NewSnapshot(fix, now)
	assert.ErrorIs(t, err, ErrMockLocation)
	assert.Nil(t, snapshot)
	assert.Empty(t, advisories)
}

func TestNewSnapshotFreshAccurateFix(t *testing.T) {
	now := time.Now()
	fix := Fix{
		Coordinates:    geo.Coordinates{Latitude: 9.9166, Longitude: 78.1194},
		AccuracyMeters: 2,
		Timestamp:      now.Add(-time.Second),
	}

	snapshot, advisories, err := NewSnapshot(fix, now)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Empty(t, advisories)
	assert.Equal(t, StrengthStrong, snapshot.Strength)
	assert.InDelta(t, 1.0, snapshot.AgeSeconds, 0.01)
}

func TestNewSnapshotAdvisoriesKeepSnapshot(t *testing.T) {
	now := time.Now()
	fix := Fix{
		AccuracyMeters: 25,
		Timestamp:      now.Add(-45 * time.Second),
	}

	snapshot, advisories, err := NewSnapshot(fix, now)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Contains(t, advisories, ErrLowAccuracy)
	assert.Contains(t, advisories, ErrStaleFix)
	assert.Equal(t, StrengthWeak, snapshot.Strength)
}

type fakeProvider struct {
	fix Fix
	err error
}

func (f fakeProvider) Fix(context.Context) (Fix, error) {
	return f.fix, f.err
}

func TestCapturePermissionDenied(t *testing.T) {
	_, _, err := Capture(context.Background(), fakeProvider{err: ErrPermissionDenied}, time.Now())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCaptureReturnsGradedSnapshot(t *testing.T) {
	now := time.Now()
	provider := fakeProvider{fix: Fix{AccuracyMeters: 8, Timestamp: now}}

	snapshot, advisories, err := Capture(context.Background(), provider, now)
	require.NoError(t, err)
	assert.Empty(t, advisories)
	assert.Equal(t, StrengthMedium, snapshot.Strength)
}
