package fraud

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-trust-service/internal/geo"
	"civic-trust-service/internal/model"
)

func TestRiskScoreEmptyIsZero(t *testing.T) {
	assert.Zero(t, RiskScore(nil))
	assert.Zero(t, RiskScore([]model.FlagKind{}))
}

func TestRiskScoreSumsWeights(t *testing.T) {
	flags := []model.FlagKind{
		model.FlagDuplicateImage,  // 40
		model.FlagQRMismatch,      // 20
		model.FlagAccuracyFailure, // 20
	}
	assert.Equal(t, 80, RiskScore(flags))
}

func TestRiskScoreIsUncapped(t *testing.T) {
	flags := []model.FlagKind{
		model.FlagLocationAnomaly,
		model.FlagGeoFenceFailure,
		model.FlagMockLocation,
	}
	assert.Equal(t, 150, RiskScore(flags))
}

func TestEvaluateOrderAndDeduplication(t *testing.T) {
	flags := Evaluate(Facts{
		QRMismatch:     true,
		DuplicateImage: true,
		MockLocation:   true,
	})
	assert.Equal(t, []model.FlagKind{
		model.FlagDuplicateImage,
		model.FlagQRMismatch,
		model.FlagMockLocation,
	}, flags)
}

func TestEvaluateNoFacts(t *testing.T) {
	assert.Empty(t, Evaluate(Facts{}))
}

func TestLocationAnomaly(t *testing.T) {
	now := time.Now()
	origin := geo.Coordinates{Latitude: 9.9166, Longitude: 78.1194}

	t.Run("no previous snapshot", func(t *testing.T) {
		assert.False(t, LocationAnomaly(nil, origin, now))
	})

	t.Run("stationary user", func(t *testing.T) {
		prev := &model.UserLocation{
			Latitude: origin.Latitude, Longitude: origin.Longitude,
			RecordedAt: now.Add(-10 * time.Minute),
		}
		assert.False(t, LocationAnomaly(prev, origin, now))
	})

	t.Run("impossible speed", func(t *testing.T) {
		// ~1 km in one second.
		prev := &model.UserLocation{
			Latitude: 9.9166, Longitude: 78.1194,
			RecordedAt: now.Add(-time.Second),
		}
		cur := geo.Coordinates{Latitude: 9.9256, Longitude: 78.1194}
		assert.True(t, LocationAnomaly(prev, cur, now))
	})

	t.Run("displacement beyond two km", func(t *testing.T) {
		// ~3 km over two hours: slow, but too far.
		prev := &model.UserLocation{
			Latitude: 9.9166, Longitude: 78.1194,
			RecordedAt: now.Add(-2 * time.Hour),
		}
		cur := geo.Coordinates{Latitude: 9.9436, Longitude: 78.1194}
		assert.True(t, LocationAnomaly(prev, cur, now))
	})

	t.Run("zero elapsed floors to one second", func(t *testing.T) {
		prev := &model.UserLocation{
			Latitude: 9.9166, Longitude: 78.1194,
			RecordedAt: now,
		}
		cur := geo.Coordinates{Latitude: 9.91661, Longitude: 78.1194}
		assert.False(t, LocationAnomaly(prev, cur, now))
	})
}

func TestBuildAlertsStatusByThreshold(t *testing.T) {
	actionID := uuid.New()

	open := BuildAlerts(actionID, []model.FlagKind{model.FlagQRMismatch})
	require.Len(t, open, 1)
	assert.Equal(t, model.AlertStatusOpen, open[0].Status)
	assert.Equal(t, 20, open[0].RiskScore)
	assert.Equal(t, model.AlertSeverityLow, open[0].Severity)

	blocked := BuildAlerts(actionID, []model.FlagKind{
		model.FlagDuplicateImage,
		model.FlagLocationAnomaly,
	})
	require.Len(t, blocked, 2)
	for _, alert := range blocked {
		assert.Equal(t, model.AlertStatusBlocked, alert.Status)
		assert.Equal(t, 90, alert.RiskScore)
		assert.Equal(t, actionID, alert.ActionID)
	}
}

func TestBuildAlertsExactThresholdBlocks(t *testing.T) {
	alerts := BuildAlerts(uuid.New(), []model.FlagKind{
		model.FlagDuplicateImage,  // 40
		model.FlagQRMismatch,      // 20
		model.FlagAccuracyFailure, // 20
	})
	require.Len(t, alerts, 3)
	assert.Equal(t, model.AlertStatusBlocked, alerts[0].Status)
}

func TestBuildAlertsNone(t *testing.T) {
	assert.Nil(t, BuildAlerts(uuid.New(), nil))
}

func TestBuildAlertsOnePerKind(t *testing.T) {
	alerts := BuildAlerts(uuid.New(), Evaluate(Facts{GeoFenceFailure: true, MockLocation: true}))
	require.Len(t, alerts, 2)
	assert.NotEqual(t, alerts[0].Type, alerts[1].Type)
}
