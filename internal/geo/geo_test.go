package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceIdenticalPointsIsZero(t *testing.T) {
	p := Coordinates{Latitude: 9.9166, Longitude: 78.1194}
	assert.Zero(t, Distance(p, p))
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Coordinates{Latitude: 9.9166, Longitude: 78.1194}
	b := Coordinates{Latitude: 9.9252, Longitude: 78.1198}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
	assert.Greater(t, Distance(a, b), 0.0)
}

func TestDistanceKnownValue(t *testing.T) {
	// Roughly one km of latitude near the equator.
	a := Coordinates{Latitude: 0, Longitude: 0}
	b := Coordinates{Latitude: 0.009, Longitude: 0}
	assert.InDelta(t, 1000.0, Distance(a, b), 5.0)
}

func TestHotspotKeyCollapsesNearbyPoints(t *testing.T) {
	a := Coordinates{Latitude: 9.91661, Longitude: 78.11941}
	b := Coordinates{Latitude: 9.91669, Longitude: 78.11949}
	assert.Equal(t, HotspotKey(a), HotspotKey(b))
}

func TestHotspotKeySeparatesDistantPoints(t *testing.T) {
	a := Coordinates{Latitude: 9.9166, Longitude: 78.1194}
	b := Coordinates{Latitude: 9.9300, Longitude: 78.1194}
	assert.NotEqual(t, HotspotKey(a), HotspotKey(b))
}

func TestHotspotKeyIsStable(t *testing.T) {
	p := Coordinates{Latitude: 9.9166, Longitude: 78.1194}
	assert.Equal(t, HotspotKey(p), HotspotKey(p))
}
