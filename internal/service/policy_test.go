package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"civic-trust-service/internal/config"
)

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.EngineConfig{
		BinGeoFenceMeters:      7,
		CleanupRadiusMeters:    12,
		MaxAccuracyMeters:      15,
		MaxFixAgeSeconds:       45,
		CooldownHours:          1.5,
		FirstDisposalBonus:     25,
		CouponPrefix:           "MDU",
		RedemptionValidityDays: 7,
		HotspotTopN:            3,
	})

	assert.Equal(t, 7.0, p.BinGeoFenceMeters)
	assert.Equal(t, 12.0, p.CleanupRadiusMeters)
	assert.Equal(t, 15.0, p.MaxAccuracyMeters)
	assert.Equal(t, 45*time.Second, p.MaxFixAge)
	assert.Equal(t, 90*time.Minute, p.CooldownWindow)
	assert.Equal(t, 25, p.FirstDisposalBonus)
	assert.Equal(t, "MDU", p.CouponPrefix)
	assert.Equal(t, 7*24*time.Hour, p.RedemptionValidity)
	assert.Equal(t, 3, p.HotspotTopN)
}
