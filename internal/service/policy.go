package service

import (
	"time"

	"civic-trust-service/internal/config"
	"civic-trust-service/internal/model"
)

// rewardPoints is the fixed base award per waste size for a verified
// disposal.
var rewardPoints = map[model.WasteSize]int{
	model.WasteSizeLarge:     20,
	model.WasteSizeMedium:    10,
	model.WasteSizeSmall:     3,
	model.WasteSizeHomeDaily: 0,
}

// Policy bundles the engine thresholds. Values come from config in
// production and from DefaultPolicy in tests.
type Policy struct {
	BinGeoFenceMeters   float64
	CleanupRadiusMeters float64
	MaxAccuracyMeters   float64
	MaxFixAge           time.Duration
	CooldownWindow      time.Duration
	FirstDisposalBonus  int
	CouponPrefix        string
	RedemptionValidity  time.Duration
	HotspotTopN         int
}

func DefaultPolicy() Policy {
	return Policy{
		BinGeoFenceMeters:   5,
		CleanupRadiusMeters: 10,
		MaxAccuracyMeters:   10,
		MaxFixAge:           30 * time.Second,
		CooldownWindow:      2 * time.Hour,
		FirstDisposalBonus:  50,
		CouponPrefix:        "MMC",
		RedemptionValidity:  14 * 24 * time.Hour,
		HotspotTopN:         5,
	}
}

func PolicyFromConfig(cfg config.EngineConfig) Policy {
	p := DefaultPolicy()
	p.BinGeoFenceMeters = cfg.BinGeoFenceMeters
	p.CleanupRadiusMeters = cfg.CleanupRadiusMeters
	p.MaxAccuracyMeters = cfg.MaxAccuracyMeters
	p.MaxFixAge = time.Duration(cfg.MaxFixAgeSeconds * float64(time.Second))
	p.CooldownWindow = time.Duration(cfg.CooldownHours * float64(time.Hour))
	p.FirstDisposalBonus = cfg.FirstDisposalBonus
	p.CouponPrefix = cfg.CouponPrefix
	p.RedemptionValidity = time.Duration(cfg.RedemptionValidityDays) * 24 * time.Hour
	p.HotspotTopN = cfg.HotspotTopN
	return p
}
