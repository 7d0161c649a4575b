package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
	TokenTTL     time.Duration
	IdentityURL  string
}

// EngineConfig holds the verification-engine tunables. Defaults match the
// production policy; override only for staging experiments.
type EngineConfig struct {
	BinGeoFenceMeters      float64
	CleanupRadiusMeters    float64
	MaxAccuracyMeters      float64
	MaxFixAgeSeconds       float64
	CooldownHours          float64
	FirstDisposalBonus     int
	CouponPrefix           string
	RedemptionValidityDays int
	HotspotTopN            int
}

type SyncConfig struct {
	RemoteBaseURL  string
	RevalidateURL  string
	RequestTimeout time.Duration
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Engine      EngineConfig
	Sync        SyncConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			TokenTTL:     v.GetDuration("JWT_TOKEN_TTL"),
			IdentityURL:  v.GetString("IDENTITY_URL"),
		},
		Engine: EngineConfig{
			BinGeoFenceMeters:      v.GetFloat64("ENGINE_BIN_GEOFENCE_METERS"),
			CleanupRadiusMeters:    v.GetFloat64("ENGINE_CLEANUP_RADIUS_METERS"),
			MaxAccuracyMeters:      v.GetFloat64("ENGINE_MAX_ACCURACY_METERS"),
			MaxFixAgeSeconds:       v.GetFloat64("ENGINE_MAX_FIX_AGE_SECONDS"),
			CooldownHours:          v.GetFloat64("ENGINE_COOLDOWN_HOURS"),
			FirstDisposalBonus:     v.GetInt("ENGINE_FIRST_DISPOSAL_BONUS"),
			CouponPrefix:           v.GetString("ENGINE_COUPON_PREFIX"),
			RedemptionValidityDays: v.GetInt("ENGINE_REDEMPTION_VALIDITY_DAYS"),
			HotspotTopN:            v.GetInt("ENGINE_HOTSPOT_TOP_N"),
		},
		Sync: SyncConfig{
			RemoteBaseURL:  v.GetString("SYNC_REMOTE_BASE_URL"),
			RevalidateURL:  v.GetString("SYNC_REVALIDATE_URL"),
			RequestTimeout: v.GetDuration("SYNC_REQUEST_TIMEOUT"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7094
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Engine.BinGeoFenceMeters <= 0 {
		cfg.Engine.BinGeoFenceMeters = 5
	}
	if cfg.Engine.CleanupRadiusMeters <= 0 {
		cfg.Engine.CleanupRadiusMeters = 10
	}
	if cfg.Engine.MaxAccuracyMeters <= 0 {
		cfg.Engine.MaxAccuracyMeters = 10
	}
	if cfg.Engine.MaxFixAgeSeconds <= 0 {
		cfg.Engine.MaxFixAgeSeconds = 30
	}
	if cfg.Engine.CooldownHours <= 0 {
		cfg.Engine.CooldownHours = 2
	}
	if cfg.Engine.FirstDisposalBonus <= 0 {
		cfg.Engine.FirstDisposalBonus = 50
	}
	if cfg.Engine.CouponPrefix == "" {
		cfg.Engine.CouponPrefix = "MMC"
	}
	if cfg.Engine.RedemptionValidityDays <= 0 {
		cfg.Engine.RedemptionValidityDays = 14
	}
	if cfg.Engine.HotspotTopN <= 0 {
		cfg.Engine.HotspotTopN = 5
	}
	if cfg.Sync.RequestTimeout <= 0 {
		cfg.Sync.RequestTimeout = 5 * time.Second
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
