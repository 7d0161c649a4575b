package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'bin_status') THEN
			CREATE TYPE bin_status AS ENUM ('AVAILABLE', 'REPORTED_FULL', 'TEMPORARILY_DISABLED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'waste_size') THEN
			CREATE TYPE waste_size AS ENUM ('LARGE', 'MEDIUM', 'SMALL', 'HOME_DAILY');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'complaint_status') THEN
			CREATE TYPE complaint_status AS ENUM ('OPEN', 'ASSIGNED', 'IN_PROGRESS', 'RESOLVED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'alert_severity') THEN
			CREATE TYPE alert_severity AS ENUM ('LOW', 'MEDIUM', 'HIGH');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'alert_status') THEN
			CREATE TYPE alert_status AS ENUM ('OPEN', 'REVIEWED', 'BLOCKED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'wallet_entry_type') THEN
			CREATE TYPE wallet_entry_type AS ENUM ('EARN', 'REDEEM');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'redemption_status') THEN
			CREATE TYPE redemption_status AS ENUM ('ACTIVE', 'USED', 'EXPIRED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS bins (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		qr_code_id VARCHAR(64) NOT NULL UNIQUE,
		name VARCHAR(128) NOT NULL,
		ward VARCHAR(64),
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		status bin_status NOT NULL DEFAULT 'AVAILABLE',
		last_used_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS disposal_records (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL,
		bin_id UUID NOT NULL REFERENCES bins(id) ON DELETE CASCADE,
		qr_code_id VARCHAR(64) NOT NULL,
		photo_ref TEXT NOT NULL,
		image_hash VARCHAR(32) NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		accuracy_meters DOUBLE PRECISION NOT NULL,
		distance_meters DOUBLE PRECISION NOT NULL,
		geo_verified BOOLEAN NOT NULL,
		qr_verified BOOLEAN NOT NULL,
		ai_verified BOOLEAN NOT NULL,
		waste_size waste_size NOT NULL,
		fraud_flags JSONB,
		verified BOOLEAN NOT NULL,
		points_awarded INTEGER NOT NULL,
		rejection_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_disposal_records_user_id ON disposal_records (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_disposal_records_bin_id ON disposal_records (bin_id);`,
	`CREATE INDEX IF NOT EXISTS idx_disposal_records_image_hash ON disposal_records (image_hash);`,
	`CREATE INDEX IF NOT EXISTS idx_disposal_records_created_at ON disposal_records (created_at);`,
	`CREATE TABLE IF NOT EXISTS complaints (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL,
		category VARCHAR(64) NOT NULL,
		description TEXT,
		photo_ref TEXT NOT NULL,
		image_hash VARCHAR(32) NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		status complaint_status NOT NULL DEFAULT 'OPEN',
		report_fraud_flags JSONB,
		verification_note TEXT,
		resolved_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_user_id ON complaints (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints (status);`,
	`CREATE TABLE IF NOT EXISTS cleanup_proofs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		complaint_id UUID NOT NULL REFERENCES complaints(id) ON DELETE CASCADE,
		submitted_by UUID NOT NULL,
		photo_ref TEXT NOT NULL,
		image_hash VARCHAR(32) NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		accuracy_meters DOUBLE PRECISION NOT NULL,
		watermark VARCHAR(128),
		distance_from_complaint_meters DOUBLE PRECISION NOT NULL,
		ai_clean_verified BOOLEAN NOT NULL,
		fraud_flags JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_cleanup_proofs_complaint_id ON cleanup_proofs (complaint_id);`,
	`CREATE TABLE IF NOT EXISTS complaint_status_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		complaint_id UUID NOT NULL REFERENCES complaints(id) ON DELETE CASCADE,
		old_status complaint_status,
		new_status complaint_status NOT NULL,
		note TEXT,
		changed_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_complaint_status_log_complaint_id ON complaint_status_log (complaint_id);`,
	`CREATE TABLE IF NOT EXISTS wallet_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL,
		type wallet_entry_type NOT NULL,
		points INTEGER NOT NULL,
		reason TEXT NOT NULL,
		source VARCHAR(64) NOT NULL,
		reference_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_wallet_entries_user_id ON wallet_entries (user_id);`,
	`CREATE TABLE IF NOT EXISTS rewards (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(128) NOT NULL,
		description TEXT,
		points_required INTEGER NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS redemption_records (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL,
		reward_id UUID NOT NULL REFERENCES rewards(id) ON DELETE CASCADE,
		reward_title VARCHAR(128) NOT NULL,
		coupon_code VARCHAR(32) NOT NULL UNIQUE,
		points_used INTEGER NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		status redemption_status NOT NULL DEFAULT 'ACTIVE',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_redemption_records_user_id ON redemption_records (user_id);`,
	`CREATE TABLE IF NOT EXISTS fraud_alerts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		type VARCHAR(64) NOT NULL,
		severity alert_severity NOT NULL,
		message TEXT,
		action_id UUID NOT NULL,
		risk_score INTEGER NOT NULL,
		status alert_status NOT NULL DEFAULT 'OPEN',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_fraud_alert_action_type ON fraud_alerts (action_id, type);`,
	`CREATE INDEX IF NOT EXISTS idx_fraud_alerts_status ON fraud_alerts (status);`,
	`CREATE TABLE IF NOT EXISTS user_locations (
		user_id UUID PRIMARY KEY,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		accuracy_meters DOUBLE PRECISION NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS used_image_hashes (
		hash VARCHAR(32) PRIMARY KEY,
		action_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS pending_actions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		idempotency_key VARCHAR(64) NOT NULL UNIQUE,
		entity VARCHAR(64) NOT NULL,
		payload JSONB NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'QUEUED',
		attempts INTEGER NOT NULL DEFAULT 0,
		applied_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_pending_actions_status_created ON pending_actions (status, created_at);`,
	// Demo seed: ward 5 bins around the Madurai pilot area and the starter
	// reward catalog. ON CONFLICT keeps reruns idempotent.
	`INSERT INTO bins (qr_code_id, name, ward, latitude, longitude, status) VALUES
		('MMC-BIN-001', 'Anna Nagar Junction', 'Ward 5', 9.9166, 78.1194, 'AVAILABLE'),
		('MMC-BIN-002', 'Meenakshi Temple East Gate', 'Ward 5', 9.9195, 78.1208, 'AVAILABLE'),
		('MMC-BIN-003', 'Periyar Bus Stand', 'Ward 5', 9.9145, 78.1141, 'AVAILABLE')
	ON CONFLICT (qr_code_id) DO NOTHING;`,
	`INSERT INTO rewards (id, title, description, points_required, active) VALUES
		('a3a4a738-2f6e-4e2b-9a45-1f6a9a1c2d01', 'Bus Pass (1 day)', 'One-day city bus pass', 50, TRUE),
		('a3a4a738-2f6e-4e2b-9a45-1f6a9a1c2d02', 'Water Bill Credit', '20 rupee water bill credit', 100, TRUE),
		('a3a4a738-2f6e-4e2b-9a45-1f6a9a1c2d03', 'Compost Kit', 'Home composting starter kit', 250, TRUE)
	ON CONFLICT (id) DO NOTHING;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
