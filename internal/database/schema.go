package database

import (
	"context"
	"database/sql"
)

// EnsureSchema creates all tables the engine needs when they do not exist
// yet. Statements are idempotent so the call is safe on every startup.
//
// The one constraint that carries correctness weight is
// uq_room_night_active on booking_nights: is_active is 1 for rows that
// hold inventory and NULL for released rows. MySQL allows any number of
// NULL duplicates in a unique index, which yields the partial-uniqueness
// semantics the allocation invariant requires — at most one ACTIVE row
// per (room_id, night).
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS properties (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			currency CHAR(3) NOT NULL DEFAULT 'EUR',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS room_types (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			property_id BIGINT UNSIGNED NOT NULL,
			name VARCHAR(255) NOT NULL,
			base_occupancy INT NOT NULL DEFAULT 2,
			KEY idx_room_types_property (property_id)
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			property_id BIGINT UNSIGNED NOT NULL,
			room_type_id BIGINT UNSIGNED NULL,
			name VARCHAR(255) NOT NULL,
			last_synced_at DATETIME NULL,
			last_sync_error VARCHAR(512) NOT NULL DEFAULT '',
			KEY idx_rooms_property (property_id)
		)`,
		`CREATE TABLE IF NOT EXISTS room_blocks (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			room_id BIGINT UNSIGNED NOT NULL,
			kind ENUM('manual','synced') NOT NULL DEFAULT 'manual',
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			note VARCHAR(512) NOT NULL DEFAULT '',
			KEY idx_room_blocks_room_dates (room_id, start_date, end_date)
		)`,
		`CREATE TABLE IF NOT EXISTS rate_plans (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			property_id BIGINT UNSIGNED NOT NULL,
			code VARCHAR(32) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			UNIQUE KEY uq_rate_plans_property_code (property_id, code)
		)`,
		`CREATE TABLE IF NOT EXISTS rate_price_intervals (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			property_id BIGINT UNSIGNED NOT NULL,
			room_type_id BIGINT UNSIGNED NOT NULL,
			rate_plan_id BIGINT UNSIGNED NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			weekday_mask TINYINT UNSIGNED NOT NULL DEFAULT 127,
			base_rate_cents BIGINT NOT NULL DEFAULT 0,
			min_los INT NOT NULL DEFAULT 0,
			closed TINYINT(1) NOT NULL DEFAULT 0,
			priority INT NOT NULL DEFAULT 0,
			KEY idx_rate_intervals_grid (room_type_id, rate_plan_id, start_date, end_date)
		)`,
		`CREATE TABLE IF NOT EXISTS commercial_settings (
			property_id BIGINT UNSIGNED PRIMARY KEY,
			extra_adult_fee_cents BIGINT NOT NULL DEFAULT 0,
			prices_include_taxes TINYINT(1) NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS child_pricing_rules (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			property_id BIGINT UNSIGNED NOT NULL,
			min_age INT NOT NULL,
			max_age INT NOT NULL,
			fee_cents BIGINT NOT NULL DEFAULT 0,
			sort_order INT NOT NULL DEFAULT 0,
			KEY idx_child_rules_property (property_id, sort_order)
		)`,
		`CREATE TABLE IF NOT EXISTS tax_rules (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			property_id BIGINT UNSIGNED NOT NULL,
			name VARCHAR(255) NOT NULL,
			percent DECIMAL(6,3) NOT NULL DEFAULT 0,
			active TINYINT(1) NOT NULL DEFAULT 1,
			KEY idx_tax_rules_property (property_id)
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			property_id BIGINT UNSIGNED NOT NULL,
			room_id BIGINT UNSIGNED NOT NULL,
			status ENUM('HOLD','PENDING_PAYMENT','CONFIRMED','CANCELLED') NOT NULL DEFAULT 'HOLD',
			check_in DATE NOT NULL,
			check_out DATE NOT NULL,
			guest_name VARCHAR(255) NOT NULL,
			guest_contact VARCHAR(255) NOT NULL DEFAULT '',
			adults INT NOT NULL,
			children_count INT NOT NULL DEFAULT 0,
			subtotal_cents BIGINT NOT NULL DEFAULT 0,
			taxes_cents BIGINT NOT NULL DEFAULT 0,
			total_cents BIGINT NOT NULL DEFAULT 0,
			currency CHAR(3) NOT NULL DEFAULT 'EUR',
			payment_ref VARCHAR(255) NULL,
			quote_json JSON NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_bookings_room_dates (room_id, check_in, check_out),
			KEY idx_bookings_property (property_id)
		)`,
		`CREATE TABLE IF NOT EXISTS booking_nights (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			booking_id BIGINT UNSIGNED NOT NULL,
			room_id BIGINT UNSIGNED NOT NULL,
			night DATE NOT NULL,
			is_active TINYINT(1) NULL DEFAULT 1,
			base_rate_cents BIGINT NOT NULL DEFAULT 0,
			extras_cents BIGINT NOT NULL DEFAULT 0,
			taxes_cents BIGINT NOT NULL DEFAULT 0,
			total_cents BIGINT NOT NULL DEFAULT 0,
			UNIQUE KEY uq_room_night_active (room_id, night, is_active),
			KEY idx_booking_nights_booking (booking_id)
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			booking_id BIGINT UNSIGNED NOT NULL,
			status ENUM('PENDING','PAID') NOT NULL DEFAULT 'PENDING',
			provider_ref VARCHAR(255) NOT NULL DEFAULT '',
			amount_cents BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_payments_booking (booking_id)
		)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
