package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the tables in dependency order. Statements use
// IF NOT EXISTS so startup is idempotent against an existing database.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username      VARCHAR(64)  NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'User',
		full_name     VARCHAR(128) NOT NULL DEFAULT '',
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS parking_lots (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name           VARCHAR(128) NOT NULL,
		address        VARCHAR(255) NOT NULL DEFAULT '',
		pincode        VARCHAR(16)  NOT NULL DEFAULT '',
		price_per_hour DOUBLE       NOT NULL,
		max_spots      INT          NOT NULL,
		created_at     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS parking_spots (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		lot_id      BIGINT UNSIGNED NOT NULL,
		spot_number INT     NOT NULL,
		is_occupied TINYINT NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		UNIQUE KEY uq_spot_lot_number (lot_id, spot_number),
		CONSTRAINT fk_spots_lot FOREIGN KEY (lot_id) REFERENCES parking_lots (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		spot_id        BIGINT UNSIGNED NOT NULL,
		customer_id    BIGINT UNSIGNED NULL,
		vehicle_number VARCHAR(32) NOT NULL,
		start_time     DATETIME    NOT NULL,
		end_time       DATETIME    NULL,
		status         VARCHAR(16) NOT NULL DEFAULT 'Active',
		PRIMARY KEY (id),
		KEY idx_bookings_customer (customer_id),
		KEY idx_bookings_spot_status (spot_id, status),
		CONSTRAINT fk_bookings_spot FOREIGN KEY (spot_id) REFERENCES parking_spots (id),
		CONSTRAINT fk_bookings_customer FOREIGN KEY (customer_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS billings (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		booking_id   BIGINT UNSIGNED NOT NULL,
		final_cost   DOUBLE      NULL,
		billing_time DATETIME    NULL,
		status       VARCHAR(16) NOT NULL DEFAULT 'Reserved',
		PRIMARY KEY (id),
		UNIQUE KEY uq_billings_booking (booking_id),
		CONSTRAINT fk_billings_booking FOREIGN KEY (booking_id) REFERENCES bookings (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
