// Package db owns schema bootstrap for local/dev deployments. Production
// runs migrations out of band; EnsureSchema is a no-op when tables exist.
package db

import "database/sql"

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS routes (
		id CHAR(36) PRIMARY KEY,
		origin VARCHAR(255) NOT NULL,
		destination VARCHAR(255) NOT NULL,
		distance_km DOUBLE NOT NULL DEFAULT 0,
		duration_hours DOUBLE NOT NULL DEFAULT 0,
		price BIGINT NOT NULL DEFAULT 0,
		active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS route_stops (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		route_id CHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		offset_hours DOUBLE NOT NULL DEFAULT 0,
		position INT NOT NULL DEFAULT 0,
		KEY idx_route (route_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS trips (
		id CHAR(36) PRIMARY KEY,
		route_id CHAR(36) NOT NULL,
		departure DATETIME NOT NULL,
		vehicle_type VARCHAR(50) NOT NULL DEFAULT 'seater',
		seat_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_route_departure (route_id, departure)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	// uniq_trip_seat is the seat-uniqueness arbiter: a row exists exactly
	// while a non-cancelled booking claims the seat.
	`CREATE TABLE IF NOT EXISTS trip_seats (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		trip_id CHAR(36) NOT NULL,
		seat_code VARCHAR(10) NOT NULL,
		booking_id CHAR(6) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_trip_seat (trip_id, seat_code),
		KEY idx_booking (booking_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id CHAR(6) PRIMARY KEY,
		trip_id CHAR(36) NOT NULL,
		customer_name VARCHAR(255) NOT NULL,
		customer_phone VARCHAR(20) NOT NULL,
		customer_email VARCHAR(255) NOT NULL DEFAULT '',
		pickup_point VARCHAR(255) NOT NULL DEFAULT '',
		dropoff_point VARCHAR(255) NOT NULL DEFAULT '',
		seat_count INT NOT NULL DEFAULT 0,
		amount BIGINT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_phone (customer_phone),
		KEY idx_trip (trip_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS payments (
		id CHAR(36) PRIMARY KEY,
		booking_id CHAR(6) NOT NULL,
		amount BIGINT NOT NULL DEFAULT 0,
		gateway_txn_no VARCHAR(50) NOT NULL DEFAULT '',
		response_code VARCHAR(10) NOT NULL DEFAULT '',
		bank_code VARCHAR(20) NOT NULL DEFAULT '',
		locale VARCHAR(10) NOT NULL DEFAULT '',
		client_ip VARCHAR(45) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		completed_at DATETIME NULL,
		KEY idx_booking (booking_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		username VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(20) NOT NULL DEFAULT '',
		password_hash VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_email (email),
		UNIQUE KEY uniq_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		plate VARCHAR(20) NOT NULL,
		type VARCHAR(50) NOT NULL DEFAULT 'seater',
		seat_count INT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		UNIQUE KEY uniq_plate (plate)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
}

// EnsureSchema creates missing tables.
func EnsureSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}
