package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements holds the DDL applied at startup. Every statement is
// idempotent, so running them on every boot is safe.
//
// The active_reserved_at generated column mirrors reserved_at while the
// reservation is in an active status and is NULL otherwise. The unique
// key on it enforces "one active reservation per instant" inside the
// database, because MySQL unique keys ignore NULLs. Application-level
// duplicate checks are advisory; this key is the guard that holds under
// concurrent creates.
//
// created_at and updated_at carry no database defaults. The service
// assigns both from its clock, at microsecond precision, so an update
// in the same second as the insert still moves updated_at forward.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
	    id                 BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	    reservation_number VARCHAR(16)     NOT NULL,
	    customer_name      VARCHAR(100)    NOT NULL,
	    customer_phone     VARCHAR(30)     NOT NULL DEFAULT 'UNKNOWN',
	    customer_email     VARCHAR(255)    NULL,
	    reserved_at        DATETIME        NOT NULL,
	    party_size         INT             NOT NULL,
	    status             VARCHAR(20)     NOT NULL,
	    cancel_reason      VARCHAR(255)    NULL,
	    created_at         DATETIME(6)     NOT NULL,
	    updated_at         DATETIME(6)     NOT NULL,
	    version            BIGINT UNSIGNED NOT NULL DEFAULT 1,
	    active_reserved_at DATETIME GENERATED ALWAYS AS
	        (CASE WHEN status IN ('REQUESTED','CONFIRMED') THEN reserved_at ELSE NULL END) STORED,
	    PRIMARY KEY (id),
	    UNIQUE KEY uniq_reservation_number (reservation_number),
	    UNIQUE KEY uniq_active_reserved_at (active_reserved_at),
	    KEY idx_status_reserved_at (status, reserved_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema applies the reservation schema, creating anything that
// does not exist yet. Call it once at startup before serving traffic.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
