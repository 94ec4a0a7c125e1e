// Package testutil provides helpers for integration tests that need a
// real MySQL instance.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/database"
)

// OpenTestDB connects to the MySQL instance described by the TEST_DB_*
// environment variables and applies the schema. When the database is
// unreachable the calling test is skipped, so the default test run
// needs no infrastructure.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()
	user := envOr("TEST_DB_USER", "root")
	pass := os.Getenv("TEST_DB_PASS")
	host := envOr("TEST_DB_HOST", "127.0.0.1")
	port := envOr("TEST_DB_PORT", "3306")
	name := envOr("TEST_DB_NAME", "reservations_test")

	db, err := database.Open(user, pass, host, port, name)
	if err != nil {
		t.Skipf("mysql not reachable at %s:%s: %v", host, port, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ResetReservations empties the reservations table so each test starts
// from a clean slate.
func ResetReservations(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec("DELETE FROM reservations"); err != nil {
		t.Fatalf("reset reservations: %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
