package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func TestNewStorePropagatesOpenFailure(t *testing.T) {
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		if driverName != "pgx" {
			t.Fatalf("expected pgx driver, got %s", driverName)
		}
		if dsn != defaultDSN {
			t.Fatalf("expected default DSN, got %s", dsn)
		}
		return nil, errors.New("refused")
	})
	defer restore()

	_, err := NewStore("", nil)
	if err == nil {
		t.Fatalf("expected open failure")
	}
	if !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestOverrideSQLOpenRestores(t *testing.T) {
	marker := errors.New("marker")
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, marker })
	if _, err := NewStore("", nil); !errors.Is(err, marker) {
		t.Fatalf("override not active: %v", err)
	}
	restore()
	// After restore the real sql.Open runs again; an invalid DSN for the pgx
	// driver fails at open or ping rather than returning the marker.
	if _, err := NewStore("postgres://invalid:1/nope?sslmode=disable", nil); errors.Is(err, marker) {
		t.Fatalf("override leaked past restore")
	}
}
