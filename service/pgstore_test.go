package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestSchemaDeclaresLiveJobIndex(t *testing.T) {
	// The one-live-contract-per-job invariant must hold under concurrent
	// creates, which the partial unique index enforces at commit time.
	if !strings.Contains(contractsSchema, "CREATE UNIQUE INDEX IF NOT EXISTS "+liveJobConflictIndex) {
		t.Fatal("Expected schema to declare the live contract unique index")
	}
	if !strings.Contains(contractsSchema, "WHERE status NOT IN ('completed','terminated','disputed')") {
		t.Error("Expected the unique index to exclude terminal statuses")
	}
}

func TestIsLiveJobConflict(t *testing.T) {
	conflict := &pgconn.PgError{Code: "23505", ConstraintName: liveJobConflictIndex}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation on live index", conflict, true},
		{"wrapped unique violation", fmt.Errorf("insert failed: %w", conflict), true},
		{"other unique index", &pgconn.PgError{Code: "23505", ConstraintName: "contracts_pkey"}, false},
		{"other sqlstate", &pgconn.PgError{Code: "40001", ConstraintName: liveJobConflictIndex}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isLiveJobConflict(tt.err); got != tt.want {
				t.Errorf("isLiveJobConflict(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
