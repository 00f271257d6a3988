package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/schooltransit/dispatch/internal/application"
	"github.com/schooltransit/dispatch/internal/persistence/sqlite"
)

func TestSeedAdmin(t *testing.T) {
	pool, err := sqlite.Open(filepath.Join(t.TempDir(), "dispatch.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	ctx := context.Background()
	if err := pool.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	operators := sqlite.NewOperatorRepository(pool)

	logger = zerolog.Nop()
	adminEmail = "Admin@District.example"
	adminPassword = "super secret pw"
	adminName = "Dispatch Admin"

	if err := seedAdmin(ctx, operators); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stored, err := operators.GetOperatorByEmail(ctx, "admin@district.example")
	if err != nil {
		t.Fatalf("get seeded admin: %v", err)
	}
	if !stored.IsAdmin || stored.DisplayName != "Dispatch Admin" {
		t.Fatalf("operator = %+v", stored)
	}
	if err := application.VerifyPassword(stored.PasswordHash, adminPassword); err != nil {
		t.Fatalf("verify seeded password: %v", err)
	}

	if err := seedAdmin(ctx, operators); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	all, err := operators.ListOperators(ctx)
	if err != nil {
		t.Fatalf("list operators: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single operator, got %d", len(all))
	}
}

func TestRandomHex(t *testing.T) {
	first := randomHex(32)
	second := randomHex(32)

	if len(first) != 64 || len(second) != 64 {
		t.Fatalf("lengths = %d, %d", len(first), len(second))
	}
	if first == second {
		t.Fatal("expected distinct tokens")
	}
}
