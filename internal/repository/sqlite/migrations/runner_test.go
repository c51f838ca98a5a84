package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/msomdec/meta-pet-registry/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrations(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first migration run: %v", err)
	}

	_, err := db.ExecContext(ctx,
		"INSERT INTO registrations (pet_id, created_at_utc, owner_email, pet_name) VALUES (?, ?, ?, ?)",
		"abcDEF123456", "2024-01-02T03:04:05+00:00", "a@b.com", "Milo",
	)
	if err != nil {
		t.Fatalf("insert into registrations: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count == 0 {
		t.Fatal("expected at least one migration recorded in schema_migrations")
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second run (idempotent): %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 migration record, got %d", count)
	}
}

func TestRegistrationsAreAppendOnly(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO registrations (pet_id, created_at_utc, owner_email, pet_name) VALUES (?, ?, ?, ?)",
		"abcDEF123456", "2024-01-02T03:04:05+00:00", "a@b.com", "Milo",
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := db.ExecContext(ctx, "UPDATE registrations SET pet_name = 'Otis'"); err == nil {
		t.Fatal("expected update to be rejected")
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM registrations"); err == nil {
		t.Fatal("expected delete to be rejected")
	}
}
