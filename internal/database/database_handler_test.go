package database

import (
	"testing"

	"gorm.io/driver/sqlite"
)

func TestSetupDBMigratesAllowedHosts(t *testing.T) {
	db, err := SetupDB(WithDialector(sqlite.Open("file:setup_migrate?mode=memory&cache=shared")))
	if err != nil {
		t.Fatalf("SetupDB: %v", err)
	}
	defer Close(db)

	if !db.Migrator().HasTable("allowed_hosts") {
		t.Fatal("allowed_hosts table was not created")
	}
	if !db.Migrator().HasColumn("allowed_hosts", "hostname") {
		t.Fatal("allowed_hosts.hostname column was not created")
	}
}

func TestSetupDBWithExistingDB(t *testing.T) {
	first, err := SetupDB(
		WithDialector(sqlite.Open("file:setup_existing?mode=memory&cache=shared")),
		WithAutoMigrate(false),
	)
	if err != nil {
		t.Fatalf("SetupDB: %v", err)
	}
	defer Close(first)

	second, err := SetupDB(WithExistingDB(first))
	if err != nil {
		t.Fatalf("SetupDB with existing db: %v", err)
	}
	if second != first {
		t.Fatal("SetupDB should reuse the provided connection")
	}
	if !second.Migrator().HasTable("allowed_hosts") {
		t.Fatal("existing connection was not migrated")
	}
}

func TestSetupDBRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := SetupDB(); err == nil {
		t.Fatal("expected error for unsupported driver, got nil")
	}
}

func TestDialectorFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	d, err := dialectorFromEnv()
	if err != nil {
		t.Fatalf("dialectorFromEnv: %v", err)
	}
	if d.Name() != "postgres" {
		t.Fatalf("dialector name = %q, want postgres", d.Name())
	}

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", ":memory:")
	d, err = dialectorFromEnv()
	if err != nil {
		t.Fatalf("dialectorFromEnv: %v", err)
	}
	if d.Name() != "sqlite" {
		t.Fatalf("dialector name = %q, want sqlite", d.Name())
	}
}

func TestBuildPostgresDSN(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "hosts")
	t.Setenv("DB_USERNAME", "reader")
	t.Setenv("DB_PASSWORD", "secret")

	want := "host=db.internal port=6543 user=reader password=secret dbname=hosts sslmode=disable"
	if got := buildPostgresDSN(); got != want {
		t.Fatalf("buildPostgresDSN = %q, want %q", got, want)
	}
}
