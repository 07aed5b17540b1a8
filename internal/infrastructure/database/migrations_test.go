package database

import (
	"context"
	"testing"
	"testing/fstest"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260101_000000_first.up.sql":    {Data: []byte("CREATE TABLE first (id INTEGER PRIMARY KEY);")},
		"20260101_000000_first.down.sql":  {Data: []byte("DROP TABLE first;")},
		"20260201_000000_second.up.sql":   {Data: []byte("CREATE TABLE second (id INTEGER PRIMARY KEY);")},
		"20260201_000000_second.down.sql": {Data: []byte("DROP TABLE second;")},
		"README.md":                       {Data: []byte("ignored")},
		"20260301.up.sql":                 {Data: []byte("ignored: no time part")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	return n == 1
}

// TestMigrate verifies migration application and idempotency.
func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := testMigrations()

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "first") || !tableExists(t, db, "second") {
		t.Fatal("migration tables not created")
	}

	// A second run finds nothing pending.
	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	applied, pending, err := db.MigrationStatus(ctx, fsys)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("applied %d, pending %d; want 2, 0", len(applied), len(pending))
	}
	if applied[0].AppliedAt.IsZero() {
		t.Error("AppliedAt not recorded")
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil || version != "20260201_000000" {
		t.Errorf("SchemaVersion() = %q, %v", version, err)
	}
}

// TestMigrateDown verifies rollback of the latest migration.
func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := testMigrations()

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatal(err)
	}
	if err := db.MigrateDown(ctx, fsys); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "second") || !tableExists(t, db, "first") {
		t.Error("MigrateDown() should drop only the latest table")
	}

	_, pending, err := db.MigrationStatus(ctx, fsys)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Name != "second" {
		t.Errorf("pending = %+v", pending)
	}
}

// TestMigrateFailure verifies a broken migration is rolled back and reported.
func TestMigrateFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"20260101_000000_ok.up.sql":     {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"20260102_000000_broken.up.sql": {Data: []byte("CREATE TABLE broken (;")},
	}

	if err := db.Migrate(ctx, fsys); err == nil {
		t.Fatal("Migrate() error = nil, want failure")
	}
	if !tableExists(t, db, "ok") {
		t.Error("earlier migration should stay committed")
	}
	version, err := db.SchemaVersion(ctx)
	if err != nil || version != "20260101_000000" {
		t.Errorf("SchemaVersion() = %q, %v", version, err)
	}
}

func TestMigrateNilFS(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(context.Background(), nil); err != nil {
		t.Errorf("Migrate(nil) error = %v", err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name    string
		version string
		isUp    bool
		ok      bool
	}{
		{"20261017_120000_audit_log.up.sql", "20261017_120000", true, true},
		{"20261017_120000_audit_log.down.sql", "20261017_120000", false, true},
		{"20261017_120000_audit_log.sql", "", false, false},
		{"20261017.up.sql", "", false, false},
		{"notes.txt", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.name)
			if version != tt.version || isUp != tt.isUp || ok != tt.ok {
				t.Errorf("got (%q, %v, %v), want (%q, %v, %v)", version, isUp, ok, tt.version, tt.isUp, tt.ok)
			}
		})
	}
	if got := migrationName("20261017_120000_audit_log.up.sql"); got != "audit_log" {
		t.Errorf("migrationName() = %q", got)
	}
}
