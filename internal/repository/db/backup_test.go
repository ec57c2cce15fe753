package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func TestBackup_RejectsNonSQLite(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer mockDB.Close()

	err = Backup(context.Background(), sqlx.NewDb(mockDB, DriverPostgres), filepath.Join(t.TempDir(), "b.db"))
	if !errors.Is(err, ErrBackupUnsupported) {
		t.Fatalf("expected ErrBackupUnsupported, got %v", err)
	}
}

func TestBackup_RunsVacuumInto(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer mockDB.Close()

	target := filepath.Join(t.TempDir(), "backup.db")
	mock.ExpectExec(regexp.QuoteMeta("VACUUM INTO ?")).
		WithArgs(target).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Backup(context.Background(), sqlx.NewDb(mockDB, DriverSQLite), target); err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBackup_RefusesExistingTarget(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer mockDB.Close()

	target := filepath.Join(t.TempDir(), "exists.db")
	if err := os.WriteFile(target, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Backup(context.Background(), sqlx.NewDb(mockDB, DriverSQLite), target); err == nil {
		t.Fatalf("expected error for existing target")
	}
}

func TestRestore_ReplacesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	backup := filepath.Join(dir, "backup.db")
	live := filepath.Join(dir, "live.db")
	if err := os.WriteFile(backup, []byte("backup-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(live, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(live+"-wal", []byte("wal"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := Restore(backup, live); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, err := os.ReadFile(live)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "backup-bytes" {
		t.Fatalf("restored content = %q", got)
	}
	if _, err := os.Stat(live + "-wal"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stale wal file should be removed, stat err = %v", err)
	}
}

func TestRestore_MissingBackup(t *testing.T) {
	dir := t.TempDir()
	if err := Restore(filepath.Join(dir, "nope.db"), filepath.Join(dir, "live.db")); err == nil {
		t.Fatalf("expected error for missing backup")
	}
}

func TestSchemas_HaveAllTables(t *testing.T) {
	for name, stmts := range map[string][]string{"sqlite": sqliteSchema, "postgres": postgresSchema} {
		joined := ""
		for _, s := range stmts {
			joined += s + "\n"
		}
		for _, table := range []string{"weather_data", "solar_data", "users"} {
			if !regexp.MustCompile(`CREATE TABLE IF NOT EXISTS ` + table + ` `).MatchString(joined) {
				t.Errorf("%s schema missing table %s", name, table)
			}
		}
	}
}
