package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
)

// ErrBackupUnsupported is returned for drivers without file backups.
var ErrBackupUnsupported = errors.New("backup is only supported for sqlite")

// Backup writes a consistent copy of an sqlite database to path.
// The target must not exist.
func Backup(ctx context.Context, db *sqlx.DB, path string) error {
	if db.DriverName() != DriverSQLite {
		return ErrBackupUnsupported
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("backup target %q already exists", path)
	}
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("vacuum into %q: %w", path, err)
	}
	return nil
}

// Restore replaces the sqlite database at dbPath with the backup file.
// It must run before the database is opened.
func Restore(backupPath, dbPath string) error {
	src, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("open backup %q: %w", backupPath, err)
	}
	defer src.Close()

	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %q: %w", dbPath+suffix, err)
		}
	}

	dst, err := os.OpenFile(dbPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create %q: %w", dbPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("copy backup: %w", err)
	}
	return dst.Close()
}

// TableCounts reports the row count of every application table.
func TableCounts(ctx context.Context, db *sqlx.DB) (map[string]int64, error) {
	out := make(map[string]int64, 3)
	for _, table := range []string{"weather_data", "solar_data", "users"} {
		var n int64
		if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out[table] = n
	}
	return out, nil
}
