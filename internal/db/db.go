package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/rumors/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// FileName is the database file created under the base directory.
const FileName = "rumors.db"

// Init initializes the SQLite database at baseDir/rumors.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.rumors.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the connection string apply to every pooled connection
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: theories and analytics
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS conspiracy_theories (
		  id             TEXT PRIMARY KEY,
		  content        TEXT NOT NULL CHECK (length(trim(content)) > 0),
		  category       TEXT NOT NULL,
		  classification TEXT NOT NULL DEFAULT 'TOP SECRET'
		                 CHECK (classification IN ('TOP SECRET', 'SECRET', 'CONFIDENTIAL')),
		  created_at     INTEGER NOT NULL,
		  updated_at     INTEGER NOT NULL,
		  prompt_used    TEXT,
		  is_favorite    INTEGER NOT NULL DEFAULT 0,
		  share_count    INTEGER NOT NULL DEFAULT 0 CHECK (share_count >= 0)
		);

		CREATE INDEX IF NOT EXISTS idx_theories_created
		ON conspiracy_theories(created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_theories_category_created
		ON conspiracy_theories(category, created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_theories_popular
		ON conspiracy_theories(share_count DESC, created_at DESC);

		CREATE TABLE IF NOT EXISTS theory_analytics (
		  id         TEXT PRIMARY KEY,
		  theory_id  TEXT NOT NULL,
		  event_type TEXT NOT NULL
		             CHECK (event_type IN ('generated', 'viewed', 'shared', 'copied', 'saved')),
		  platform   TEXT,
		  created_at INTEGER NOT NULL,
		  metadata   TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_analytics_theory_created
		ON theory_analytics(theory_id, created_at DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
