package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"netinventory/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository persists staging records, the organization catalog, the asset
// registry and the status ledger in SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for a throwaway database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if dbPath != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; one connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS discoveries (
		ip_address TEXT PRIMARY KEY,
		is_alive INTEGER NOT NULL DEFAULT 0,
		protocol_available INTEGER NOT NULL DEFAULT 0,
		system_description TEXT,
		system_name TEXT,
		system_contact TEXT,
		system_object_id TEXT,
		system_location TEXT,
		discovered_at TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'processed', 'failed')),
		error_message TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS departments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE COLLATE NOCASE,
		description TEXT,
		is_sentinel INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS units (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		department_id INTEGER NOT NULL,
		keywords TEXT NOT NULL DEFAULT '',
		is_sentinel INTEGER NOT NULL DEFAULT 0,
		UNIQUE (department_id, name),
		FOREIGN KEY (department_id) REFERENCES departments(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS ip_ranges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cidr TEXT NOT NULL UNIQUE,
		department_id INTEGER NOT NULL,
		description TEXT,
		FOREIGN KEY (department_id) REFERENCES departments(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS devices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip_address TEXT NOT NULL UNIQUE,
		hostname TEXT NOT NULL,
		department_id INTEGER NOT NULL,
		unit_id INTEGER NOT NULL,
		user_name TEXT NOT NULL,
		auto_assigned INTEGER NOT NULL DEFAULT 0,
		last_seen TEXT,
		asset_number TEXT,
		is_alive INTEGER NOT NULL DEFAULT 0,
		protocol_available INTEGER NOT NULL DEFAULT 0,
		system_description TEXT,
		system_name TEXT,
		system_contact TEXT,
		system_object_id TEXT,
		system_location TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (department_id) REFERENCES departments(id),
		FOREIGN KEY (unit_id) REFERENCES units(id)
	);

	CREATE TABLE IF NOT EXISTS device_status_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device_id INTEGER NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('online', 'offline')),
		changed_at TEXT NOT NULL,
		FOREIGN KEY (device_id) REFERENCES devices(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_discoveries_status ON discoveries(status);
	CREATE INDEX IF NOT EXISTS idx_discoveries_discovered_at ON discoveries(discovered_at);
	CREATE INDEX IF NOT EXISTS idx_units_department ON units(department_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_units_sentinel ON units(department_id) WHERE is_sentinel = 1;
	CREATE INDEX IF NOT EXISTS idx_devices_department ON devices(department_id);
	CREATE INDEX IF NOT EXISTS idx_history_device ON device_status_history(device_id, changed_at);
	CREATE INDEX IF NOT EXISTS idx_history_changed_at ON device_status_history(changed_at);
	`

	if _, err := r.db.Exec(schema); err != nil {
		return err
	}

	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO departments (name, description, is_sentinel)
		VALUES (?, ?, 1)
	`, domain.UnknownDepartmentName, "Fallback for devices without a matching department")
	return err
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// timestamp returns the current time in storage format
func (r *Repository) timestamp() string {
	return formatTime(r.now())
}
