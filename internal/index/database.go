// Package index keeps a disposable SQLite cache of parsed tasks for queries
// that would otherwise need a full scan. The task directories stay the source
// of truth; the cache can be deleted and rebuilt at any time.
package index

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
-- One row per valid task case directory
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT NOT NULL,
    project_root TEXT NOT NULL,
    task_dir TEXT NOT NULL,
    title TEXT NOT NULL,
    status TEXT NOT NULL,
    status_rank INTEGER NOT NULL,
    created TEXT NOT NULL,
    last_touch TEXT NOT NULL,
    next_action TEXT NOT NULL,
    PRIMARY KEY (project_root, id)
);

-- Task links, in task.yml order
CREATE TABLE IF NOT EXISTS task_links (
    project_root TEXT NOT NULL,
    task_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    kind TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (project_root, task_id, position),
    FOREIGN KEY (project_root, task_id) REFERENCES tasks(project_root, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status_rank);
CREATE INDEX IF NOT EXISTS idx_tasks_last_touch ON tasks(last_touch);
`

// Database wraps a SQL database connection
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection and initializes the schema
func NewDatabase(path string) (*Database, error) {
	// Open database with WAL mode for better concurrent access
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Enable foreign keys (required for CASCADE to work)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// DB returns the underlying database connection
func (d *Database) DB() *sql.DB {
	return d.db
}

// BeginTx starts a new transaction
func (d *Database) BeginTx() (*sql.Tx, error) {
	return d.db.Begin()
}
