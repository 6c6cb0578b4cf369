package index

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeBiancalana/tskctl/internal/scan"
	"github.com/MikeBiancalana/tskctl/internal/task"
)

// Entry is one indexed task. Task carries the metadata columns only; log
// lines and summary are not cached.
type Entry struct {
	ProjectRoot string
	TaskDir     string
	Task        task.Task
}

// RebuildStats summarizes a Rebuild.
type RebuildStats struct {
	Projects int
	Indexed  int
	Skipped  int
}

// Repository handles task index operations
type Repository struct {
	db     *Database
	logger *slog.Logger
}

// NewRepository creates a new index repository
func NewRepository(db *Database, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// Rebuild clears the index and refills it from every project found under
// root. Each project is written in its own transaction. Tasks that fail to
// parse are skipped and counted.
func (r *Repository) Rebuild(root string, level int) (RebuildStats, error) {
	var stats RebuildStats

	for _, table := range []string{"task_links", "tasks"} {
		if _, err := r.db.DB().Exec("DELETE FROM " + table); err != nil {
			return stats, fmt.Errorf("failed to clear index: %w", err)
		}
	}

	for p := range scan.Projects(root, level) {
		stats.Projects++
		indexed, skipped, err := r.indexProject(p)
		if err != nil {
			return stats, err
		}
		stats.Indexed += indexed
		stats.Skipped += skipped
	}

	r.logger.Info("index_rebuilt", "root", root, "projects", stats.Projects, "indexed", stats.Indexed, "skipped", stats.Skipped)
	return stats, nil
}

func (r *Repository) indexProject(p task.Project) (indexed, skipped int, err error) {
	tx, err := r.db.BeginTx()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for tf := range scan.TaskFiles(p) {
		t, err := task.Parse(tf.TaskDir, tf.TaskID)
		if err != nil {
			r.logger.Debug("index_skip", "task_dir", tf.TaskDir, "error", err)
			skipped++
			continue
		}
		if err := saveTask(tx, p.RootDir, tf.TaskDir, t); err != nil {
			return 0, 0, err
		}
		indexed++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit index: %w", err)
	}
	return indexed, skipped, nil
}

// Save inserts or replaces a single task.
func (r *Repository) Save(projectRoot, taskDir string, t *task.Task) error {
	tx, err := r.db.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveTask(tx, projectRoot, taskDir, t); err != nil {
		return err
	}
	return tx.Commit()
}

func saveTask(tx *sql.Tx, projectRoot, taskDir string, t *task.Task) error {
	_, err := tx.Exec(`
		INSERT OR REPLACE INTO tasks (id, project_root, task_dir, title, status, status_rank, created, last_touch, next_action)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, projectRoot, taskDir, t.Title, string(t.Status), t.Status.Rank(),
		task.FormatDate(t.Created), task.FormatDate(t.LastTouch), t.NextAction)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	_, err = tx.Exec("DELETE FROM task_links WHERE project_root = ? AND task_id = ?", projectRoot, t.ID)
	if err != nil {
		return fmt.Errorf("failed to delete old links: %w", err)
	}

	for i, l := range t.Links {
		_, err = tx.Exec(`
			INSERT INTO task_links (project_root, task_id, position, kind, value)
			VALUES (?, ?, ?, ?, ?)
		`, projectRoot, t.ID, i, l.Kind, l.Value)
		if err != nil {
			return fmt.Errorf("failed to save link: %w", err)
		}
	}
	return nil
}

// Stale returns open tasks untouched for at least days, most urgent first.
func (r *Repository) Stale(today time.Time, days int) ([]Entry, error) {
	cutoff := task.FormatDate(task.Date(today).AddDate(0, 0, -days))
	return r.query(`
		SELECT id, project_root, task_dir, title, status, created, last_touch, next_action
		FROM tasks
		WHERE status != ? AND last_touch <= ?
		ORDER BY status_rank, last_touch, id
	`, string(task.StatusDone), cutoff)
}

// List returns every indexed task of projectRoot, or of all projects when
// projectRoot is empty.
func (r *Repository) List(projectRoot string) ([]Entry, error) {
	query := `SELECT id, project_root, task_dir, title, status, created, last_touch, next_action
		FROM tasks WHERE 1=1`
	args := make([]interface{}, 0)
	if projectRoot != "" {
		query += " AND project_root = ?"
		args = append(args, projectRoot)
	}
	query += " ORDER BY status_rank, last_touch, id"
	return r.query(query, args...)
}

// Links returns the links of one indexed task in task.yml order.
func (r *Repository) Links(projectRoot, taskID string) ([]task.Link, error) {
	rows, err := r.db.DB().Query(`
		SELECT kind, value FROM task_links
		WHERE project_root = ? AND task_id = ?
		ORDER BY position
	`, projectRoot, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}
	defer rows.Close()

	links := make([]task.Link, 0)
	for rows.Next() {
		var l task.Link
		if err := rows.Scan(&l.Kind, &l.Value); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *Repository) query(query string, args ...interface{}) ([]Entry, error) {
	rows, err := r.db.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e                  Entry
			status             string
			created, lastTouch string
		)
		if err := rows.Scan(&e.Task.ID, &e.ProjectRoot, &e.TaskDir, &e.Task.Title, &status, &created, &lastTouch, &e.Task.NextAction); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		e.Task.Status = task.Status(status)
		if e.Task.Created, err = task.ParseDate(created); err != nil {
			return nil, fmt.Errorf("bad created date for %s: %w", e.Task.ID, err)
		}
		if e.Task.LastTouch, err = task.ParseDate(lastTouch); err != nil {
			return nil, fmt.Errorf("bad last_touch date for %s: %w", e.Task.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
