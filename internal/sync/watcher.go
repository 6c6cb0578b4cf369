package sync

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MikeBiancalana/tskctl/internal/storage"
	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// ChangeEvent reports a task directory whose files changed. Task and Result
// are set when the task parsed; Err holds the parse failure otherwise.
// Removed is set when the directory no longer exists.
type ChangeEvent struct {
	TaskID  string
	TaskDir string
	Task    *task.Task
	Result  task.Result
	Err     error
	Removed bool
}

// Watcher watches one project's task store and re-validates tasks as their
// files change.
type Watcher struct {
	watcher    *fsnotify.Watcher
	project    task.Project
	checkLinks bool
	logger     *slog.Logger
	changes    chan ChangeEvent
	done       chan struct{}
	stopped    chan struct{}
	pending    map[string]bool // task dirs awaiting the debounce
	stopOnce   sync.Once
	started    bool
}

// NewWatcher creates a new watcher for project. Nothing is watched until Start.
func NewWatcher(project task.Project, checkLinks bool, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		watcher:    fsWatcher,
		project:    project,
		checkLinks: checkLinks,
		logger:     logger,
		changes:    make(chan ChangeEvent, 10),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		pending:    make(map[string]bool),
	}, nil
}

// Start begins watching the store and every task directory in it.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.project.TasksDir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	entries, err := os.ReadDir(w.project.TasksDir)
	if err != nil {
		return fmt.Errorf("failed to read task store: %w", err)
	}
	for _, e := range entries {
		dir := filepath.Join(w.project.TasksDir, e.Name())
		if !storage.IsDir(dir) {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("watch_add_failed", "dir", dir, "error", err)
		}
	}

	w.started = true
	go w.watch()
	return nil
}

// Stop stops the watcher and closes the Changes channel.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
		if w.started {
			<-w.stopped
		}
		close(w.changes)
	})
}

// Changes returns the channel for task change notifications
func (w *Watcher) Changes() <-chan ChangeEvent {
	return w.changes
}

// watch is the main event loop. Bursts of events are coalesced per task
// directory and processed once the store has been quiet for debounceDelay.
func (w *Watcher) watch() {
	defer close(w.stopped)

	debounce := time.NewTimer(debounceDelay)
	debounce.Stop()

	for {
		select {
		case <-w.done:
			debounce.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.handle(event) {
				debounce.Reset(debounceDelay)
			}

		case <-debounce.C:
			w.processPendingEvents()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher_error", "error", err)
		}
	}
}

// handle records the task directory touched by event and reports whether
// anything is now pending.
func (w *Watcher) handle(event fsnotify.Event) bool {
	name := filepath.Clean(event.Name)
	parent := filepath.Dir(name)

	switch {
	case parent == filepath.Clean(w.project.TasksDir):
		// A task directory itself was created, removed or renamed.
		if event.Has(fsnotify.Create) && storage.IsDir(name) {
			if err := w.watcher.Add(name); err != nil {
				w.logger.Warn("watch_add_failed", "dir", name, "error", err)
			}
		}
		if strings.HasPrefix(filepath.Base(name), ".") {
			return false
		}
		w.pending[name] = true
		return true

	case filepath.Dir(parent) == filepath.Clean(w.project.TasksDir):
		switch filepath.Base(name) {
		case task.MetadataFile, task.LogFile, task.SummaryFile:
			w.pending[parent] = true
			return true
		}
	}
	return false
}

// processPendingEvents parses and validates every pending task directory
func (w *Watcher) processPendingEvents() {
	dirs := make([]string, 0, len(w.pending))
	for dir := range w.pending {
		dirs = append(dirs, dir)
	}
	w.pending = make(map[string]bool)
	slices.Sort(dirs)

	for _, dir := range dirs {
		ev := w.evaluate(dir)
		select {
		case w.changes <- ev:
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) evaluate(dir string) ChangeEvent {
	id := filepath.Base(dir)
	ev := ChangeEvent{TaskID: id, TaskDir: dir}

	if !storage.IsDir(dir) {
		ev.Removed = true
		return ev
	}

	t, err := task.Parse(dir, id)
	if err != nil {
		ev.Err = err
		w.logger.Debug("task_parse_failed", "task_dir", dir, "error", err)
		return ev
	}
	ev.Task = t
	ev.Result = task.ValidateFile(t, dir, task.ValidateOptions{
		ExpectedID:  id,
		CheckLinks:  w.checkLinks,
		ProjectRoot: w.project.RootDir,
	})
	return ev
}
