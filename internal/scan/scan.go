// Package scan discovers task stores and the task case directories inside
// them. It does no parsing.
package scan

import (
	"iter"
	"os"
	"path/filepath"

	"github.com/MikeBiancalana/tskctl/internal/storage"
	"github.com/MikeBiancalana/tskctl/internal/task"
)

// TaskFile locates one task case directory inside a project store.
type TaskFile struct {
	Project task.Project
	TaskID  string
	TaskDir string
}

// Projects yields every directory in the subtree at root that directly
// contains a task store. Depth follows `tree -L`: root is depth 0 and the
// store directory itself never counts as a level. level < 0 yields nothing.
//
// Children are visited in lexical order. Directories that cannot be listed
// are skipped.
func Projects(root string, level int) iter.Seq[task.Project] {
	return func(yield func(task.Project) bool) {
		if level < 0 {
			return
		}
		walkProjects(filepath.Clean(root), 0, level, yield)
	}
}

func walkProjects(dir string, depth, level int, yield func(task.Project) bool) bool {
	store := filepath.Join(dir, task.StoreDirName)
	if storage.IsDir(store) {
		if !yield(task.Project{RootDir: dir, TasksDir: store}) {
			return false
		}
	}

	if depth >= level {
		return true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return true
	}
	for _, e := range entries {
		if e.Name() == task.StoreDirName {
			continue
		}
		child := filepath.Join(dir, e.Name())
		if !storage.IsDir(child) {
			continue
		}
		if !walkProjects(child, depth+1, level, yield) {
			return false
		}
	}
	return true
}

// TaskFiles yields the entries of p's store that are directories holding
// both task.yml and task.log as regular files. Deeper validity is left to
// task.Parse.
func TaskFiles(p task.Project) iter.Seq[TaskFile] {
	return func(yield func(TaskFile) bool) {
		entries, err := os.ReadDir(p.TasksDir)
		if err != nil {
			return
		}
		for _, e := range entries {
			dir := filepath.Join(p.TasksDir, e.Name())
			if !storage.IsDir(dir) {
				continue
			}
			if !storage.IsFile(filepath.Join(dir, task.MetadataFile)) ||
				!storage.IsFile(filepath.Join(dir, task.LogFile)) {
				continue
			}
			if !yield(TaskFile{Project: p, TaskID: e.Name(), TaskDir: dir}) {
				return
			}
		}
	}
}
