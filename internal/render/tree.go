package render

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MikeBiancalana/tskctl/internal/scan"
	"github.com/MikeBiancalana/tskctl/internal/task"
)

// Node is one directory in the project tree.
type Node struct {
	Name      string
	Path      string
	IsProject bool
	Tasks     []task.Task
	Children  map[string]*Node
}

func newNode(name, path string) *Node {
	return &Node{Name: name, Path: path, Children: make(map[string]*Node)}
}

// BuildTree arranges projects under root into a directory tree. Projects
// outside root are ignored; intermediate directories become plain nodes.
func BuildTree(root string, projects []task.Project) *Node {
	root = canonical(root)
	tree := newNode(root, root)

	paths := make([]string, 0, len(projects))
	for _, p := range projects {
		paths = append(paths, canonical(p.RootDir))
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)

	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}

		cur := tree
		if rel != "." {
			curPath := root
			for _, part := range strings.Split(rel, string(filepath.Separator)) {
				curPath = filepath.Join(curPath, part)
				next, ok := cur.Children[part]
				if !ok {
					next = newNode(part, curPath)
					cur.Children[part] = next
				}
				cur = next
			}
		}
		cur.IsProject = true
	}
	return tree
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path
}

// AttachTasks parses the tasks of every project node, sorted for display.
// Tasks that fail to parse are left out.
func AttachTasks(n *Node) {
	if n.IsProject {
		p := task.Project{RootDir: n.Path, TasksDir: filepath.Join(n.Path, task.StoreDirName)}
		var tasks []task.Task
		for tf := range scan.TaskFiles(p) {
			t, err := task.Parse(tf.TaskDir, tf.TaskID)
			if err != nil {
				continue
			}
			tasks = append(tasks, *t)
		}
		n.Tasks = task.SortTasks(tasks)
	}
	for _, child := range n.Children {
		AttachTasks(child)
	}
}

// Tree writes the project tree. Within a directory its own tasks come
// before its subdirectories.
func Tree(w io.Writer, n *Node, opts Options) {
	st := newStyles(w, opts.Color)
	fmt.Fprintln(w, n.Path)
	if n.IsProject && len(n.Tasks) > 0 {
		writeProjectBlock(w, n, "", st, opts)
	}
	writeChildren(w, n, "", st, opts)
}

func writeChildren(w io.Writer, n *Node, prefix string, st styles, opts Options) {
	children := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, c)
	}
	slices.SortFunc(children, func(a, b *Node) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	for i, child := range children {
		last := i == len(children)-1
		branch, nextPrefix := "├── ", prefix+"│   "
		if last {
			branch, nextPrefix = "└── ", prefix+"    "
		}

		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, child.Name)
		if child.IsProject && len(child.Tasks) > 0 {
			writeProjectBlock(w, child, nextPrefix, st, opts)
		}
		writeChildren(w, child, nextPrefix, st, opts)
	}
}

const blockRule = "======"

func writeProjectBlock(w io.Writer, n *Node, prefix string, st styles, opts Options) {
	today := opts.today()

	fmt.Fprintf(w, "%s%s\n", prefix, blockRule)
	for _, t := range n.Tasks {
		fmt.Fprintf(w, "%s- %s (%s: %s, %dd) id: %s\n",
			prefix, t.Title, st.status(t.Status, string(t.Status)), FirstLine(t.NextAction), t.AgeDays(today), t.ID)
	}
	fmt.Fprintf(w, "%s%s\n", prefix, blockRule)
}

// FirstLine returns the first line of a next action, or an en dash when
// there is none.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "–"
	}
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
