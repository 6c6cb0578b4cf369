package task

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// On-disk layout of a task case directory.
const (
	StoreDirName = ".tasks"
	MetadataFile = "task.yml"
	LogFile      = "task.log"
	SummaryFile  = "summary.md"
)

// DefaultFormatVersion is written to every task.yml and assumed when the key
// is absent.
const DefaultFormatVersion = 2

var requiredFiles = []string{MetadataFile, LogFile}

// Parse reads a task case directory into a validated Task.
// If expectedID is non-empty the id in task.yml must match it.
// Every failure is a *ParseError.
func Parse(taskDir, expectedID string) (*Task, error) {
	info, err := os.Stat(taskDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &ParseError{Path: taskDir, Message: "task directory does not exist", Err: err}
	}
	if err != nil {
		return nil, &ParseError{Path: taskDir, Message: fmt.Sprintf("cannot stat task directory: %v", err), Err: err}
	}
	if !info.IsDir() {
		return nil, &ParseError{Path: taskDir, Message: "task path is not a directory"}
	}

	if err := requireFiles(taskDir); err != nil {
		return nil, err
	}

	metaPath := filepath.Join(taskDir, MetadataFile)
	meta, err := readMetadata(metaPath)
	if err != nil {
		return nil, err
	}

	logLines, err := readLog(filepath.Join(taskDir, LogFile))
	if err != nil {
		return nil, err
	}

	summary, err := readOptionalText(filepath.Join(taskDir, SummaryFile))
	if err != nil {
		return nil, err
	}

	id, err := meta.requireString("id", false)
	if err != nil {
		return nil, err
	}
	if expectedID != "" && id != expectedID {
		return nil, meta.fail("YAML id '%s' does not match expected id '%s'", id, expectedID)
	}

	title, err := meta.requireString("title", false)
	if err != nil {
		return nil, err
	}

	rawStatus, err := meta.requireString("status", false)
	if err != nil {
		return nil, err
	}
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, meta.fail("invalid status '%s' (allowed: %s)", rawStatus, allowedStatuses())
	}

	created, err := meta.requireDate("created")
	if err != nil {
		return nil, err
	}
	lastTouch, err := meta.requireDate("last_touch")
	if err != nil {
		return nil, err
	}

	nextAction, err := meta.requireString("next_action", true)
	if err != nil {
		return nil, err
	}

	links, err := meta.links()
	if err != nil {
		return nil, err
	}

	t := &Task{
		ID:            id,
		Title:         title,
		Status:        status,
		Created:       created,
		LastTouch:     lastTouch,
		NextAction:    nextAction,
		Summary:       strings.TrimSpace(summary),
		LogLines:      logLines,
		Links:         links,
		FormatVersion: meta.optionalInt("format", DefaultFormatVersion),
	}

	if err := t.Validate(); err != nil {
		return nil, &ParseError{Path: metaPath, Message: err.Error(), Err: err}
	}
	return t, nil
}

func requireFiles(taskDir string) error {
	var missing []string
	for _, name := range requiredFiles {
		info, err := os.Stat(filepath.Join(taskDir, name))
		if err != nil || !info.Mode().IsRegular() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ParseError{
			Path:    taskDir,
			Message: "missing required file(s): " + strings.Join(missing, ", "),
		}
	}
	return nil
}

// metadata is the top-level mapping of task.yml, keyed by scalar key.
type metadata struct {
	path   string
	fields map[string]*yaml.Node
}

func readMetadata(path string) (*metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("cannot read file: %v", err), Err: err}
	}

	m := &metadata{path: path, fields: make(map[string]*yaml.Node)}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		// An empty file behaves like an empty mapping.
		if errors.Is(err, io.EOF) {
			return m, nil
		}
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("invalid YAML: %v", err), Err: err}
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, &ParseError{Path: path, Message: fmt.Sprintf("invalid YAML: %v", err), Err: err}
		}
		return nil, m.fail("invalid YAML: expected a single document in the stream")
	}

	if len(doc.Content) == 0 {
		return m, nil
	}
	root := deref(doc.Content[0])
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return m, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, m.fail("YAML root must be a mapping/dictionary")
	}

	if err := m.collect(root, true); err != nil {
		return nil, err
	}
	return m, nil
}

// collect adds the pairs of mapping to fields. Merge keys (<<) are expanded;
// explicit keys win over merged ones and, within a merge sequence, earlier
// mappings win over later ones.
func (m *metadata) collect(mapping *yaml.Node, override bool) error {
	var merges []*yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], deref(mapping.Content[i+1])
		if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
			merges = append(merges, value)
			continue
		}
		if _, seen := m.fields[key.Value]; override || !seen {
			m.fields[key.Value] = value
		}
	}

	for _, value := range merges {
		sources := []*yaml.Node{value}
		if value.Kind == yaml.SequenceNode {
			sources = sources[:0]
			for _, item := range value.Content {
				sources = append(sources, deref(item))
			}
		}
		for _, src := range sources {
			if src.Kind != yaml.MappingNode {
				return m.fail("invalid YAML: merge key value must be a mapping or a sequence of mappings")
			}
			if err := m.collect(src, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func (m *metadata) fail(format string, args ...any) *ParseError {
	return &ParseError{Path: m.path, Message: fmt.Sprintf(format, args...)}
}

func isString(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func (m *metadata) requireString(key string, allowEmpty bool) (string, error) {
	n, ok := m.fields[key]
	if !ok {
		return "", m.fail("missing required YAML key: %s", key)
	}
	if !isString(n) {
		return "", m.fail("YAML key '%s' must be a string", key)
	}
	if !allowEmpty && strings.TrimSpace(n.Value) == "" {
		return "", m.fail("YAML key '%s' must be a non-empty string", key)
	}
	return n.Value, nil
}

// requireDate accepts quoted ISO date strings as well as unquoted YAML
// timestamps, which are truncated to their calendar date.
func (m *metadata) requireDate(key string) (time.Time, error) {
	n, ok := m.fields[key]
	if !ok {
		return time.Time{}, m.fail("missing required YAML key: %s", key)
	}
	if n.Kind == yaml.ScalarNode {
		switch n.ShortTag() {
		case "!!timestamp":
			var ts time.Time
			if err := n.Decode(&ts); err == nil {
				return Date(ts), nil
			}
			return time.Time{}, m.fail("invalid ISO date for '%s': '%s'", key, n.Value)
		case "!!str":
			d, err := ParseDate(n.Value)
			if err != nil {
				return time.Time{}, m.fail("invalid ISO date for '%s': '%s'", key, n.Value)
			}
			return d, nil
		}
	}
	return time.Time{}, m.fail("YAML key '%s' must be an ISO date string", key)
}

func (m *metadata) optionalInt(key string, def int) int {
	n, ok := m.fields[key]
	if !ok || n.Kind != yaml.ScalarNode || n.ShortTag() != "!!int" {
		return def
	}
	var v int
	if err := n.Decode(&v); err != nil {
		return def
	}
	return v
}

func (m *metadata) links() ([]Link, error) {
	n, ok := m.fields["links"]
	if !ok || isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, m.fail("YAML key 'links' must be a list")
	}

	var out []Link
	for i, item := range n.Content {
		idx := i + 1
		item = deref(item)
		switch {
		case isString(item):
			if link, ok := splitLink(item.Value); ok {
				out = append(out, link)
			}
		case item.Kind == yaml.MappingNode:
			var kind, value *yaml.Node
			for j := 0; j+1 < len(item.Content); j += 2 {
				switch item.Content[j].Value {
				case "kind":
					kind = deref(item.Content[j+1])
				case "value":
					value = deref(item.Content[j+1])
				}
			}
			if !isString(kind) || !isString(value) {
				return nil, m.fail("links[%d] must have string 'kind' and 'value'", idx)
			}
			out = append(out, Link{
				Kind:  strings.ToLower(strings.TrimSpace(kind.Value)),
				Value: strings.TrimSpace(value.Value),
			})
		default:
			return nil, m.fail("links[%d] must be a mapping {kind, value} or a string", idx)
		}
	}
	return out, nil
}

// splitLink parses the "kind: value" shorthand. A string whose first word
// has no colon is a bare file path. Blank input yields ok == false.
func splitLink(raw string) (link Link, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Link{}, false
	}
	if strings.Contains(strings.Fields(s)[0], ":") {
		kind, value, _ := strings.Cut(s, ":")
		return Link{
			Kind:  strings.ToLower(strings.TrimSpace(kind)),
			Value: strings.TrimSpace(value),
		}, true
	}
	return Link{Kind: "file", Value: s}, true
}

func readLog(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("cannot read file: %v", err), Err: err}
	}

	var lines []string
	for _, raw := range splitLines(string(data)) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		lines = append(lines, strings.TrimRightFunc(raw, unicode.IsSpace))
	}
	if len(lines) == 0 {
		return nil, &ParseError{Path: path, Message: "log file is empty (at least one entry is required)"}
	}
	return lines, nil
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

func readOptionalText(path string) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", &ParseError{Path: path, Message: fmt.Sprintf("cannot stat file: %v", err), Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", &ParseError{Path: path, Message: SummaryFile + " exists but is not a file"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ParseError{Path: path, Message: fmt.Sprintf("cannot read file: %v", err), Err: err}
	}
	return string(data), nil
}
