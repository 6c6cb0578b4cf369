package task

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// IssueCode is a stable identifier for a validation rule.
type IssueCode string

const (
	IssueIDMismatch             IssueCode = "id_mismatch"
	IssueModelInvariant         IssueCode = "model_invariant"
	IssueLogEmpty               IssueCode = "log_empty"
	IssueLogBadFormat           IssueCode = "log_bad_format"
	IssueDoneNoMarker           IssueCode = "done_no_marker"
	IssueLinkKindInvalid        IssueCode = "link_kind_invalid"
	IssueLinkValueEmpty         IssueCode = "link_value_empty"
	IssueLinksNeedProjectRoot   IssueCode = "links_need_project_root"
	IssueLinkFileOutsideProject IssueCode = "link_file_outside_project"
	IssueLinkFileMissing        IssueCode = "link_file_missing"
)

// Issue is a single convention violation.
// Index is the 1-based log line or link number when the rule has one.
type Issue struct {
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
	Index   int       `json:"index,omitempty"`
}

// Result collects the issues found for one task directory.
type Result struct {
	Path   string  `json:"path"`
	Issues []Issue `json:"issues"`
}

// OK reports whether no issues were found.
func (r Result) OK() bool {
	return len(r.Issues) == 0
}

// Has reports whether any issue carries the given code.
func (r Result) Has(code IssueCode) bool {
	return slices.ContainsFunc(r.Issues, func(i Issue) bool { return i.Code == code })
}

// ValidateOptions tunes ValidateFile. Empty strings mean "not supplied".
type ValidateOptions struct {
	ExpectedID  string
	CheckLinks  bool
	ProjectRoot string
}

var logLineRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}:\s+\[[a-z_]+\](?:\s+.+)?$`)

var linkKinds = []string{"file", "url", "note"}

// ValidateFile checks a parsed task against the store conventions. Every
// rule runs; violations are collected, never returned as errors.
func ValidateFile(t *Task, taskDir string, opts ValidateOptions) Result {
	if t == nil {
		panic("task: ValidateFile called with nil task")
	}

	var issues []Issue
	add := func(code IssueCode, index int, format string, args ...any) {
		issues = append(issues, Issue{Code: code, Message: fmt.Sprintf(format, args...), Index: index})
	}

	if opts.ExpectedID != "" && t.ID != opts.ExpectedID {
		add(IssueIDMismatch, 0, "Task id '%s' does not match expected id '%s'", t.ID, opts.ExpectedID)
	}

	if err := t.Validate(); err != nil {
		add(IssueModelInvariant, 0, "%s", err.Error())
	}

	if len(t.LogLines) == 0 {
		add(IssueLogEmpty, 0, "Log section is empty (at least one entry is required)")
	} else {
		for i, line := range t.LogLines {
			s := strings.TrimSpace(line)
			if s == "" {
				continue
			}
			if !logLineRe.MatchString(s) {
				add(IssueLogBadFormat, i+1, "Log line %d must match 'YYYY-MM-DD: [type] comment'", i+1)
			}
		}
	}

	if t.Status == StatusDone && len(t.LogLines) > 0 && !hasDoneMarker(t.LogLines) {
		add(IssueDoneNoMarker, 0, "Done tasks must include a closing log entry containing '[done]'")
	}

	for i, l := range t.Links {
		if !slices.Contains(linkKinds, strings.ToLower(strings.TrimSpace(l.Kind))) {
			add(IssueLinkKindInvalid, i+1, "Link %d: invalid kind '%s' (allowed: file, url, note)", i+1, l.Kind)
		}
		if strings.TrimSpace(l.Value) == "" {
			add(IssueLinkValueEmpty, i+1, "Link %d: empty value", i+1)
		}
	}

	if opts.CheckLinks {
		if opts.ProjectRoot == "" {
			add(IssueLinksNeedProjectRoot, 0, "check_links requires project_root to resolve relative file links")
		} else {
			root := resolvePath(absPath(opts.ProjectRoot))
			for i, l := range t.Links {
				if strings.ToLower(strings.TrimSpace(l.Kind)) != "file" {
					continue
				}
				rel := strings.TrimSpace(l.Value)
				target := rel
				if !filepath.IsAbs(target) {
					target = filepath.Join(root, rel)
				}
				target = resolvePath(target)

				if !within(root, target) {
					add(IssueLinkFileOutsideProject, i+1, "File link points outside project root: %s", rel)
					continue
				}
				if _, err := os.Stat(target); err != nil {
					add(IssueLinkFileMissing, i+1, "Missing linked file: %s", rel)
				}
			}
		}
	}

	return Result{Path: taskDir, Issues: issues}
}

// hasDoneMarker searches from the newest entry backwards.
func hasDoneMarker(lines []string) bool {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.Contains(strings.ToLower(lines[i]), "[done]") {
			return true
		}
	}
	return false
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// resolvePath evaluates symlinks in the longest existing prefix of p.
func resolvePath(p string) string {
	p = filepath.Clean(p)
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	parent := filepath.Dir(p)
	if parent == p {
		return p
	}
	return filepath.Join(resolvePath(parent), filepath.Base(p))
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
