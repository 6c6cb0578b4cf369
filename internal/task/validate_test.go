package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(r Result) []IssueCode {
	var out []IssueCode
	for _, i := range r.Issues {
		out = append(out, i.Code)
	}
	return out
}

func TestValidateFile_Clean(t *testing.T) {
	res := ValidateFile(sampleTask(), "/x", ValidateOptions{ExpectedID: "2024-01-01__001__fix_bug"})
	assert.True(t, res.OK())
	assert.Equal(t, "/x", res.Path)
}

func TestValidateFile_LogFormat(t *testing.T) {
	tk := sampleTask()
	tk.LogLines = []string{"2024-01-01 [created]"}

	res := ValidateFile(tk, "", ValidateOptions{})
	require.Len(t, res.Issues, 1)
	assert.Equal(t, IssueLogBadFormat, res.Issues[0].Code)
	assert.Equal(t, 1, res.Issues[0].Index)
	assert.Contains(t, res.Issues[0].Message, "Log line 1")
}

func TestValidateFile_LogLines(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
	}{
		{"2024-01-01: [created]", true},
		{"2024-01-01:   [touch] - did things", true},
		{"  2024-01-01: [next_step] x  ", true},
		{"2024-01-01: [Created]", false},
		{"2024-1-01: [created]", false},
		{"2024-01-01: created", false},
		{"2024-01-01: [created]x", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			tk := sampleTask()
			tk.LogLines = []string{tt.line}
			res := ValidateFile(tk, "", ValidateOptions{})
			assert.Equal(t, tt.ok, !res.Has(IssueLogBadFormat))
		})
	}
}

func TestValidateFile_LogEmpty(t *testing.T) {
	tk := sampleTask()
	tk.LogLines = nil
	tk.Status = StatusDone
	tk.NextAction = ""

	res := ValidateFile(tk, "", ValidateOptions{})
	assert.Equal(t, []IssueCode{IssueLogEmpty}, codes(res))
}

func TestValidateFile_DoneMarker(t *testing.T) {
	tk := sampleTask()
	tk.Status = StatusDone
	tk.NextAction = ""

	res := ValidateFile(tk, "", ValidateOptions{})
	assert.Equal(t, []IssueCode{IssueDoneNoMarker}, codes(res))

	// The marker is matched case-insensitively anywhere in the line.
	closed := tk.Clone()
	closed.LogLines = append(closed.LogLines, "2024-01-03: [note] closed [DONE]")
	assert.True(t, ValidateFile(closed, "", ValidateOptions{}).OK())

	// As a tag it must still be lowercase; the marker itself is found.
	upperTag := tk.Clone()
	upperTag.LogLines = append(upperTag.LogLines, "2024-01-03: [DONE] finally")
	res = ValidateFile(upperTag, "", ValidateOptions{})
	assert.Equal(t, []IssueCode{IssueLogBadFormat}, codes(res))
	assert.Equal(t, 2, res.Issues[0].Index)
}

func TestValidateFile_CollectsAllRules(t *testing.T) {
	tk := sampleTask()
	tk.NextAction = ""
	tk.LogLines = []string{"bad line", "2024-01-02: [touch] - ok", "also bad"}
	tk.Links = []Link{{Kind: "ftp", Value: " "}, {Kind: "URL", Value: "x"}}

	res := ValidateFile(tk, "", ValidateOptions{ExpectedID: "other", CheckLinks: true})

	assert.Equal(t, []IssueCode{
		IssueIDMismatch,
		IssueModelInvariant,
		IssueLogBadFormat,
		IssueLogBadFormat,
		IssueLinkKindInvalid,
		IssueLinkValueEmpty,
		IssueLinksNeedProjectRoot,
	}, codes(res))
	assert.Equal(t, 3, res.Issues[3].Index)
	assert.Equal(t, 1, res.Issues[4].Index)
}

func TestValidateFile_FileLinks(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "project")
	require.NoError(t, os.MkdirAll(filepath.Join(project, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "src", "main.go"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "outside"), nil, 0644))

	tk := sampleTask()
	tk.Links = []Link{
		{Kind: "file", Value: "src/main.go"},
		{Kind: "file", Value: "src/gone.go"},
		{Kind: "file", Value: "../outside"},
		{Kind: "file", Value: "../missing-outside"},
		{Kind: "url", Value: "../not-checked"},
		{Kind: "file", Value: filepath.Join(project, "src", "main.go")},
	}

	res := ValidateFile(tk, "", ValidateOptions{CheckLinks: true, ProjectRoot: project})

	require.Len(t, res.Issues, 3)
	assert.Equal(t, Issue{Code: IssueLinkFileMissing, Message: "Missing linked file: src/gone.go", Index: 2}, res.Issues[0])
	assert.Equal(t, IssueLinkFileOutsideProject, res.Issues[1].Code)
	assert.Equal(t, 3, res.Issues[1].Index)
	assert.Equal(t, IssueLinkFileOutsideProject, res.Issues[2].Code)
	assert.False(t, res.Has(IssueLinksNeedProjectRoot))
}

func TestValidateFile_SymlinkEscape(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "project")
	require.NoError(t, os.MkdirAll(project, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret"), nil, 0644))
	if err := os.Symlink(filepath.Join(root, "secret"), filepath.Join(project, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	tk := sampleTask()
	tk.Links = []Link{{Kind: "file", Value: "link"}}

	res := ValidateFile(tk, "", ValidateOptions{CheckLinks: true, ProjectRoot: project})
	assert.Equal(t, []IssueCode{IssueLinkFileOutsideProject}, codes(res))
}

func TestValidateFile_NilTaskPanics(t *testing.T) {
	assert.Panics(t, func() { ValidateFile(nil, "", ValidateOptions{}) })
}
