package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/MikeBiancalana/tskctl/internal/render"
	"github.com/MikeBiancalana/tskctl/internal/task"
)

type OutputFormat string

const (
	FormatTree OutputFormat = "tree"
	FormatJSON OutputFormat = "json"
	FormatTSV  OutputFormat = "tsv"
	FormatCSV  OutputFormat = "csv"
)

func parseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "tree", "":
		return FormatTree, nil
	case "json":
		return FormatJSON, nil
	case "tsv":
		return FormatTSV, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: tree, json, tsv, csv)", s)
	}
}

// listedTask is one row of the flat list formats.
type listedTask struct {
	Project string `json:"project"`
	Dir     string `json:"dir"`
	AgeDays int    `json:"age_days"`
	*task.Task
}

var tableHeader = []string{"PROJECT", "ID", "STATUS", "LAST_TOUCH", "AGE", "TITLE", "NEXT_ACTION"}

func (r listedTask) record() []string {
	return []string{
		r.Project,
		r.ID,
		string(r.Status),
		task.FormatDate(r.LastTouch),
		strconv.Itoa(r.AgeDays),
		r.Title,
		render.FirstLine(r.NextAction),
	}
}

func newListedTask(p task.Project, dir string, t *task.Task, today time.Time) listedTask {
	return listedTask{Project: p.RootDir, Dir: dir, AgeDays: t.AgeDays(today), Task: t}
}

func formatTasksJSON(w io.Writer, rows []listedTask) error {
	if rows == nil {
		rows = []listedTask{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func formatTasksTSV(w io.Writer, rows []listedTask) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.TabIndent)
	fmt.Fprintln(tw, strings.Join(tableHeader, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r.record(), "\t"))
	}
	return tw.Flush()
}

func formatTasksCSV(w io.Writer, rows []listedTask) error {
	cw := csv.NewWriter(w)
	cw.Write(tableHeader)
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
