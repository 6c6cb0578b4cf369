package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/charmbracelet/x/ansi"
)

const maxWidth = 80

// Detail writes a boxed view of one task, at most 80 columns wide.
func Detail(w io.Writer, t *task.Task, opts Options) {
	width := maxWidth
	if opts.Width > 0 {
		width = min(maxWidth, opts.Width)
	}
	b := box{w: w, width: width, inner: max(20, width-4)}
	st := newStyles(w, opts.Color)
	today := opts.today()

	fmt.Fprintln(w)
	b.rule("=")
	b.line(fmt.Sprintf("%s (%s)", t.Title, st.status(t.Status, string(t.Status))))
	b.rule("=")

	b.line("id: " + t.ID)
	b.line("created: " + st.dim(task.FormatDate(t.Created)))
	b.line(fmt.Sprintf("last_touch: %s (%d days)", st.status(t.Status, task.FormatDate(t.LastTouch)), t.AgeDays(today)))

	if strings.TrimSpace(t.NextAction) != "" {
		b.section("Next action:", t.NextAction)
	}
	if strings.TrimSpace(t.Summary) != "" {
		b.section("Summary:", t.Summary)
	}
	if len(t.LogLines) > 0 {
		b.rule("-")
		b.line("Log:")
		for _, l := range t.LogLines {
			if strings.TrimSpace(l) == "" {
				continue
			}
			b.wrapped(l, "  ")
		}
	}
	if len(t.Links) > 0 {
		b.rule("-")
		b.line("Links:")
		for _, l := range t.Links {
			b.wrapped(l.Kind+": "+l.Value, "  ")
		}
	}

	b.rule("=")
	fmt.Fprintln(w)
}

type box struct {
	w     io.Writer
	width int
	inner int
}

func (b box) rule(ch string) {
	fmt.Fprintf(b.w, "+%s+\n", strings.Repeat(ch, b.width-2))
}

func (b box) line(content string) {
	content = ansi.Truncate(content, b.inner, "")
	if pad := b.inner - ansi.StringWidth(content); pad > 0 {
		content += strings.Repeat(" ", pad)
	}
	fmt.Fprintf(b.w, "| %s |\n", content)
}

func (b box) section(heading, body string) {
	b.rule("-")
	b.line(heading)
	b.wrapped(body, "  ")
}

// wrapped writes s word-wrapped to the box, each line indented. Words
// longer than a line are not split; line truncates them instead.
func (b box) wrapped(s, indent string) {
	for _, ln := range wrapLines(s, b.inner-len(indent)) {
		if ln == "" {
			b.line("")
			continue
		}
		b.line(indent + ln)
	}
}

func wrapLines(s string, width int) []string {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return nil
	}

	var out []string
	for _, ln := range strings.Split(s, "\n") {
		if strings.TrimSpace(ln) == "" {
			out = append(out, "")
			continue
		}
		ln = strings.Join(strings.Fields(ln), " ")
		for _, w := range strings.Split(ansi.Wordwrap(ln, width, ""), "\n") {
			out = append(out, strings.TrimRight(w, " "))
		}
	}
	return out
}
