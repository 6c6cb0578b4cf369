package render

import (
	"io"
	"time"

	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/charmbracelet/lipgloss"
)

// Options control presentation. A zero Today means the current date; a zero
// Width means 80 columns.
type Options struct {
	Color bool
	Today time.Time
	Width int
}

func (o Options) today() time.Time {
	if o.Today.IsZero() {
		return task.SystemClock.Today()
	}
	return task.Date(o.Today)
}

var statusColors = map[task.Status]lipgloss.Color{
	task.StatusActive:  lipgloss.Color("2"),
	task.StatusWaiting: lipgloss.Color("3"),
	task.StatusPaused:  lipgloss.Color("4"),
	task.StatusDone:    lipgloss.Color("8"),
}

// styles binds colors to the output w. The renderer drops color when w is
// not a terminal, and everything is plain when color is disabled.
type styles struct {
	enabled  bool
	renderer *lipgloss.Renderer
}

func newStyles(w io.Writer, color bool) styles {
	return styles{enabled: color, renderer: lipgloss.NewRenderer(w)}
}

func (s styles) status(st task.Status, text string) string {
	if !s.enabled {
		return text
	}
	c, ok := statusColors[st]
	if !ok {
		return text
	}
	return s.renderer.NewStyle().Foreground(c).Render(text)
}

func (s styles) dim(text string) string {
	if !s.enabled {
		return text
	}
	return s.renderer.NewStyle().Foreground(lipgloss.Color("8")).Render(text)
}
