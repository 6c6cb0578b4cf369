package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// lineReader prompts on out and reads answers line by line from in. One
// reader is shared by a command so buffered input is never lost.
type lineReader struct {
	r   *bufio.Reader
	out io.Writer
}

func newLineReader(in io.Reader, out io.Writer) *lineReader {
	return &lineReader{r: bufio.NewReader(in), out: out}
}

// Prompt implements task.Prompter. It returns io.EOF once input is exhausted.
func (l *lineReader) Prompt(label string) (string, error) {
	fmt.Fprintf(l.out, "%s: ", label)
	line, err := l.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		fmt.Fprintln(l.out)
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// huhPrompter asks with a single huh input field.
type huhPrompter struct{}

func (huhPrompter) Prompt(label string) (string, error) {
	var value string
	if err := huh.NewInput().Title(label).Value(&value).Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}
