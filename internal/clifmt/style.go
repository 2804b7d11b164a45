// Package clifmt formats command output, with colours only on a terminal.
package clifmt

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// Style wraps text in ANSI colours when enabled.
type Style struct {
	Color bool
}

// IsTerminal reports whether out is a terminal.
func IsTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// For enables colours when out is a terminal and NO_COLOR is unset.
func For(out io.Writer) Style {
	return Style{Color: IsTerminal(out) && os.Getenv("NO_COLOR") == ""}
}

func (s Style) wrap(code, text string) string {
	if !s.Color || text == "" {
		return text
	}
	return code + text + ansiReset
}

func (s Style) Headerf(format string, args ...any) string {
	return s.wrap(ansiBold+ansiCyan, fmt.Sprintf(format, args...))
}

func (s Style) Key(text string) string     { return s.wrap(ansiBold, text) }
func (s Style) Dim(text string) string     { return s.wrap(ansiDim, text) }
func (s Style) Success(text string) string { return s.wrap(ansiGreen, text) }
func (s Style) Warn(text string) string    { return s.wrap(ansiYellow, text) }

// Width is the terminal width of out, or fallback.
func Width(out io.Writer, fallback int) int {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}
