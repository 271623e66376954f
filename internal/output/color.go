package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Paint decorates its arguments the way fmt.Sprint joins them
type Paint func(a ...interface{}) string

// ColorScheme holds the painters for each output element. A disabled
// scheme's painters return plain text.
type ColorScheme struct {
	Worker   Paint
	Success  Paint
	Warning  Paint
	Header   Paint
	Duration Paint
	Muted    Paint

	Disabled bool
}

// NewColorScheme creates a color scheme for w. Colors are off for non-TTY
// writers or when noColor is true.
func NewColorScheme(w io.Writer, noColor bool) *ColorScheme {
	enabled := !noColor && IsTerminal(w)

	paint := func(attrs ...color.Attribute) Paint {
		c := color.New(attrs...)
		// the package-level default only looks at stdout
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}

	return &ColorScheme{
		Worker:   paint(color.FgCyan, color.Bold),
		Success:  paint(color.FgGreen),
		Warning:  paint(color.FgYellow),
		Header:   paint(color.Bold),
		Duration: paint(color.FgBlue),
		Muted:    paint(color.Faint),
		Disabled: !enabled,
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
