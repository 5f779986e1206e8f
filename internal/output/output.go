// Package output renders CLI status lines and the per-repetition progress bar.
// Everything here goes to stderr; stdout carries only the benchmark report.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Writer prints short status messages.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Status("✅", fmt.Sprintf(format, args...))
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Status("⚠️ ", fmt.Sprintf(format, args...))
}

// IsTerminal reports whether w is a terminal (including Cygwin/MSYS ptys).
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Progress draws an in-place bar for the documents of the current repetition.
// A disabled Progress draws nothing.
type Progress struct {
	out     io.Writer
	enabled bool
	width   int
	last    int
}

// NewProgress creates a progress bar on out. It is enabled only when out is a terminal.
func NewProgress(out io.Writer) *Progress {
	return &Progress{out: out, enabled: IsTerminal(out), width: 30, last: -1}
}

// Update redraws the bar when the whole percentage changes, and ends the line
// at the last document of a repetition.
func (p *Progress) Update(rep, done, total int) {
	if !p.enabled || total <= 0 {
		return
	}

	pct := done * 100 / total
	if pct == p.last && done < total {
		return
	}
	p.last = pct

	_, _ = fmt.Fprintf(p.out, "\rrep %d [%s] %3d%% %d/%d", rep, renderBar(done, total, p.width), pct, done, total)
	if done >= total {
		_, _ = fmt.Fprint(p.out, "\r"+strings.Repeat(" ", p.width+40)+"\r")
		p.last = -1
	}
}

// renderBar creates a text progress bar.
func renderBar(current, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}

	filled := current * width / total
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
