// Package output provides consistent CLI output: JSON documents for
// machine consumption and short status lines for humans.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Writer formats CLI output. JSON is indented when writing to a terminal
// and compact otherwise, unless overridden.
type Writer struct {
	out    io.Writer
	indent bool
}

// New creates a Writer, indenting JSON when out is a terminal.
func New(out io.Writer) *Writer {
	return &Writer{out: out, indent: IsTTY(out)}
}

// SetIndent forces indented (true) or compact (false) JSON.
func (w *Writer) SetIndent(indent bool) {
	w.indent = indent
}

// JSON writes v as a single JSON document followed by a newline.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// JSONLine writes v as compact JSON on one line regardless of the indent
// setting, for streams of events.
func (w *Writer) JSONLine(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
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

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// KeyValue prints an aligned key/value pair.
func (w *Writer) KeyValue(key, value string) {
	_, _ = fmt.Fprintf(w.out, "  %-18s %s\n", key+":", value)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
