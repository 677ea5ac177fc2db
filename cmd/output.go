package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

// DiagnosticJSON is the JSON output form of one diagnostic. Pointer repeats
// Path as an RFC 6901 string for consumers that do not walk segment arrays.
type DiagnosticJSON struct {
	Code     string    `json:"code"`
	Rule     string    `json:"rule,omitempty"`
	Severity string    `json:"severity"`
	Message  string    `json:"message"`
	Pointer  string    `json:"pointer"`
	Path     calm.Path `json:"path"`
}

// Failure kinds reported in FileReport.ErrorKind.
const (
	ErrorKindStructural = "structural"
	ErrorKindRead       = "read"
)

// FileReport is the outcome of validating one document. Error holds a
// structural or read failure, told apart by ErrorKind; in that case
// Diagnostics is empty.
type FileReport struct {
	File        string           `json:"file"`
	Valid       bool             `json:"valid"`
	Error       string           `json:"error,omitempty"`
	ErrorKind   string           `json:"errorKind,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
}

func newFileReport(file string, diags []calm.Diagnostic) FileReport {
	out := make([]DiagnosticJSON, len(diags))
	valid := true
	for i, d := range diags {
		out[i] = DiagnosticJSON{
			Code:     string(d.Code),
			Rule:     d.Rule,
			Severity: string(d.Severity),
			Message:  d.Message,
			Pointer:  d.Path.Pointer(),
			Path:     d.Path,
		}
		if hasSeverityError(d.Severity) {
			valid = false
		}
	}
	return FileReport{File: file, Valid: valid, Diagnostics: out}
}

func failedFileReport(file string, err error) FileReport {
	kind := ErrorKindRead
	if errors.Is(err, calm.ErrMalformedDocument) {
		kind = ErrorKindStructural
	}
	return FileReport{File: file, Error: err.Error(), ErrorKind: kind, Diagnostics: []DiagnosticJSON{}}
}

// printer renders reports for humans. Styles degrade to plain text when color
// is off.
type printer struct {
	w     io.Writer
	err   lipgloss.Style
	warn  lipgloss.Style
	ok    lipgloss.Style
	file  lipgloss.Style
	code  lipgloss.Style
	where lipgloss.Style
}

// newPrinter builds a printer for w. color is auto, always or never; auto
// colors only when w is a terminal.
func newPrinter(w io.Writer, color string) *printer {
	r := lipgloss.NewRenderer(w)
	switch {
	case color == "always":
		r.SetColorProfile(termenv.ANSI256)
	case color == "never", !isTerminal(w):
		r.SetColorProfile(termenv.Ascii)
	}
	return &printer{
		w:     w,
		err:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warn:  r.NewStyle().Foreground(lipgloss.Color("11")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("10")),
		file:  r.NewStyle().Bold(true),
		code:  r.NewStyle().Foreground(lipgloss.Color("12")),
		where: r.NewStyle().Faint(true),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) severity(s string) string {
	padded := fmt.Sprintf("%-7s", s)
	if s == string(calm.SeverityError) {
		return p.err.Render(padded)
	}
	return p.warn.Render(padded)
}

// report writes one file report.
func (p *printer) report(r FileReport) {
	file := p.file.Render(sanitize(r.File))
	if r.Error != "" {
		fmt.Fprintf(p.w, "%s: %s %s\n", file, p.err.Render(r.ErrorKind+" error:"), sanitize(r.Error))
		return
	}
	if len(r.Diagnostics) == 0 {
		fmt.Fprintf(p.w, "%s: %s\n", file, p.ok.Render("ok"))
		return
	}
	var errs, warns int
	for _, d := range r.Diagnostics {
		if d.Severity == string(calm.SeverityError) {
			errs++
		} else {
			warns++
		}
	}
	fmt.Fprintf(p.w, "%s: %s, %s\n", file, plural(errs, "error"), plural(warns, "warning"))
	for _, d := range r.Diagnostics {
		where := d.Pointer
		if where == "" {
			where = "(root)"
		}
		line := fmt.Sprintf("  %s %s %s: %s", p.severity(d.Severity), p.code.Render(d.Code), p.where.Render(sanitize(where)), sanitize(d.Message))
		if d.Rule != "" {
			line += " [" + d.Rule + "]"
		}
		fmt.Fprintln(p.w, line)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// writeJSON encodes v to w followed by a newline.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
