package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/muesli/termenv"
)

const (
	colorResult   = "#34d399"
	colorNote     = "#fbbf24"
	colorFailure  = "#f87171"
	colorRejected = "#fb923c"
)

// Printer writes submission outcomes to a terminal. Colors are dropped
// automatically when w is not a TTY.
type Printer struct {
	w   io.Writer
	out *termenv.Output
}

// NewPrinter creates a Printer for w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, out: termenv.NewOutput(w)}
}

// State prints a settled submission state. Idle and loading states print nothing.
func (p *Printer) State(s domain.SubmissionState) {
	switch {
	case s.IsLoading:
		return
	case s.Result != nil:
		p.line("= ", fmt.Sprintf("%d", *s.Result), colorResult, true)
	case s.ErrorMessage != "":
		p.line("! ", s.ErrorMessage, colorFailure, false)
	}
}

// Result prints a pipeline result, including the attempt count when it retried.
func (p *Printer) Result(r domain.EvaluationResult) {
	switch {
	case r.OK && r.Value != nil:
		p.line("= ", fmt.Sprintf("%d", *r.Value), colorResult, true)
	case r.OK:
		p.line("~ ", r.Note, colorNote, false)
	default:
		msg := r.Message
		if r.Attempts > 1 {
			msg = fmt.Sprintf("%s (%d attempts)", msg, r.Attempts)
		}
		p.line("! ", msg, colorFailure, false)
	}
}

// Rejection prints a validation message.
func (p *Printer) Rejection(msg string) {
	p.line("? ", msg, colorRejected, false)
}

// Info prints an unstyled system message.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) line(prefix, text, color string, bold bool) {
	s := p.out.String(prefix + text).Foreground(p.out.Color(color))
	if bold {
		s = s.Bold()
	}
	fmt.Fprintln(p.w, s)
}
