package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/internal/presentation/tui"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/aretw0/abacus/pkg/submission"
	"github.com/aretw0/abacus/pkg/validator"
)

const prompt = "abacus> "

const replHelp = `Enter an expression such as 2 + 3 * 4.
  :clear   reset the calculator
  :rules   list the validation rules
  :help    show this help
  :quit    leave (also exit or Ctrl-D)`

// REPLOptions configures RunREPL.
type REPLOptions struct {
	// Interactive prints the banner and a prompt. Set it when input is a terminal.
	Interactive bool
	Version     string
	Logger      *slog.Logger
}

// RunREPL reads one expression per line from in and prints each outcome to out
// until in is exhausted, the user quits or ctx is cancelled.
func RunREPL(ctx context.Context, client *abacus.Client, in io.Reader, out io.Writer, opts REPLOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	printer := tui.NewPrinter(out)
	ctrl := client.NewController(
		submission.WithObserver(observability.LogTransitions(logger)),
	)

	if opts.Interactive {
		tui.PrintBanner(out, opts.Version)
		printer.Info("Type :help for commands.")
	}

	lines := scanLines(ctx, in)
	for {
		if opts.Interactive {
			fmt.Fprint(out, prompt)
		}

		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case ":q", ":quit", "exit":
			return nil
		case ":help":
			fmt.Fprintln(out, replHelp)
			continue
		case ":rules":
			fmt.Fprint(out, validator.Markdown())
			continue
		case ":clear":
			ctrl.Clear()
			printer.Info("Cleared.")
			continue
		}

		ctrl.SetExpression(line)
		err := ctrl.Calculate(ctx)

		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			printer.Rejection(verr.Error())
		case err != nil:
			return err
		default:
			printer.State(ctrl.State())
		}
	}
}

// scanLines feeds lines from r into a channel that is closed at EOF.
// The reader goroutine is abandoned if ctx ends while it blocks on r.
func scanLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
