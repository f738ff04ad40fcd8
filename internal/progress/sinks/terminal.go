package sinks

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/plinora/linkcheck/internal/progress"
)

// When the stream is not a terminal, a progress line is printed every
// lineEvery completions instead of rewriting in place.
const lineEvery = 25

// Terminal renders run progress to a diagnostic stream. On an
// interactive terminal the progress line is updated in place; piped
// output gets periodic line-based updates so logs stay readable.
type Terminal struct {
	w           io.Writer
	interactive bool
	invalid     int
}

// NewTerminal builds a sink for w, detecting whether it is a TTY.
func NewTerminal(w io.Writer) *Terminal {
	interactive := false
	if f, ok := w.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Terminal{w: w, interactive: interactive}
}

// Consume renders one event. The Hub serializes calls, so no internal
// locking is needed.
func (t *Terminal) Consume(_ context.Context, evt progress.Event) error {
	switch evt.Stage {
	case progress.StageRunStart:
		fmt.Fprintf(t.w, "checking %d links\n", evt.Total)
	case progress.StageCheckDone:
		if !evt.Valid {
			t.invalid++
		}
		if t.interactive {
			fmt.Fprintf(t.w, "\rchecked %d/%d (%d invalid)", evt.Completed, evt.Total, t.invalid)
		} else if evt.Completed%lineEvery == 0 || evt.Completed == evt.Total {
			fmt.Fprintf(t.w, "checked %d/%d (%d invalid)\n", evt.Completed, evt.Total, t.invalid)
		}
	case progress.StageRunDone:
		if t.interactive {
			fmt.Fprintln(t.w)
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (t *Terminal) Close(context.Context) error {
	return nil
}
