// Package report accumulates verdicts and renders the final outcome.
package report

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/plinora/linkcheck/internal/checker"
)

// maxListed caps the enumerated invalid links in the failure report.
const maxListed = 50

// RunSummary aggregates every verdict produced by a run. Completed
// equals Total once the run terminates; Invalid holds exactly the
// Valid=false verdicts in arrival order.
type RunSummary struct {
	Total     int
	Completed int
	Invalid   []checker.ProbeResult
	Elapsed   time.Duration
}

// Failed reports whether any link resolved to an invalid verdict.
func (s RunSummary) Failed() bool {
	return len(s.Invalid) > 0
}

// Aggregator collects verdicts as they arrive. Results complete out of
// input order, so Add is safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	summary RunSummary
}

// NewAggregator builds an Aggregator expecting total verdicts.
func NewAggregator(total int) *Aggregator {
	return &Aggregator{summary: RunSummary{Total: total}}
}

// Add records one terminal verdict and returns the completion count so
// callers can attach it to progress events.
func (a *Aggregator) Add(res checker.ProbeResult) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.summary.Completed++
	if !res.Valid {
		a.summary.Invalid = append(a.summary.Invalid, res)
	}
	return a.summary.Completed
}

// Total returns the expected number of verdicts.
func (a *Aggregator) Total() int {
	return a.summary.Total
}

// Summary returns a copy of the accumulated state.
func (a *Aggregator) Summary() RunSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.summary
	out.Invalid = append([]checker.ProbeResult(nil), a.summary.Invalid...)
	return out
}

// WriteSuccess prints the single success summary line.
func WriteSuccess(w io.Writer, s RunSummary) {
	fmt.Fprintf(w, "all %d links valid in %s\n", s.Total, s.Elapsed.Round(time.Millisecond))
}

// WriteFailure enumerates invalid links, capped at maxListed with an
// overflow count.
func WriteFailure(w io.Writer, s RunSummary) {
	fmt.Fprintf(w, "%d of %d links are invalid:\n", len(s.Invalid), s.Total)
	for i, res := range s.Invalid {
		if i == maxListed {
			fmt.Fprintf(w, "  ... and %d more\n", len(s.Invalid)-maxListed)
			break
		}
		fmt.Fprintf(w, "  [%s] %s -> %s: %s\n", res.ID, res.Name, res.URL, res.Reason)
	}
}
