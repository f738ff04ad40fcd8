package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plinora/linkcheck/internal/checker"
	"github.com/plinora/linkcheck/internal/dataset"
	"github.com/plinora/linkcheck/internal/progress"
)

// fakeResolver returns invalid verdicts for URLs containing "bad" and
// tracks in-flight counts plus per-URL start/end times.
type fakeResolver struct {
	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
	delay    time.Duration
	started  map[string]time.Time
	finished map[string]time.Time
}

func newFakeResolver(delay time.Duration) *fakeResolver {
	return &fakeResolver{
		delay:    delay,
		started:  make(map[string]time.Time),
		finished: make(map[string]time.Time),
	}
}

func (r *fakeResolver) Resolve(_ context.Context, url string) checker.ProbeResult {
	cur := atomic.AddInt32(&r.inFlight, 1)
	for {
		max := atomic.LoadInt32(&r.maxSeen)
		if cur <= max || atomic.CompareAndSwapInt32(&r.maxSeen, max, cur) {
			break
		}
	}
	r.mu.Lock()
	r.started[url] = time.Now()
	r.mu.Unlock()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	r.finished[url] = time.Now()
	r.mu.Unlock()
	atomic.AddInt32(&r.inFlight, -1)

	if strings.Contains(url, "bad") {
		return checker.ProbeResult{URL: url, Valid: false, Reason: "HTTP 404", StatusCode: 404}
	}
	return checker.ProbeResult{URL: url, Valid: true, StatusCode: 200}
}

type openGate struct{}

func (openGate) Wait(context.Context) error { return nil }

type failingGate struct{}

func (failingGate) Wait(context.Context) error { return errors.New("gate unavailable") }

// collectEmitter records every emitted event.
type collectEmitter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (c *collectEmitter) Emit(evt progress.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
}

func records(names ...string) []dataset.Record {
	out := make([]dataset.Record, 0, len(names))
	for i, n := range names {
		out = append(out, dataset.Record{ID: string(rune('a' + i)), Name: n})
	}
	return out
}

func TestRunEveryRecordExactlyOnce(t *testing.T) {
	t.Parallel()

	resolver := newFakeResolver(0)
	engine := New(
		Config{BaseURL: "https://example.com/", Concurrency: 4, BatchSize: 3},
		resolver, openGate{}, nil, nil, nil,
	)

	summary, err := engine.Run(context.Background(), records("One", "bad link", "Three", "Four", "bad again"))
	require.NoError(t, err)
	require.Equal(t, 5, summary.Total)
	require.Equal(t, 5, summary.Completed)
	require.Len(t, summary.Invalid, 2)
	require.Len(t, resolver.started, 5)
}

func TestRunRespectsConcurrencyLimit(t *testing.T) {
	t.Parallel()

	resolver := newFakeResolver(20 * time.Millisecond)
	engine := New(
		Config{BaseURL: "https://example.com/", Concurrency: 2, BatchSize: 10},
		resolver, openGate{}, nil, nil, nil,
	)

	_, err := engine.Run(context.Background(), records("A", "B", "C", "D", "E", "F", "G", "H"))
	require.NoError(t, err)
	require.LessOrEqual(t, resolver.maxSeen, int32(2))
}

func TestRunBatchOrderingIsStrict(t *testing.T) {
	t.Parallel()

	resolver := newFakeResolver(15 * time.Millisecond)
	engine := New(
		Config{BaseURL: "https://example.com/", Concurrency: 8, BatchSize: 2},
		resolver, openGate{}, nil, nil, nil,
	)

	_, err := engine.Run(context.Background(), records("A", "B", "C", "D"))
	require.NoError(t, err)

	firstBatchDone := resolver.finished["https://example.com/A"]
	if resolver.finished["https://example.com/B"].After(firstBatchDone) {
		firstBatchDone = resolver.finished["https://example.com/B"]
	}
	require.False(t, resolver.started["https://example.com/C"].Before(firstBatchDone))
	require.False(t, resolver.started["https://example.com/D"].Before(firstBatchDone))
}

func TestRunEmptyInputIsFatal(t *testing.T) {
	t.Parallel()

	resolver := newFakeResolver(0)
	engine := New(
		Config{BaseURL: "https://example.com/", Concurrency: 2, BatchSize: 2},
		resolver, openGate{}, nil, nil, nil,
	)

	_, err := engine.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoRecords)
	require.Empty(t, resolver.started)
}

func TestRunGateFailureYieldsInvalidVerdict(t *testing.T) {
	t.Parallel()

	resolver := newFakeResolver(0)
	engine := New(
		Config{BaseURL: "https://example.com/", Concurrency: 2, BatchSize: 2},
		resolver, failingGate{}, nil, nil, nil,
	)

	summary, err := engine.Run(context.Background(), records("A"))
	require.NoError(t, err)
	require.Len(t, summary.Invalid, 1)
	require.Contains(t, summary.Invalid[0].Reason, "gate unavailable")
	// The resolver is never reached when the gate refuses a turn.
	require.Empty(t, resolver.started)
}

func TestRunEmitsProgressEvents(t *testing.T) {
	t.Parallel()

	emitter := &collectEmitter{}
	engine := New(
		Config{BaseURL: "https://example.com/", Concurrency: 2, BatchSize: 2},
		newFakeResolver(0), openGate{}, emitter, nil, nil,
	)

	_, err := engine.Run(context.Background(), records("A", "bad"))
	require.NoError(t, err)

	require.Len(t, emitter.events, 4)
	require.Equal(t, progress.StageRunStart, emitter.events[0].Stage)
	require.Equal(t, progress.StageRunDone, emitter.events[3].Stage)

	completions := map[int]bool{}
	for _, evt := range emitter.events[1:3] {
		require.Equal(t, progress.StageCheckDone, evt.Stage)
		require.Equal(t, 2, evt.Total)
		completions[evt.Completed] = true
	}
	require.True(t, completions[1])
	require.True(t, completions[2])
}

func TestRunCancelledContextAborts(t *testing.T) {
	t.Parallel()

	resolver := newFakeResolver(10 * time.Millisecond)
	engine := New(
		Config{BaseURL: "https://example.com/", Concurrency: 1, BatchSize: 1, BatchPause: time.Millisecond},
		resolver, openGate{}, nil, nil, nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.Run(ctx, records("A", "B"))
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
