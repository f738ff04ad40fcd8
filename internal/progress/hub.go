package progress

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultSinkTimeout = 5 * time.Second

// Hub fans events out to the registered sinks in registration order.
// Emission is serialized with a mutex; a run's event rate is bounded by
// the probe pipeline itself, so no buffering is needed. A failing sink
// is logged and never blocks the run.
type Hub struct {
	mu          sync.Mutex
	sinks       []Sink
	logger      *zap.Logger
	sinkTimeout time.Duration
}

// NewHub builds a Hub over the given sinks. Nil sinks are skipped.
func NewHub(logger *zap.Logger, sinks ...Sink) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Hub{
		sinks:       kept,
		logger:      logger,
		sinkTimeout: defaultSinkTimeout,
	}
}

// Emit delivers evt to every sink. Invalid events are discarded with a
// debug log.
func (h *Hub) Emit(evt Event) {
	if h == nil {
		return
	}
	if err := evt.Validate(); err != nil {
		h.logger.Debug("discarding invalid progress event", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sink := range h.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), h.sinkTimeout)
		if err := sink.Consume(ctx, evt); err != nil {
			h.logger.Warn("progress sink consume failed", zap.Error(err))
		}
		cancel()
	}
}

// Close closes every sink. Errors are logged, not returned, since the
// run outcome is already decided by the time sinks shut down.
func (h *Hub) Close(ctx context.Context) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sink := range h.sinks {
		if err := sink.Close(ctx); err != nil {
			h.logger.Warn("progress sink close failed", zap.Error(err))
		}
	}
}
