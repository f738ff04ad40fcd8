package sinks

import (
	"context"

	"github.com/plinora/linkcheck/internal/metrics"
	"github.com/plinora/linkcheck/internal/progress"
)

// PrometheusSink mirrors check completions into the shared collectors.
type PrometheusSink struct{}

// NewPrometheusSink initializes the collectors and returns the sink.
func NewPrometheusSink() *PrometheusSink {
	metrics.Init()
	return &PrometheusSink{}
}

// Consume counts terminal verdicts by status class.
func (PrometheusSink) Consume(_ context.Context, evt progress.Event) error {
	if evt.Stage == progress.StageCheckDone {
		metrics.CountCheck(string(evt.StatusClass), evt.Valid)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (PrometheusSink) Close(context.Context) error {
	return nil
}
