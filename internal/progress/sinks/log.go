package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/plinora/linkcheck/internal/progress"
)

// LogSink emits structured logs for the progress stream. Run lifecycle
// events log at info; per-check events at debug to keep normal runs
// quiet.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs the event using structured fields.
func (s *LogSink) Consume(_ context.Context, evt progress.Event) error {
	fields := []zap.Field{
		zap.String("run_id", evt.RunUUID().String()),
		zap.String("stage", string(evt.Stage)),
		zap.Int("completed", evt.Completed),
		zap.Int("total", evt.Total),
	}
	switch evt.Stage {
	case progress.StageCheckDone:
		fields = append(fields,
			zap.String("record_id", evt.RecordID),
			zap.String("name", evt.Name),
			zap.String("url", evt.URL),
			zap.String("status_class", string(evt.StatusClass)),
			zap.Bool("valid", evt.Valid),
			zap.String("reason", evt.Reason),
		)
		s.logger.Debug("check done", fields...)
	case progress.StageRunDone:
		fields = append(fields, zap.Duration("dur", evt.Dur))
		s.logger.Info("run done", fields...)
	default:
		s.logger.Info("run start", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
