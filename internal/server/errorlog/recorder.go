package errorlog

import (
	"context"
	"time"

	"github.com/regisync/regisync/internal/logging"
)

// Recorder is the terminal diagnostics sink. Record never fails and never
// panics: if persisting the entry fails, the failure and the original
// message both go to the process logger instead, so a degraded log store
// cannot mask the error that was being reported.
type Recorder struct {
	repo   Repository
	logger logging.Logger
}

func NewRecorder(repo Repository, logger logging.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger.With("module", "errorlog")}
}

func (r *Recorder) Record(ctx context.Context, level, message, trace string) {
	entry := &Entry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		Trace:     trace,
	}

	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.Error(ctx, "failed to persist error log entry",
			"persist_error", err.Error(), "level", level, "original_message", message, "trace", trace)
		return
	}

	switch level {
	case LevelWarning:
		r.logger.Warn(ctx, message)
	case LevelInfo:
		r.logger.Info(ctx, message)
	default:
		r.logger.Error(ctx, message)
	}
}
