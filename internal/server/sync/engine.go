package sync

import (
	"context"
	"fmt"

	"github.com/regisync/regisync/internal/logging"
	"github.com/regisync/regisync/internal/server/errorlog"
	"github.com/regisync/regisync/internal/server/feed"
	"github.com/regisync/regisync/internal/server/notify"
	"github.com/regisync/regisync/internal/server/participants"
	"github.com/regisync/regisync/internal/server/qrcode"
)

// Registry is the participant storage capability the engine mutates.
// CreateRegistered must atomically insert the participant as registered and
// assign its identifier payload; Update overwrites mutable fields only.
type Registry interface {
	FindByEmail(ctx context.Context, email string) (*participants.Participant, error)
	CreateRegistered(ctx context.Context, p *participants.Participant) (*participants.Participant, error)
	Update(ctx context.Context, p *participants.Participant) error
}

// BadgeStore persists rendered identifier images. Optional; a nil store
// skips uploads and the QR endpoint renders on demand instead.
type BadgeStore interface {
	Put(ctx context.Context, participantID string, png []byte) error
}

// Recorder is the diagnostics sink. Implementations never fail.
type Recorder interface {
	Record(ctx context.Context, level, message, trace string)
}

// Summary is the aggregate outcome of one batch. Row-level detail lives
// only in the error log.
type Summary struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Errored   int `json:"errored"`
}

// Engine drives one reconciliation batch over the external feed. All
// collaborators are injected; the engine holds no global state. It assumes
// it is not invoked concurrently with itself; callers serialize batches.
type Engine struct {
	source   feed.Source
	registry Registry
	renderer qrcode.Renderer
	badges   BadgeStore
	notifier notify.Notifier
	recorder Recorder
	logger   logging.Logger
	baseURL  string
}

func NewEngine(
	source feed.Source,
	registry Registry,
	renderer qrcode.Renderer,
	badges BadgeStore,
	notifier notify.Notifier,
	recorder Recorder,
	logger logging.Logger,
	baseURL string,
) *Engine {
	return &Engine{
		source:   source,
		registry: registry,
		renderer: renderer,
		badges:   badges,
		notifier: notifier,
		recorder: recorder,
		logger:   logger.With("module", "sync"),
		baseURL:  baseURL,
	}
}

// Run executes one batch: fetch the feed once, then process every data row
// independently. A row failure is recorded, counted, and skipped; only an
// unreachable feed aborts the batch. Re-running on an unchanged feed is a
// no-op (all rows resolve to no-change), so a crash mid-batch is repaired
// by the next run.
func (e *Engine) Run(ctx context.Context) (Summary, error) {

	var summary Summary

	rows, err := e.source.FetchRows(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetching feed: %w", err)
	}

	// header + at least one data row
	if len(rows) < 2 {
		e.recorder.Record(ctx, errorlog.LevelInfo, "no data to sync or feed is empty", "")
		return summary, nil
	}

	headers := TrimHeaders(rows[0])

	for i, row := range rows[1:] {
		// 1-based, counting the header: the first data row is row 2.
		rowNumber := i + 2

		cand, err := NormalizeRow(headers, row)
		if err != nil {
			e.recorder.Record(ctx, errorlog.LevelWarning,
				fmt.Sprintf("row %d skipped: %v", rowNumber, err), "")
			summary.Errored++
			continue
		}

		decision, err := Resolve(ctx, cand, e.registry.FindByEmail)
		if err != nil {
			e.recorder.Record(ctx, errorlog.LevelError,
				fmt.Sprintf("row %d: identity resolution failed: %v", rowNumber, err), "")
			summary.Errored++
			continue
		}

		switch decision.Kind {
		case DecisionCreate:
			p := &participants.Participant{
				FullName:     cand.FullName,
				Email:        cand.Email,
				Phone:        cand.Phone,
				RegisteredAt: cand.RegisteredAt,
				RawSourceRow: cand.FieldsByHeader,
			}

			created, err := e.registry.CreateRegistered(ctx, p)
			if err != nil {
				e.recorder.Record(ctx, errorlog.LevelError,
					fmt.Sprintf("row %d: failed to create participant %q: %v", rowNumber, cand.Email, err), "")
				summary.Errored++
				continue
			}

			summary.Created++
			e.logger.Info(ctx, "participant created", "email", created.Email, "row", rowNumber)

			// Post-commit side effects; their failure degrades, never
			// fails the already-created row.
			e.confirm(ctx, created)

		case DecisionUpdate:
			p := decision.Existing
			p.FullName = cand.FullName
			p.Phone = cand.Phone
			p.RawSourceRow = cand.FieldsByHeader

			if err := e.registry.Update(ctx, p); err != nil {
				e.recorder.Record(ctx, errorlog.LevelError,
					fmt.Sprintf("row %d: failed to update participant %q: %v", rowNumber, cand.Email, err), "")
				summary.Errored++
				continue
			}

			summary.Updated++
			e.logger.Info(ctx, "participant updated", "email", p.Email,
				"row", rowNumber, "changed", decision.ChangedFields)

		case DecisionNoChange:
			summary.Unchanged++
		}
	}

	e.logger.Info(ctx, "sync finished",
		"created", summary.Created, "updated", summary.Updated,
		"unchanged", summary.Unchanged, "errored", summary.Errored)

	return summary, nil
}

// confirm renders and stores the participant's badge and sends the
// confirmation email. Each step is best-effort: failures are recorded and
// the remaining steps still run.
func (e *Engine) confirm(ctx context.Context, p *participants.Participant) {

	qrURL := fmt.Sprintf("%s/api/participants/%s/qr", e.baseURL, p.ID)

	png, err := e.renderer.Render(ctx, p.IdentifierPayload)
	if err != nil {
		e.recorder.Record(ctx, errorlog.LevelError,
			fmt.Sprintf("failed to render badge for participant %s: %v", p.ID, err), "")
	} else if e.badges != nil {
		if err := e.badges.Put(ctx, p.ID, png); err != nil {
			e.recorder.Record(ctx, errorlog.LevelError,
				fmt.Sprintf("failed to store badge for participant %s: %v", p.ID, err), "")
		}
	}

	body := notify.ConfirmationMessage(p, qrURL)
	if err := e.notifier.Send(ctx, p.Email, notify.ConfirmationSubject, body); err != nil {
		e.recorder.Record(ctx, errorlog.LevelWarning,
			fmt.Sprintf("failed to send confirmation to %q: %v", p.Email, err), "")
	}
}
