package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pergola/internal/logging"
	"pergola/internal/notifications"
	"pergola/internal/store"
)

// Sentinel errors returned by stage transitions.
var (
	// ErrInvalidStage indicates the target stage does not exist or belongs
	// to a different pipeline than the record being moved.
	ErrInvalidStage = errors.New("invalid stage")
	// ErrUnknownPipeline indicates an unrecognized pipeline slug.
	ErrUnknownPipeline = errors.New("unknown pipeline")
)

// Engine applies stage transitions and their side effects.
type Engine struct {
	store    *store.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// NewEngine builds a transition engine. A nil notifier or logger is replaced
// with a no-op implementation.
func NewEngine(st *store.Store, notifier notifications.Service, logger *slog.Logger) *Engine {
	if notifier == nil {
		notifier = notifications.NewNop()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{store: st, notifier: notifier, logger: logger.With(logging.String(logging.FieldComponent, "workflow"))}
}

// resolveStage fetches the target stage and checks it belongs to the pipeline
// of the record being moved. Any failure here happens before mutation.
func (e *Engine) resolveStage(ctx context.Context, pipelineID, stageID string) (*store.Stage, error) {
	stage, err := e.store.GetStage(ctx, stageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("stage %s: %w", stageID, ErrInvalidStage)
		}
		return nil, err
	}
	if stage.PipelineID != pipelineID {
		return nil, fmt.Errorf("stage %s belongs to another pipeline: %w", stageID, ErrInvalidStage)
	}
	return stage, nil
}

// notify sends a milestone notification. Delivery failures are logged and
// never fail the transition that triggered them.
func (e *Engine) notify(label string, err error) {
	if err != nil {
		e.logger.Warn("notification failed",
			logging.String("event", label),
			logging.Error(err))
	}
}
