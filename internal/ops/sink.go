package ops

import (
	"context"

	"go.uber.org/zap"

	"github.com/hpungsan/rumors/internal/theory"
)

// EventSink records analytics events. Record has no error return: event
// logging never blocks or fails the caller.
type EventSink interface {
	Record(ctx context.Context, e theory.Event)
}

// EventWriter is the subset of Store a StoreSink writes through.
type EventWriter interface {
	InsertEvent(ctx context.Context, e *theory.Event) error
}

// StoreSink writes events to the store and logs and drops any failure,
// including unknown event kinds.
type StoreSink struct {
	store EventWriter
	log   *zap.SugaredLogger
}

// NewStoreSink creates a StoreSink.
func NewStoreSink(store EventWriter, logger *zap.SugaredLogger) *StoreSink {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &StoreSink{store: store, log: logger}
}

// Record implements EventSink.
func (s *StoreSink) Record(ctx context.Context, e theory.Event) {
	if err := s.store.InsertEvent(ctx, &e); err != nil {
		s.log.Warnw("analytics event dropped",
			"theory_id", e.TheoryID,
			"event_type", e.Type,
			"error", err,
		)
	}
}
