package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSignupCreated         ActivityEventType = "account.signup.created"
	ActivityEventActivationEmailSent   ActivityEventType = "account.activation.email_sent"
	ActivityEventAccountActivated      ActivityEventType = "account.activated"
	ActivityEventEmailChangeRequested  ActivityEventType = "account.email.change_requested"
	ActivityEventEmailChangeConfirmed  ActivityEventType = "account.email.change_confirmed"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     uuid.UUID
	Email      string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry
// purposes. Sinks run best-effort; errors are logged, never propagated,
// so audit plumbing cannot block signups or activations.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if logger == nil {
		logger = defLogger{}
	}

	if err := normalizeActivitySink(sink).Record(ctx, event); err != nil {
		logger.Error("activity sink error: %v", err)
	}
}
