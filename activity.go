package authgate

import (
	"context"
	"errors"
	"time"
)

// ActivityEventType names the gateway operation an event reports on.
type ActivityEventType string

const (
	ActivityEventLoginSuccess         ActivityEventType = "login.succeeded"
	ActivityEventLoginFailure         ActivityEventType = "login.failed"
	ActivityEventAuthorizationSuccess ActivityEventType = "authorize.succeeded"
	ActivityEventAuthorizationFailure ActivityEventType = "authorize.failed"
)

// ActivityEvent is emitted once per Login or Authorize call. Stage is the
// last pipeline stage reached; failures also carry the text code and the
// HTTP status the error maps to.
type ActivityEvent struct {
	EventType  ActivityEventType
	Username   string
	Stage      Stage
	TextCode   string
	Status     int
	OccurredAt time.Time
}

// Failed reports whether the event describes a rejected request
func (e ActivityEvent) Failed() bool {
	return e.TextCode != ""
}

// ActivitySink receives gateway events. Errors are logged and never
// change the outcome of the operation.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// ActivitySinks fans an event out to every sink, joining their errors
type ActivitySinks []ActivitySink

func (s ActivitySinks) Record(ctx context.Context, event ActivityEvent) error {
	var errs []error
	for _, sink := range s {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error { return nil }

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
