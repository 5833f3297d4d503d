// Package envelope wraps the teacher's CloudEvents type with the
// retry/DLQ-oriented accessors a pipeline boundary type needs, supplementing
// spec.md's "R is typically a byte buffer" framing with the realistic
// alternative a message-bus-backed pipeline uses instead: a structured
// envelope carrying attempt counts, next-retry timing, and tracing
// extensions alongside its payload.
package envelope

import (
	"time"

	ce "github.com/wireflow/wireflow/internal/runtime/cloudevents"
)

// Envelope is a CloudEvents-shaped pipeline boundary value. It embeds
// ce.Event so every CloudEvents accessor (Type, Source, Data, ...) is
// available directly, and adds the pipeline-facing retry/DLQ helpers a
// pipeline handler chain reads and writes as it walks an Envelope through
// HandleRead/Write.
type Envelope struct {
	ce.Event
}

// New wraps a freshly constructed CloudEvent as an Envelope.
func New(eventType, source string, data any) Envelope {
	return Envelope{Event: ce.New(eventType, source, data)}
}

// FromEvent wraps an already-built CloudEvent.
func FromEvent(evt ce.Event) Envelope {
	return Envelope{Event: evt}
}

// Attempt returns the current retry attempt number (1-based).
func (e Envelope) Attempt() int { return ce.GetAttempt(e.Event) }

// MaxAttempts returns the maximum number of attempts allowed.
func (e Envelope) MaxAttempts() int { return ce.GetMaxAttempts(e.Event) }

// ExceedsMaxAttempts reports whether Attempt has reached or passed
// MaxAttempts.
func (e Envelope) ExceedsMaxAttempts() bool { return ce.ExceedsMaxAttempts(e.Event) }

// NextAttemptAt returns the scheduled time for the next retry attempt.
func (e Envelope) NextAttemptAt() time.Time { return ce.GetNextAttemptAt(e.Event) }

// DeadLetter reports whether the envelope has been marked for the dead
// letter queue.
func (e Envelope) DeadLetter() bool { return ce.IsDeadLetter(e.Event) }

// TraceID returns the distributed trace ID, if any.
func (e Envelope) TraceID() string { return ce.GetTraceID(e.Event) }

// WithRetry increments the attempt counter and schedules the next attempt
// after delay, returning the updated Envelope.
func (e Envelope) WithRetry(delay time.Duration) Envelope {
	ce.PrepareForRetry(&e.Event, delay)
	return e
}

// WithDeadLetter marks the envelope dead-lettered, recording originalTopic
// and err, returning the updated Envelope.
func (e Envelope) WithDeadLetter(originalTopic string, err error) Envelope {
	ce.PrepareForDLQ(&e.Event, originalTopic, err)
	return e
}

// WithTraceID sets the distributed trace ID, returning the updated
// Envelope.
func (e Envelope) WithTraceID(traceID string) Envelope {
	ce.SetTraceID(&e.Event, traceID)
	return e
}

// DLQTopic returns the dead letter queue topic name for this envelope's
// event type.
func (e Envelope) DLQTopic() string { return ce.DLQTopic(e.Type) }
