package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// Metadata carries standard information attached to an enveloped event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the envelope was created.
	Timestamp time.Time

	// Source identifies the component that published the event.
	Source string

	// CorrelationID links related events (e.g. request/response).
	CorrelationID string
}

// timeNow is a variable to allow testing with fixed timestamps.
var timeNow = time.Now

// Envelope wraps a payload with metadata. It is an ordinary event type:
// subscribers of Envelope[T] receive envelopes of that payload type, and
// metadata-based filters (FilterBySource, FilterByCorrelation) can narrow
// delivery further.
type Envelope[T any] struct {
	Payload T
	Meta    Metadata
}

// NewEnvelope creates an envelope with a fresh id and timestamp.
func NewEnvelope[T any](payload T, source string) Envelope[T] {
	return Envelope[T]{
		Payload: payload,
		Meta: Metadata{
			ID:        uuid.NewString(),
			Timestamp: timeNow(),
			Source:    source,
		},
	}
}

// WithCorrelation returns a copy of the envelope with the correlation id set.
func (e Envelope[T]) WithCorrelation(correlationID string) Envelope[T] {
	e.Meta.CorrelationID = correlationID
	return e
}

// EventMetadata returns the envelope's metadata for type-erased handling.
func (e Envelope[T]) EventMetadata() Metadata {
	return e.Meta
}

// MetadataProvider is implemented by events that carry Metadata.
type MetadataProvider interface {
	EventMetadata() Metadata
}
