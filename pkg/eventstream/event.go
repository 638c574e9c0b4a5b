// Package eventstream defines the transport-neutral events verde emits after
// an exchange is persisted.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/verde/pkg/exchange"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeExchangeRecorded is emitted after an exchange is persisted.
	EventTypeExchangeRecorded = "verde.exchange.recorded"
)

// ExchangeRecordedEvent is the payload published for every persisted exchange.
type ExchangeRecordedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	// Resolver names the step of the resolution chain that produced the
	// answer (e.g. "search_intent" or "search_fallback").
	Resolver string `json:"resolver"`

	Exchange exchange.Exchange `json:"exchange"`
}

// NewExchangeRecordedEvent builds a v1 event for ex with a fresh event id.
func NewExchangeRecordedEvent(ex *exchange.Exchange, resolver string, now time.Time) *ExchangeRecordedEvent {
	return &ExchangeRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeExchangeRecorded,
		EventID:       uuid.NewString(),
		EmittedAt:     now.UTC(),
		Resolver:      resolver,
		Exchange:      *ex,
	}
}

// Key returns the partitioning key for the event, the question hash, so that
// every revision of a question lands on the same partition.
func (e *ExchangeRecordedEvent) Key() string {
	return e.Exchange.QuestionHash
}
