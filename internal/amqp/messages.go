package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// EventKind says what happened to the transaction.
type EventKind string

const (
	TransactionCreated EventKind = "created"
	TransactionDeleted EventKind = "deleted"
)

// TransactionEvent carries the whole transaction so the consumer never has
// to read it back (a deleted one no longer exists).
type TransactionEvent struct {
	ID          string           `json:"id"`
	Kind        EventKind        `json:"kind"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewTransactionEvent stamps a new event with a random ID.
func NewTransactionEvent(kind EventKind, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		ID:          uuid.NewString(),
		Kind:        kind,
		Transaction: tx,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and checks an event body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		return nil, fmt.Errorf("event id: %w", err)
	}
	switch e.Kind {
	case TransactionCreated, TransactionDeleted:
	default:
		return nil, fmt.Errorf("%w: event kind %q", core.ErrUnknownEnumVariant, e.Kind)
	}
	return &e, nil
}
