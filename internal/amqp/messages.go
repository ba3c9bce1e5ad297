package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published on the transaction queue.
const (
	EventUpsert = "upsert"
	EventDelete = "delete"
)

// TransactionEvent tells the sync worker that a transaction changed.
// It carries only the id and kind; the worker fetches the full row from
// the database, so a stale message can never overwrite newer data.
type TransactionEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(id, kind string) *TransactionEvent {
	return &TransactionEvent{
		ID:        id,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
