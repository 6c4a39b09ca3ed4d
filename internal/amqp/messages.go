package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrMalformedMessage marks a message that can never be processed.
// Handlers wrap it to tell the consumer to drop the delivery instead of
// requeueing it forever.
var ErrMalformedMessage = errors.New("malformed message")

// ExpenseAppliedMessage carries the spend delta of one committed expense
// write. Deltas are signed: a create is +amount, a delete is -amount,
// and an update is a pair of messages (-old, +new). The analytics worker
// folds them into the matching (user, category, month, year) cell.
type ExpenseAppliedMessage struct {
	UserID     string    `json:"userId"`
	Category   string    `json:"category"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
	DeltaCents int64     `json:"deltaCents"`
	Timestamp  time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseAppliedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseAppliedMessageFromJSON creates a message from JSON bytes
func ExpenseAppliedMessageFromJSON(data []byte) (*ExpenseAppliedMessage, error) {
	var msg ExpenseAppliedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
