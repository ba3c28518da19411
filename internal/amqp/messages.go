package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by expense change events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ExpenseEventMessage announces a change to the expense collection.
// Consumers re-read the authoritative collection wholesale, so the
// payload only identifies what changed.
type ExpenseEventMessage struct {
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEventMessage creates an event for one expense mutation.
func NewExpenseEventMessage(action, id, userID string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Action:    action,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventMessageFromJSON creates a message from JSON bytes.
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
