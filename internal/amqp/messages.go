package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// RecordChangedMessage announces a committed write. Consumers re-read
// whatever they need from the store.
type RecordChangedMessage struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangedMessage(entity, id, operation string) *RecordChangedMessage {
	return &RecordChangedMessage{
		Entity:    entity,
		ID:        id,
		Operation: operation,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes a change notification. Entity and
// id are required.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Entity == "" || msg.ID == "" {
		return nil, errors.New("record change message needs entity and id")
	}
	return &msg, nil
}

// BudgetAlertMessage carries the current set of budget alerts.
type BudgetAlertMessage struct {
	Alerts      []string  `json:"alerts"`
	GeneratedAt time.Time `json:"generated_at"`
}

func NewBudgetAlertMessage(alerts []string, generatedAt time.Time) *BudgetAlertMessage {
	return &BudgetAlertMessage{Alerts: alerts, GeneratedAt: generatedAt.UTC()}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
