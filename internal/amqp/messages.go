package amqp

import (
	"encoding/json"
	"time"

	"expensealert/internal/core"
)

// BudgetAlertMessage is the wire form of a budget alert handed to the
// external notification surface. Alerts are transient: the message is
// the only place one ever leaves the process.
type BudgetAlertMessage struct {
	Category   string    `json:"category"`
	TotalSpent float64   `json:"total_spent"`
	Limit      float64   `json:"budget_limit"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewBudgetAlertMessage builds the wire message for an alert.
func NewBudgetAlertMessage(alert core.BudgetAlert) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		Category:   alert.Category,
		TotalSpent: alert.TotalSpent,
		Limit:      alert.Limit,
		Message:    alert.Message,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
