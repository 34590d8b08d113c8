package amqp

import (
	"encoding/json"
	"time"
)

// TransactionMessage is an inbound transaction from an external feed
// (bank export bridges, bots). Amount is a decimal string so producers
// never deal in cents; the worker parses and validates it before the
// record is stored.
type TransactionMessage struct {
	Date        string    `json:"date"` // YYYY-MM-DD
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Type        string    `json:"type"` // income or expense
	Source      string    `json:"source,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTransactionMessage creates a message stamped with the current time
func NewTransactionMessage(date, amount, category, description, flowType, source string) *TransactionMessage {
	return &TransactionMessage{
		Date:        date,
		Amount:      amount,
		Category:    category,
		Description: description,
		Type:        flowType,
		Source:      source,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionMessageFromJSON creates a message from JSON bytes
func TransactionMessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
