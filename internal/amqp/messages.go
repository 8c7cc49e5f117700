package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ReceiptUploadedMessage announces a new upload. The worker fetches the
// parsed receipt itself; the message carries only identifiers.
type ReceiptUploadedMessage struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReceiptUploadedMessage(id, label string) *ReceiptUploadedMessage {
	return &ReceiptUploadedMessage{ID: id, Label: label, Timestamp: time.Now().UTC()}
}

func (m *ReceiptUploadedMessage) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return errors.New("missing receipt id")
	}
	return nil
}

func (m *ReceiptUploadedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReceiptUploadedMessageFromJSON decodes and validates a message body.
func ReceiptUploadedMessageFromJSON(data []byte) (*ReceiptUploadedMessage, error) {
	var msg ReceiptUploadedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
