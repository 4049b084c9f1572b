package amqp

import (
	"encoding/json"
	"time"

	"github.com/isdelr/despesas-be/internal/models"
)

// AuditMessage is the wire form of an audit entry.
type AuditMessage struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAuditMessage converts an audit entry to its message form.
func NewAuditMessage(entry models.AuditEntry) *AuditMessage {
	return &AuditMessage{
		ID:        entry.ID,
		AccountID: entry.AccountID,
		Action:    entry.Action,
		Detail:    entry.Detail,
		Timestamp: entry.CreatedAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *AuditMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RoutingKey returns the topic routing key for an audit action.
func RoutingKey(action string) string {
	if action == "" {
		return "audit.unknown"
	}
	return "audit." + action
}
