package models

import "time"

// AuditEntry is an immutable record of a mutating action taken by an account.
type AuditEntry struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Action    string    `json:"action"` // e.g., "expense.create", "category.delete"
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"timestamp"`
}
