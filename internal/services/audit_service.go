package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/despesas-be/internal/database"
	"github.com/isdelr/despesas-be/internal/models"
	"github.com/rs/zerolog/log"
)

// AuditListLimit caps how many entries AuditService.GetRecentEntries returns.
const AuditListLimit = 50

// Audit actions recorded after successful mutations.
const (
	ActionSignup         = "account.signup"
	ActionCategoryCreate = "category.create"
	ActionCategoryUpdate = "category.update"
	ActionCategoryDelete = "category.delete"
	ActionExpenseCreate  = "expense.create"
	ActionExpenseUpdate  = "expense.update"
	ActionExpenseDelete  = "expense.delete"
)

// AuditRecorder appends audit entries. Record never reports failure.
type AuditRecorder interface {
	Record(ctx context.Context, accountID, action, detail string)
}

// AuditServiceProvider defines the interface for audit services.
type AuditServiceProvider interface {
	AuditRecorder
	GetRecentEntries(ctx context.Context, accountID string) ([]models.AuditEntry, error)
}

// AuditPublisher forwards recorded entries to an external sink.
type AuditPublisher interface {
	PublishAudit(ctx context.Context, entry models.AuditEntry) error
}

// AuditService keeps an append-only log of mutating actions. Writing is
// best-effort: failures are logged and swallowed.
type AuditService struct {
	db        *sql.DB
	publisher AuditPublisher
	now       func() time.Time
}

// NewAuditService creates a new AuditService. publisher may be nil.
func NewAuditService(db *sql.DB, publisher AuditPublisher) *AuditService {
	return &AuditService{db: db, publisher: publisher, now: time.Now}
}

// Record appends an entry for accountID.
func (s *AuditService) Record(ctx context.Context, accountID, action, detail string) {
	entry := models.AuditEntry{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Action:    action,
		Detail:    detail,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_log (id, account_id, action, detail, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.AccountID, entry.Action, entry.Detail, database.FormatTime(entry.CreatedAt),
	)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Str("action", action).Msg("Failed to write audit entry")
		return
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAudit(ctx, entry); err != nil {
			log.Warn().Err(err).Str("audit_id", entry.ID).Msg("Failed to publish audit entry")
		}
	}
}

// GetRecentEntries returns the newest entries for accountID, at most AuditListLimit.
func (s *AuditService) GetRecentEntries(ctx context.Context, accountID string) ([]models.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, action, detail, created_at FROM audit_log
		WHERE account_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, accountID, AuditListLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var entry models.AuditEntry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Action, &entry.Detail, &createdAt); err != nil {
			return nil, err
		}
		if entry.CreatedAt, err = database.ParseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
