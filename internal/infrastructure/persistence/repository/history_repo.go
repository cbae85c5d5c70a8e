package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/omcsuite/daily-delivery/internal/application/port"
	"github.com/omcsuite/daily-delivery/internal/domain/entity"
	"github.com/omcsuite/daily-delivery/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository. It is the query-side
// copy of the approval trail; the instance row carries the authoritative
// aggregate.
type HistoryRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new approval history repository
func NewHistoryRepository(db *sqlite.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append records one approval action
func (r *HistoryRepository) Append(ctx context.Context, instanceID string, entry *entity.ApprovalHistoryEntry) error {
	attachments, err := json.Marshal(entry.Attachments)
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}

	query := `
		INSERT INTO approval_history (
			entry_id, instance_id, step_id, step_name,
			approver_id, approver_name, action, action_date,
			comments, attachments, delegated_to, original_approver_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		entry.EntryID, instanceID, entry.StepID, entry.StepName,
		entry.ApproverID, entry.ApproverName, entry.Action, entry.ActionDate,
		entry.Comments, string(attachments), entry.DelegatedTo, entry.OriginalApproverID,
	)
	if err != nil {
		r.logger.Error("Failed to append history entry",
			zap.String("instance_id", instanceID), zap.Error(err))
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// GetByInstanceID retrieves the approval trail of one instance in action
// order.
func (r *HistoryRepository) GetByInstanceID(ctx context.Context, instanceID string) ([]*entity.ApprovalHistoryEntry, error) {
	query := `
		SELECT entry_id, step_id, step_name,
			approver_id, approver_name, action, action_date,
			comments, attachments, delegated_to, original_approver_id
		FROM approval_history
		WHERE instance_id = ?
		ORDER BY action_date ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, instanceID)
	if err != nil {
		r.logger.Error("Failed to get history",
			zap.String("instance_id", instanceID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ApprovalHistoryEntry
	for rows.Next() {
		var entry entity.ApprovalHistoryEntry
		var attachments sql.NullString
		var delegatedTo, originalApprover sql.NullString

		err := rows.Scan(
			&entry.EntryID, &entry.StepID, &entry.StepName,
			&entry.ApproverID, &entry.ApproverName, &entry.Action, &entry.ActionDate,
			&entry.Comments, &attachments, &delegatedTo, &originalApprover,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if attachments.Valid && attachments.String != "" {
			if err := json.Unmarshal([]byte(attachments.String), &entry.Attachments); err != nil {
				return nil, fmt.Errorf("corrupt attachments on entry %s: %w", entry.EntryID, err)
			}
		}
		entry.DelegatedTo = delegatedTo.String
		entry.OriginalApproverID = originalApprover.String

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
