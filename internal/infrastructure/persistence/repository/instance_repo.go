package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/omcsuite/daily-delivery/internal/application/port"
	"github.com/omcsuite/daily-delivery/internal/domain/entity"
	"github.com/omcsuite/daily-delivery/internal/domain/workflow"
	"github.com/omcsuite/daily-delivery/internal/infrastructure/persistence/sqlite"
)

// ErrVersionConflict is returned by Save when the stored instance was
// modified since it was loaded.
var ErrVersionConflict = fmt.Errorf("workflow instance was modified concurrently")

const instanceColumns = `
	instance_id, workflow_id, workflow_type, source_document_id, source_document_type,
	requested_by, requested_at, current_step_id, current_step_order,
	status, priority, approval_history, attachments, metadata,
	sla_deadline, escalation_level, compliance_status, delegated_approver_id, version`

// InstanceRepository implements port.InstanceRepository. The history,
// attachment, metadata and compliance aggregates are stored as JSON
// documents on the instance row; they are always read and written as a
// whole with the instance.
type InstanceRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewInstanceRepository creates a new workflow instance repository
func NewInstanceRepository(db *sqlite.DB, logger *zap.Logger) port.InstanceRepository {
	return &InstanceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new workflow instance at version 1
func (r *InstanceRepository) Create(ctx context.Context, instance *entity.WorkflowInstance) error {
	history, attachments, metadata, compliance, err := marshalAggregates(instance)
	if err != nil {
		return err
	}

	instance.Version = 1

	query := `
		INSERT INTO workflow_instances (` + instanceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		instance.InstanceID, instance.WorkflowID, instance.WorkflowType,
		instance.SourceDocumentID, instance.SourceDocumentType,
		instance.RequestedBy, instance.RequestedAt,
		instance.CurrentStepID, instance.CurrentStepOrder,
		instance.Status, instance.Priority,
		history, attachments, metadata,
		instance.SLADeadline, instance.EscalationLevel, compliance,
		instance.DelegatedApproverID, instance.Version,
	)
	if err != nil {
		r.logger.Error("Failed to create instance", zap.String("instance_id", instance.InstanceID), zap.Error(err))
		return fmt.Errorf("failed to create instance: %w", err)
	}
	return nil
}

// GetByID retrieves a workflow instance by ID. Returns nil when not found.
func (r *InstanceRepository) GetByID(ctx context.Context, instanceID string) (*entity.WorkflowInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM workflow_instances WHERE instance_id = ?`

	instance, err := r.scanInstance(r.db.Executor(ctx).QueryRowContext(ctx, query, instanceID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get instance", zap.String("instance_id", instanceID), zap.Error(err))
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}
	return instance, nil
}

// Save persists the full instance state. The update only applies when the
// stored version still matches the loaded one; the version then advances.
func (r *InstanceRepository) Save(ctx context.Context, instance *entity.WorkflowInstance) error {
	history, attachments, metadata, compliance, err := marshalAggregates(instance)
	if err != nil {
		return err
	}

	query := `
		UPDATE workflow_instances SET
			current_step_id = ?, current_step_order = ?,
			status = ?, priority = ?,
			approval_history = ?, attachments = ?, metadata = ?,
			sla_deadline = ?, escalation_level = ?, compliance_status = ?,
			delegated_approver_id = ?,
			version = version + 1
		WHERE instance_id = ? AND version = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		instance.CurrentStepID, instance.CurrentStepOrder,
		instance.Status, instance.Priority,
		history, attachments, metadata,
		instance.SLADeadline, instance.EscalationLevel, compliance,
		instance.DelegatedApproverID,
		instance.InstanceID, instance.Version,
	)
	if err != nil {
		r.logger.Error("Failed to save instance", zap.String("instance_id", instance.InstanceID), zap.Error(err))
		return fmt.Errorf("failed to save instance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: instance %s version %d", ErrVersionConflict, instance.InstanceID, instance.Version)
	}

	instance.Version++
	return nil
}

// ListPending retrieves active instances, optionally filtered by type
func (r *InstanceRepository) ListPending(ctx context.Context, workflowType string) ([]*entity.WorkflowInstance, error) {
	query := `
		SELECT ` + instanceColumns + `
		FROM workflow_instances
		WHERE status IN (?, ?) AND (? = '' OR workflow_type = ?)
		ORDER BY requested_at ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query,
		workflow.StatePending.String(), workflow.StateInProgress.String(),
		workflowType, workflowType,
	)
	if err != nil {
		r.logger.Error("Failed to list pending instances", zap.Error(err))
		return nil, fmt.Errorf("failed to list pending instances: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListOverdue retrieves active instances whose SLA deadline has passed
func (r *InstanceRepository) ListOverdue(ctx context.Context, before time.Time) ([]*entity.WorkflowInstance, error) {
	query := `
		SELECT ` + instanceColumns + `
		FROM workflow_instances
		WHERE status IN (?, ?) AND sla_deadline <= ?
		ORDER BY sla_deadline ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query,
		workflow.StatePending.String(), workflow.StateInProgress.String(), before,
	)
	if err != nil {
		r.logger.Error("Failed to list overdue instances", zap.Error(err))
		return nil, fmt.Errorf("failed to list overdue instances: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *InstanceRepository) scanInstance(row rowScanner) (*entity.WorkflowInstance, error) {
	var instance entity.WorkflowInstance
	var history, attachments, metadata, compliance []byte

	err := row.Scan(
		&instance.InstanceID, &instance.WorkflowID, &instance.WorkflowType,
		&instance.SourceDocumentID, &instance.SourceDocumentType,
		&instance.RequestedBy, &instance.RequestedAt,
		&instance.CurrentStepID, &instance.CurrentStepOrder,
		&instance.Status, &instance.Priority,
		&history, &attachments, &metadata,
		&instance.SLADeadline, &instance.EscalationLevel, &compliance,
		&instance.DelegatedApproverID, &instance.Version,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalAggregate(history, &instance.ApprovalHistory); err != nil {
		return nil, fmt.Errorf("corrupt approval history on %s: %w", instance.InstanceID, err)
	}
	if err := unmarshalAggregate(attachments, &instance.Attachments); err != nil {
		return nil, fmt.Errorf("corrupt attachments on %s: %w", instance.InstanceID, err)
	}
	if err := unmarshalAggregate(metadata, &instance.Metadata); err != nil {
		return nil, fmt.Errorf("corrupt metadata on %s: %w", instance.InstanceID, err)
	}
	if err := unmarshalAggregate(compliance, &instance.ComplianceStatus); err != nil {
		return nil, fmt.Errorf("corrupt compliance status on %s: %w", instance.InstanceID, err)
	}

	return &instance, nil
}

func (r *InstanceRepository) collect(rows *sql.Rows) ([]*entity.WorkflowInstance, error) {
	var instances []*entity.WorkflowInstance
	for rows.Next() {
		instance, err := r.scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		instances = append(instances, instance)
	}
	return instances, rows.Err()
}

func marshalAggregates(instance *entity.WorkflowInstance) (history, attachments, metadata, compliance []byte, err error) {
	if history, err = json.Marshal(instance.ApprovalHistory); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal approval history: %w", err)
	}
	if attachments, err = json.Marshal(instance.Attachments); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal attachments: %w", err)
	}
	if metadata, err = json.Marshal(instance.Metadata); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal metadata: %w", err)
	}
	if compliance, err = json.Marshal(instance.ComplianceStatus); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal compliance status: %w", err)
	}
	return history, attachments, metadata, compliance, nil
}

func unmarshalAggregate(data []byte, target interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
