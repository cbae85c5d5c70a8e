package port

import (
	"context"
	"time"

	"github.com/omcsuite/daily-delivery/internal/domain/entity"
)

// DeliveryRepository defines persistence operations for DailyDelivery
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *entity.DailyDelivery) error
	GetByID(ctx context.Context, id string) (*entity.DailyDelivery, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.DailyDelivery, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetApprovalWorkflow(ctx context.Context, id, workflowInstanceID string) error
	List(ctx context.Context, limit, offset int) ([]*entity.DailyDelivery, error)
}

// InstanceRepository defines persistence operations for WorkflowInstance.
// Save enforces optimistic concurrency: it fails when the stored version no
// longer matches the version the instance was loaded with.
type InstanceRepository interface {
	Create(ctx context.Context, instance *entity.WorkflowInstance) error
	GetByID(ctx context.Context, instanceID string) (*entity.WorkflowInstance, error)
	Save(ctx context.Context, instance *entity.WorkflowInstance) error
	ListPending(ctx context.Context, workflowType string) ([]*entity.WorkflowInstance, error)
	ListOverdue(ctx context.Context, before time.Time) ([]*entity.WorkflowInstance, error)
}

// HistoryRepository defines persistence operations for ApprovalHistoryEntry
type HistoryRepository interface {
	Append(ctx context.Context, instanceID string, entry *entity.ApprovalHistoryEntry) error
	GetByInstanceID(ctx context.Context, instanceID string) ([]*entity.ApprovalHistoryEntry, error)
}

// TransactionManager runs a function inside one atomic unit of work
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
