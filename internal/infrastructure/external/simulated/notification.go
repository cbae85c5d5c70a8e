package simulated

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/omcsuite/daily-delivery/internal/application/port"
)

// NotificationService logs notifications instead of delivering them. Sent
// notices are retained so tests can assert on them.
type NotificationService struct {
	mu      sync.Mutex
	logger  *zap.Logger
	offline bool

	Requests []*port.ApprovalRequestNotice
	Actions  []*port.ApprovalActionNotice
}

// NewNotificationService creates a log-only notification adapter
func NewNotificationService(logger *zap.Logger) *NotificationService {
	return &NotificationService{logger: logger}
}

// SetOffline toggles the simulated outage state
func (s *NotificationService) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = offline
}

// SendApprovalRequest records and logs an approval request notice
func (s *NotificationService) SendApprovalRequest(ctx context.Context, notice *port.ApprovalRequestNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return port.ErrUnavailable
	}

	s.Requests = append(s.Requests, notice)
	s.logger.Info("approval request notification",
		zap.String("instance_id", notice.InstanceID),
		zap.String("workflow_type", notice.WorkflowType),
		zap.Strings("approvers", notice.ApproverIDs),
		zap.Float64("amount", notice.Amount))
	return nil
}

// SendApprovalAction records and logs an approval action notice
func (s *NotificationService) SendApprovalAction(ctx context.Context, notice *port.ApprovalActionNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return port.ErrUnavailable
	}

	s.Actions = append(s.Actions, notice)
	s.logger.Info("approval action notification",
		zap.String("instance_id", notice.InstanceID),
		zap.String("action", notice.Action),
		zap.String("status", notice.CurrentStatus))
	return nil
}

var _ port.NotificationService = (*NotificationService)(nil)
