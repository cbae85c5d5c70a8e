package simulated

import (
	"context"
	"fmt"
	"sync"

	"github.com/omcsuite/daily-delivery/internal/application/port"
)

// DirectoryService simulates the HR directory used to resolve approvers.
// Approvers are registered programmatically; an empty directory authorizes
// everyone, which keeps local development friction-free.
type DirectoryService struct {
	mu        sync.RWMutex
	approvers map[string]*port.Approver
	stepACL   map[string]map[string]bool
}

// NewDirectoryService creates an empty simulated directory
func NewDirectoryService() *DirectoryService {
	return &DirectoryService{
		approvers: make(map[string]*port.Approver),
		stepACL:   make(map[string]map[string]bool),
	}
}

// RegisterApprover adds an approver to the directory
func (s *DirectoryService) RegisterApprover(a *port.Approver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approvers[a.UserID] = a
}

// GrantStep authorizes an approver for a workflow step
func (s *DirectoryService) GrantStep(approverID, workflowID, stepID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := workflowID + "/" + stepID
	if s.stepACL[key] == nil {
		s.stepACL[key] = make(map[string]bool)
	}
	s.stepACL[key][approverID] = true
}

// GetApprover resolves an approver identity
func (s *DirectoryService) GetApprover(ctx context.Context, approverID string) (*port.Approver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.approvers[approverID]; ok {
		return a, nil
	}
	if len(s.approvers) == 0 {
		return &port.Approver{
			UserID: approverID,
			Name:   approverID,
			Email:  fmt.Sprintf("%s@example.test", approverID),
			Role:   "MANAGER",
		}, nil
	}
	return nil, fmt.Errorf("approver %s not found", approverID)
}

// IsAuthorizedForStep checks step authorization. With no ACL configured for
// the step every registered approver is authorized.
func (s *DirectoryService) IsAuthorizedForStep(ctx context.Context, approverID, workflowID, stepID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acl, ok := s.stepACL[workflowID+"/"+stepID]
	if !ok {
		return true, nil
	}
	return acl[approverID], nil
}

var _ port.DirectoryService = (*DirectoryService)(nil)
