// Package simulated provides in-process stand-ins for the external systems
// the engine integrates with: regulator registries, the approver directory,
// notifications, market data and fleet management. Each adapter mimics the
// latency-free happy path and degrades to port.ErrUnavailable when asked to.
package simulated

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/omcsuite/daily-delivery/internal/application/port"
)

// ComplianceService simulates the NPA permit and GRA customs registries
type ComplianceService struct {
	mu        sync.RWMutex
	offline   bool
	logger    *zap.Logger
	permitTTL time.Duration
}

// NewComplianceService creates a simulated regulator gateway
func NewComplianceService(logger *zap.Logger) *ComplianceService {
	return &ComplianceService{
		logger:    logger,
		permitTTL: 365 * 24 * time.Hour,
	}
}

// SetOffline toggles the simulated outage state
func (s *ComplianceService) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = offline
}

func (s *ComplianceService) unavailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offline
}

// ValidateNPAPermit accepts permits carrying the NPA prefix; everything else
// is reported invalid.
func (s *ComplianceService) ValidateNPAPermit(ctx context.Context, permitNumber, productType string, quantity float64) (*port.PermitValidation, error) {
	if s.unavailable() {
		return nil, port.ErrUnavailable
	}

	valid := strings.HasPrefix(strings.ToUpper(permitNumber), "NPA-")
	expiry := time.Now().Add(s.permitTTL)

	s.logger.Debug("simulated NPA permit check",
		zap.String("permit", permitNumber),
		zap.String("product", productType),
		zap.Float64("quantity", quantity),
		zap.Bool("valid", valid))

	return &port.PermitValidation{
		IsValid:    valid,
		PermitType: "DELIVERY",
		ExpiryDate: &expiry,
	}, nil
}

// ValidateCustomsEntry accepts entries carrying the customs prefix
func (s *ComplianceService) ValidateCustomsEntry(ctx context.Context, entryNumber string) (*port.CustomsValidation, error) {
	if s.unavailable() {
		return nil, port.ErrUnavailable
	}

	valid := strings.HasPrefix(strings.ToUpper(entryNumber), "CE-")
	entryDate := time.Now().AddDate(0, 0, -7)

	return &port.CustomsValidation{
		IsValid:   valid,
		EntryDate: &entryDate,
	}, nil
}

var _ port.ComplianceService = (*ComplianceService)(nil)
