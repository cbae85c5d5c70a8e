package simulated

import (
	"context"
	"sync"

	"github.com/omcsuite/daily-delivery/internal/application/port"
)

// FleetService simulates the transporter fleet registry. Pairings are
// registered programmatically; unknown vehicles validate as matched so the
// check stays advisory.
type FleetService struct {
	mu       sync.RWMutex
	pairings map[string]string
}

// NewFleetService creates an empty simulated fleet registry
func NewFleetService() *FleetService {
	return &FleetService{pairings: make(map[string]string)}
}

// RegisterPairing records the driver assigned to a vehicle
func (s *FleetService) RegisterPairing(vehicleRegistration, driverRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairings[vehicleRegistration] = driverRef
}

// ValidateVehicleDriver reports whether the driver is assigned to the
// vehicle.
func (s *FleetService) ValidateVehicleDriver(ctx context.Context, vehicleRegistration, driverRef string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assigned, known := s.pairings[vehicleRegistration]
	if !known {
		return true, nil
	}
	return assigned == driverRef, nil
}

var _ port.FleetService = (*FleetService)(nil)
