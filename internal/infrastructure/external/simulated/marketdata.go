package simulated

import (
	"context"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/omcsuite/daily-delivery/internal/application/port"
	"github.com/omcsuite/daily-delivery/internal/domain/entity"
)

// Indicative ex-depot prices in GHS per litre, per product grade
var referencePrices = map[string]float64{
	entity.ProductPMS:        6.50,
	entity.ProductAGO:        6.80,
	entity.ProductIFO:        5.20,
	entity.ProductLPG:        8.50,
	entity.ProductKerosene:   5.80,
	entity.ProductLubricants: 15.00,
}

const defaultReferencePrice = 6.00

// creditApprovalRate is the share of simulated credit checks that pass
const creditApprovalRate = 0.9

// MarketDataService simulates the pricing feed and the credit bureau
type MarketDataService struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *zap.Logger
}

// MarketDataOption configures the simulated market data service
type MarketDataOption func(*MarketDataService)

// WithRandSource fixes the randomness source, for deterministic tests
func WithRandSource(src rand.Source) MarketDataOption {
	return func(s *MarketDataService) {
		s.rng = rand.New(src)
	}
}

// NewMarketDataService creates a simulated market data adapter
func NewMarketDataService(logger *zap.Logger, opts ...MarketDataOption) *MarketDataService {
	s := &MarketDataService{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReferencePrice returns the indicative price for a product grade
func (s *MarketDataService) ReferencePrice(ctx context.Context, productType string) (float64, error) {
	if price, ok := referencePrices[productType]; ok {
		return price, nil
	}
	return defaultReferencePrice, nil
}

// CheckCreditLimit approves most requests; a fixed share fails to exercise
// the credit warning path.
func (s *MarketDataService) CheckCreditLimit(ctx context.Context, customerID string, amount float64) (bool, error) {
	approved := s.roll() < creditApprovalRate

	s.logger.Debug("simulated credit check",
		zap.String("customer_id", customerID),
		zap.Float64("amount", amount),
		zap.Bool("approved", approved))

	return approved, nil
}

func (s *MarketDataService) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng != nil {
		return s.rng.Float64()
	}
	return rand.Float64()
}

var _ port.MarketDataService = (*MarketDataService)(nil)
