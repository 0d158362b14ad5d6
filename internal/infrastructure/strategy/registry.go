package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/shared"
)

// StrategyRegistry manages cost strategy registrations
type StrategyRegistry struct {
	mu             sync.RWMutex
	costStrategies map[string]inventory.CostConsumptionStrategy
	defaultCost    string
}

// NewStrategyRegistry creates a new strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		costStrategies: make(map[string]inventory.CostConsumptionStrategy),
	}
}

// RegisterCostStrategy registers a cost consumption strategy
func (r *StrategyRegistry) RegisterCostStrategy(s inventory.CostConsumptionStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.costStrategies[name]; exists {
		return fmt.Errorf("%w: cost strategy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.costStrategies[name] = s
	return nil
}

// GetCostStrategy returns a cost strategy by name, or the default if name is empty
func (r *StrategyRegistry) GetCostStrategy(name string) (inventory.CostConsumptionStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultCost
		if name == "" {
			return nil, fmt.Errorf("%w: no default cost strategy set", shared.ErrNotFound)
		}
	}

	s, exists := r.costStrategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: cost strategy '%s' not found", shared.ErrNotFound, name)
	}
	return s, nil
}

// ListCostStrategies returns all registered cost strategy names
func (r *StrategyRegistry) ListCostStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.costStrategies))
	for name := range r.costStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetDefaultCost sets the strategy returned for an empty name
func (r *StrategyRegistry) SetDefaultCost(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.costStrategies[name]; !exists {
		return fmt.Errorf("%w: cost strategy '%s' not found", shared.ErrNotFound, name)
	}
	r.defaultCost = name
	return nil
}

// DefaultCost returns the default cost strategy name
func (r *StrategyRegistry) DefaultCost() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultCost
}
