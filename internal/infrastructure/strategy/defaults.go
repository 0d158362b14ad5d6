package strategy

import (
	"github.com/retail/backoffice/internal/infrastructure/strategy/cost"
)

// NewRegistryWithDefaults creates a registry holding the lenient and strict
// FIFO strategies, with lenient FIFO as the default
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	fifo := cost.NewFIFOCostStrategy()
	if err := r.RegisterCostStrategy(fifo); err != nil {
		return nil, err
	}
	if err := r.RegisterCostStrategy(cost.NewStrictFIFOCostStrategy()); err != nil {
		return nil, err
	}

	if err := r.SetDefaultCost(fifo.Name()); err != nil {
		return nil, err
	}
	return r, nil
}
