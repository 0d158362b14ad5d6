package strategy

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCostStrategy struct {
	name string
}

func (s *mockCostStrategy) Name() string { return s.name }

func (s *mockCostStrategy) Consume(ctx context.Context, productID uuid.UUID, lots []*inventory.CostLot, needBase int64) (inventory.ConsumptionResult, error) {
	return inventory.ConsumptionResult{}, nil
}

func TestStrategyRegistry_RegisterCostStrategy(t *testing.T) {
	r := NewStrategyRegistry()
	require.NoError(t, r.RegisterCostStrategy(&mockCostStrategy{name: "a"}))

	err := r.RegisterCostStrategy(&mockCostStrategy{name: "a"})
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}

func TestStrategyRegistry_GetCostStrategy(t *testing.T) {
	r := NewStrategyRegistry()
	_, err := r.GetCostStrategy("")
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	require.NoError(t, r.RegisterCostStrategy(&mockCostStrategy{name: "a"}))
	assert.True(t, errors.Is(r.SetDefaultCost("missing"), shared.ErrNotFound))
	require.NoError(t, r.SetDefaultCost("a"))

	s, err := r.GetCostStrategy("")
	require.NoError(t, err)
	assert.Equal(t, "a", s.Name())

	_, err = r.GetCostStrategy("b")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestNewRegistryWithDefaults(t *testing.T) {
	r, err := NewRegistryWithDefaults()
	require.NoError(t, err)
	assert.Equal(t, []string{"fifo", "fifo_strict"}, r.ListCostStrategies())
	assert.Equal(t, "fifo", r.DefaultCost())
}

func TestStrategyRegistry_ConcurrentAccess(t *testing.T) {
	r, err := NewRegistryWithDefaults()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.GetCostStrategy("")
			assert.NoError(t, err)
			_ = r.ListCostStrategies()
		}()
	}
	wg.Wait()
}
