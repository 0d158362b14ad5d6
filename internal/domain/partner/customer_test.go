package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer(uuid.New(), "  Maria Souza ", "123.456.789-00")
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", c.Name)
	assert.Equal(t, CustomerStatusActive, c.Status)

	c.SetContact(" 11 99999-0000 ", "maria@example.com")
	assert.Equal(t, "11 99999-0000", c.Phone)
	assert.Equal(t, 1, c.Version)

	_, err = NewCustomer(uuid.New(), "   ", "")
	assert.Error(t, err)
}
