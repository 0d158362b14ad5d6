package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is a buyer that can hold receivables
type Customer struct {
	shared.TenantAggregateRoot
	Name     string
	Document string // CPF/CNPJ or any national id
	Phone    string
	Email    string
	Status   CustomerStatus
}

// NewCustomer creates a new active customer
func NewCustomer(tenantID uuid.UUID, name, document string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "customer name must be 1-200 characters")
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Document:            strings.TrimSpace(document),
		Status:              CustomerStatusActive,
	}, nil
}

// SetContact updates phone and email
func (c *Customer) SetContact(phone, email string) {
	c.Phone = strings.TrimSpace(phone)
	c.Email = strings.TrimSpace(email)
	c.UpdatedAt = time.Now()
}
