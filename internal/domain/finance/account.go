package finance

import (
	"strings"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
)

// AccountType distinguishes cash drawers from bank accounts
type AccountType string

const (
	AccountTypeCash AccountType = "CASH"
	AccountTypeBank AccountType = "BANK"
)

// IsValid returns true if the account type is known
func (t AccountType) IsValid() bool {
	return t == AccountTypeCash || t == AccountTypeBank
}

// Account is a cash or bank account that payments and finance entries post to
type Account struct {
	shared.TenantAggregateRoot
	Name   string
	Type   AccountType
	Active bool
}

// NewAccount creates a new active account
func NewAccount(tenantID uuid.UUID, name string, accountType AccountType) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "account name must be 1-100 characters")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "account type must be CASH or BANK")
	}
	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Type:                accountType,
		Active:              true,
	}, nil
}
