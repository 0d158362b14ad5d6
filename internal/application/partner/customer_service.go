package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/partner"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// CustomerService handles customers
type CustomerService struct {
	customerRepo partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, tenantID uuid.UUID, input CreateCustomerInput) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(tenantID, input.Name, input.Document)
	if err != nil {
		return nil, err
	}
	if input.Phone != "" || input.Email != "" {
		customer.SetContact(input.Phone, input.Email)
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Customer created", zap.String("customer_id", customer.ID.String()))
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetCustomer returns a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// ListCustomers returns a page of customers ordered by name unless told otherwise
func (s *CustomerService) ListCustomers(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "name", "asc"
	}
	customers, total, err := s.customerRepo.FindAllForTenant(ctx, tenantID, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}.Normalize())
	if err != nil {
		return nil, 0, err
	}
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out, total, nil
}
