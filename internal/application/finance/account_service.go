package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountService manages cash and bank accounts
type AccountService struct {
	repo finance.AccountRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(repo finance.AccountRepository) *AccountService {
	return &AccountService{repo: repo}
}

// CreateAccount creates a new active account
func (s *AccountService) CreateAccount(ctx context.Context, tenantID uuid.UUID, input CreateAccountInput) (*AccountResponse, error) {
	account, err := finance.NewAccount(tenantID, input.Name, finance.AccountType(input.Type))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, account); err != nil {
		return nil, err
	}
	logger.L(ctx).Info("Account created",
		zap.String("account_id", account.ID.String()),
		zap.String("type", string(account.Type)),
	)
	resp := ToAccountResponse(account)
	return &resp, nil
}

// ListAccounts lists the tenant's accounts
func (s *AccountService) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]AccountResponse, error) {
	accounts, err := s.repo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return out, nil
}

// InstallmentResponse is one row of an installment schedule
type InstallmentResponse struct {
	Number  int             `json:"number"`
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
}

// PreviewInstallments splits a total without persisting anything
func PreviewInstallments(input InstallmentPreviewInput, defaultIntervalDays int, now time.Time) ([]InstallmentResponse, error) {
	if input.Total.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "total cannot be negative")
	}
	interval := input.IntervalDays
	if interval <= 0 {
		interval = defaultIntervalDays
	}
	start := now
	if input.StartDate != nil && !input.StartDate.IsZero() {
		start = *input.StartDate
	}
	schedule := finance.GenerateInstallments(input.Total, input.Count, interval, start)
	out := make([]InstallmentResponse, len(schedule))
	for i, inst := range schedule {
		out[i] = InstallmentResponse{Number: inst.Number, DueDate: inst.DueDate, Amount: inst.Amount}
	}
	return out, nil
}
