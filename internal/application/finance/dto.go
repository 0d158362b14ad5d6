package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// PaymentInput is one tender of a sale or purchase
type PaymentInput struct {
	Method       string          `json:"method" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	AccountID    uuid.UUID       `json:"account_id" binding:"required"`
	CardType     string          `json:"card_type"`
	Installments int             `json:"installments" binding:"omitempty,min=1,max=48"`
	IntervalDays int             `json:"interval_days" binding:"omitempty,min=1,max=365"`
	Notes        string          `json:"notes" binding:"max=500"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID           uuid.UUID       `json:"id"`
	SaleID       *uuid.UUID      `json:"sale_id,omitempty"`
	PurchaseID   *uuid.UUID      `json:"purchase_id,omitempty"`
	ReceivableID *uuid.UUID      `json:"receivable_id,omitempty"`
	Date         time.Time       `json:"date"`
	Method       string          `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	AccountID    uuid.UUID       `json:"account_id"`
	CardType     string          `json:"card_type,omitempty"`
	Installments int             `json:"installments"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		SaleID:       p.SaleID,
		PurchaseID:   p.PurchaseID,
		ReceivableID: p.ReceivableID,
		Date:         p.Date,
		Method:       p.Method.String(),
		Amount:       p.Amount,
		AccountID:    p.AccountID,
		CardType:     p.CardType,
		Installments: p.Installments,
	}
}

// PostingResult is what posting one payment produced
type PostingResult struct {
	Payment     PaymentResponse      `json:"payment"`
	Mode        string               `json:"mode"`
	Entry       *EntryResponse       `json:"entry,omitempty"`
	Receivables []ReceivableResponse `json:"receivables,omitempty"`
}

// ReceivableResponse represents a receivable in API responses
type ReceivableResponse struct {
	ID                uuid.UUID       `json:"id"`
	SaleID            *uuid.UUID      `json:"sale_id,omitempty"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	DueDate           time.Time       `json:"due_date"`
	Amount            decimal.Decimal `json:"amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	Remaining         decimal.Decimal `json:"remaining"`
	Status            string          `json:"status"`
	Kind              string          `json:"kind"`
	InstallmentNumber int             `json:"installment_number"`
	InstallmentCount  int             `json:"installment_count"`
	Notes             string          `json:"notes,omitempty"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	Version           int             `json:"version"`
}

// ToReceivableResponse converts a domain receivable
func ToReceivableResponse(r *finance.Receivable) ReceivableResponse {
	return ReceivableResponse{
		ID:                r.ID,
		SaleID:            r.SaleID,
		CustomerID:        r.CustomerID,
		DueDate:           r.DueDate,
		Amount:            r.Amount,
		PaidAmount:        r.PaidAmount,
		Remaining:         r.Remaining(r.PaidAmount),
		Status:            r.Status.String(),
		Kind:              string(r.Kind),
		InstallmentNumber: r.InstallmentNumber,
		InstallmentCount:  r.InstallmentCount,
		Notes:             r.Notes,
		PaidAt:            r.PaidAt,
		CancelledAt:       r.CancelledAt,
		CreatedAt:         r.CreatedAt,
		Version:           r.Version,
	}
}

// SettlementResponse represents a settlement in API responses
type SettlementResponse struct {
	ID        uuid.UUID       `json:"id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
}

// ReceivableDetailResponse is a receivable with its settlements
type ReceivableDetailResponse struct {
	ReceivableResponse
	Settlements []SettlementResponse `json:"settlements"`
}

// CreateReceivableInput is an ad hoc receivable not produced by a sale
type CreateReceivableInput struct {
	CustomerID       uuid.UUID       `json:"customer_id" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	DueDate          time.Time       `json:"due_date" binding:"required"`
	Kind             string          `json:"kind"`
	InstallmentCount int             `json:"installment_count" binding:"omitempty,min=1,max=48"`
	IntervalDays     int             `json:"interval_days" binding:"omitempty,min=1,max=365"`
	Notes            string          `json:"notes" binding:"max=500"`
}

// SettleInput is money received against a receivable
type SettleInput struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	AccountID uuid.UUID       `json:"account_id" binding:"required"`
	Method    string          `json:"method" binding:"required"`
	Notes     string          `json:"notes" binding:"max=500"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// SettleResult is the outcome of a settlement
type SettleResult struct {
	Receivable ReceivableResponse `json:"receivable"`
	Settlement SettlementResponse `json:"settlement"`
	Payment    PaymentResponse    `json:"payment"`
	Entry      EntryResponse      `json:"entry"`
}

// ReceivableListFilter represents filter options for the receivable list
type ReceivableListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	SaleID     *uuid.UUID `form:"sale_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=OPEN PAID CANCELLED"`
	DueFrom    *time.Time `form:"due_from" time_format:"2006-01-02"`
	DueTo      *time.Time `form:"due_to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateEntryInput is a manual finance entry
type CreateEntryInput struct {
	Type        string          `json:"type" binding:"required"`
	AccountID   uuid.UUID       `json:"account_id" binding:"required"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Description string          `json:"description" binding:"max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DueDate     *time.Time      `json:"due_date"`
	Paid        bool            `json:"paid"`
}

// EntryResponse represents a finance entry in API responses
type EntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	AccountID   uuid.UUID       `json:"account_id"`
	PaymentID   *uuid.UUID      `json:"payment_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Status      string          `json:"status"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Version     int             `json:"version"`
}

// ToEntryResponse converts a domain entry
func ToEntryResponse(e *finance.FinanceEntry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		Type:        string(e.Type),
		CategoryID:  e.CategoryID,
		AccountID:   e.AccountID,
		PaymentID:   e.PaymentID,
		Description: e.Description,
		Amount:      e.Amount,
		DueDate:     e.DueDate,
		Status:      string(e.Status),
		PaidAt:      e.PaidAt,
		CreatedAt:   e.CreatedAt,
		Version:     e.Version,
	}
}

// CreateClosureInput closes one account for one month
type CreateClosureInput struct {
	Month          string           `json:"month" binding:"required,month"`
	AccountID      uuid.UUID        `json:"account_id" binding:"required"`
	CountedClosing *decimal.Decimal `json:"counted_closing"`
	Notes          string           `json:"notes" binding:"max=500"`
}

// ClosureResponse represents a monthly closure in API responses
type ClosureResponse struct {
	ID              uuid.UUID        `json:"id"`
	Month           string           `json:"month"`
	AccountID       uuid.UUID        `json:"account_id"`
	OpeningBalance  decimal.Decimal  `json:"opening_balance"`
	TotalIncome     decimal.Decimal  `json:"total_income"`
	TotalExpense    decimal.Decimal  `json:"total_expense"`
	ExpectedClosing decimal.Decimal  `json:"expected_closing"`
	CountedClosing  *decimal.Decimal `json:"counted_closing,omitempty"`
	Difference      *decimal.Decimal `json:"difference,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ToClosureResponse converts a domain closure
func ToClosureResponse(c *finance.MonthlyClosure) ClosureResponse {
	return ClosureResponse{
		ID:              c.ID,
		Month:           c.Month,
		AccountID:       c.AccountID,
		OpeningBalance:  c.OpeningBalance,
		TotalIncome:     c.TotalIncome,
		TotalExpense:    c.TotalExpense,
		ExpectedClosing: c.ExpectedClosing,
		CountedClosing:  c.CountedClosing,
		Difference:      c.Difference(),
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt,
	}
}

// CreateAccountInput creates a cash or bank account
type CreateAccountInput struct {
	Name string `json:"name" binding:"required,max=100"`
	Type string `json:"type" binding:"required,oneof=CASH BANK"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToAccountResponse converts a domain account
func ToAccountResponse(a *finance.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

// InstallmentPreviewInput asks for an installment schedule
type InstallmentPreviewInput struct {
	Total        decimal.Decimal `json:"total" binding:"required"`
	Count        int             `json:"count" binding:"min=0,max=48"`
	IntervalDays int             `json:"interval_days" binding:"omitempty,min=1,max=365"`
	StartDate    *time.Time      `json:"start_date"`
}
