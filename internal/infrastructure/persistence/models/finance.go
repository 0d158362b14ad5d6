package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for a cash or bank account.
type AccountModel struct {
	TenantAggregateModel
	Name   string              `gorm:"type:varchar(100);not null"`
	Type   finance.AccountType `gorm:"type:varchar(10);not null"`
	Active bool                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *finance.Account {
	return &finance.Account{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		Type:                m.Type,
		Active:              m.Active,
	}
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(a *finance.Account) *AccountModel {
	m := &AccountModel{Name: a.Name, Type: a.Type, Active: a.Active}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	return m
}

// PaymentModel is the persistence model for a payment.
type PaymentModel struct {
	TenantModel
	SaleID       *uuid.UUID            `gorm:"type:uuid;index"`
	PurchaseID   *uuid.UUID            `gorm:"type:uuid;index"`
	ReceivableID *uuid.UUID            `gorm:"type:uuid;index"`
	Date         time.Time             `gorm:"not null"`
	Method       finance.PaymentMethod `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	AccountID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	CardType     string                `gorm:"type:varchar(30)"`
	Installments int                   `gorm:"not null;default:1"`
	Notes        string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		TenantEntity: m.ToTenantEntity(),
		SaleID:       m.SaleID,
		PurchaseID:   m.PurchaseID,
		ReceivableID: m.ReceivableID,
		Date:         m.Date,
		Method:       m.Method,
		Amount:       m.Amount,
		AccountID:    m.AccountID,
		CardType:     m.CardType,
		Installments: m.Installments,
		Notes:        m.Notes,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		SaleID:       p.SaleID,
		PurchaseID:   p.PurchaseID,
		ReceivableID: p.ReceivableID,
		Date:         p.Date,
		Method:       p.Method,
		Amount:       p.Amount,
		AccountID:    p.AccountID,
		CardType:     p.CardType,
		Installments: p.Installments,
		Notes:        p.Notes,
	}
	m.FromDomainTenantEntity(p.TenantEntity)
	return m
}

// ReceivableModel is the persistence model for a receivable.
type ReceivableModel struct {
	TenantAggregateModel
	SaleID            *uuid.UUID               `gorm:"type:uuid;index"`
	CustomerID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	DueDate           time.Time                `gorm:"not null;index"`
	Amount            decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Status            finance.ReceivableStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Kind              finance.ReceivableKind   `gorm:"type:varchar(20);not null"`
	InstallmentNumber int                      `gorm:"not null;default:1"`
	InstallmentCount  int                      `gorm:"not null;default:1"`
	Notes             string                   `gorm:"type:text"`
	PaidAt            *time.Time
	CancelledAt       *time.Time
}

// TableName returns the table name for GORM
func (ReceivableModel) TableName() string {
	return "receivables"
}

// ToDomain converts the persistence model to a domain Receivable.
func (m *ReceivableModel) ToDomain() *finance.Receivable {
	return &finance.Receivable{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		SaleID:              m.SaleID,
		CustomerID:          m.CustomerID,
		DueDate:             m.DueDate,
		Amount:              m.Amount,
		PaidAmount:          m.PaidAmount,
		Status:              m.Status,
		Kind:                m.Kind,
		InstallmentNumber:   m.InstallmentNumber,
		InstallmentCount:    m.InstallmentCount,
		Notes:               m.Notes,
		PaidAt:              m.PaidAt,
		CancelledAt:         m.CancelledAt,
	}
}

// ReceivableModelFromDomain creates a new persistence model from a domain Receivable.
func ReceivableModelFromDomain(r *finance.Receivable) *ReceivableModel {
	m := &ReceivableModel{
		SaleID:            r.SaleID,
		CustomerID:        r.CustomerID,
		DueDate:           r.DueDate,
		Amount:            r.Amount,
		PaidAmount:        r.PaidAmount,
		Status:            r.Status,
		Kind:              r.Kind,
		InstallmentNumber: r.InstallmentNumber,
		InstallmentCount:  r.InstallmentCount,
		Notes:             r.Notes,
		PaidAt:            r.PaidAt,
		CancelledAt:       r.CancelledAt,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}

// ReceivableSettlementModel is the persistence model for an append-only settlement.
type ReceivableSettlementModel struct {
	TenantModel
	ReceivableID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceivableSettlementModel) TableName() string {
	return "receivable_settlements"
}

// ToDomain converts the persistence model to a domain ReceivableSettlement.
func (m *ReceivableSettlementModel) ToDomain() *finance.ReceivableSettlement {
	return &finance.ReceivableSettlement{
		TenantEntity: m.ToTenantEntity(),
		ReceivableID: m.ReceivableID,
		PaymentID:    m.PaymentID,
		Amount:       m.Amount,
		PaidAt:       m.PaidAt,
	}
}

// ReceivableSettlementModelFromDomain creates a new persistence model from a domain settlement.
func ReceivableSettlementModelFromDomain(s *finance.ReceivableSettlement) *ReceivableSettlementModel {
	m := &ReceivableSettlementModel{
		ReceivableID: s.ReceivableID,
		PaymentID:    s.PaymentID,
		Amount:       s.Amount,
		PaidAt:       s.PaidAt,
	}
	m.FromDomainTenantEntity(s.TenantEntity)
	return m
}

// FinanceEntryModel is the persistence model for a finance entry.
type FinanceEntryModel struct {
	TenantAggregateModel
	Type        finance.EntryType   `gorm:"type:varchar(20);not null"`
	CategoryID  *uuid.UUID          `gorm:"type:uuid"`
	AccountID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	PaymentID   *uuid.UUID          `gorm:"type:uuid;index"`
	Description string              `gorm:"type:varchar(500)"`
	Amount      decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	DueDate     *time.Time          `gorm:"index"`
	Status      finance.EntryStatus `gorm:"type:varchar(20);not null;index"`
	PaidAt      *time.Time          `gorm:"index"`
}

// TableName returns the table name for GORM
func (FinanceEntryModel) TableName() string {
	return "finance_entries"
}

// ToDomain converts the persistence model to a domain FinanceEntry.
func (m *FinanceEntryModel) ToDomain() *finance.FinanceEntry {
	return &finance.FinanceEntry{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Type:                m.Type,
		CategoryID:          m.CategoryID,
		AccountID:           m.AccountID,
		PaymentID:           m.PaymentID,
		Description:         m.Description,
		Amount:              m.Amount,
		DueDate:             m.DueDate,
		Status:              m.Status,
		PaidAt:              m.PaidAt,
	}
}

// FinanceEntryModelFromDomain creates a new persistence model from a domain FinanceEntry.
func FinanceEntryModelFromDomain(e *finance.FinanceEntry) *FinanceEntryModel {
	m := &FinanceEntryModel{
		Type:        e.Type,
		CategoryID:  e.CategoryID,
		AccountID:   e.AccountID,
		PaymentID:   e.PaymentID,
		Description: e.Description,
		Amount:      e.Amount,
		DueDate:     e.DueDate,
		Status:      e.Status,
		PaidAt:      e.PaidAt,
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}

// MonthlyClosureModel is the persistence model for a monthly closure.
type MonthlyClosureModel struct {
	TenantModel
	Month           string           `gorm:"type:char(7);not null;index"`
	AccountID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	OpeningBalance  decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	TotalIncome     decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	TotalExpense    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ExpectedClosing decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	CountedClosing  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Notes           string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MonthlyClosureModel) TableName() string {
	return "monthly_closures"
}

// ToDomain converts the persistence model to a domain MonthlyClosure.
func (m *MonthlyClosureModel) ToDomain() *finance.MonthlyClosure {
	return &finance.MonthlyClosure{
		TenantEntity:    m.ToTenantEntity(),
		Month:           m.Month,
		AccountID:       m.AccountID,
		OpeningBalance:  m.OpeningBalance,
		TotalIncome:     m.TotalIncome,
		TotalExpense:    m.TotalExpense,
		ExpectedClosing: m.ExpectedClosing,
		CountedClosing:  m.CountedClosing,
		Notes:           m.Notes,
	}
}

// MonthlyClosureModelFromDomain creates a new persistence model from a domain MonthlyClosure.
func MonthlyClosureModelFromDomain(c *finance.MonthlyClosure) *MonthlyClosureModel {
	m := &MonthlyClosureModel{
		Month:           c.Month,
		AccountID:       c.AccountID,
		OpeningBalance:  c.OpeningBalance,
		TotalIncome:     c.TotalIncome,
		TotalExpense:    c.TotalExpense,
		ExpectedClosing: c.ExpectedClosing,
		CountedClosing:  c.CountedClosing,
		Notes:           c.Notes,
	}
	m.FromDomainTenantEntity(c.TenantEntity)
	return m
}
