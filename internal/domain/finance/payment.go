package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was tendered
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodPix        PaymentMethod = "PIX"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodCrediario  PaymentMethod = "CREDIARIO"
	PaymentMethodBoleto     PaymentMethod = "BOLETO"
	PaymentMethodCheque     PaymentMethod = "CHEQUE"
)

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid returns true if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash,
		PaymentMethodPix,
		PaymentMethodDebitCard,
		PaymentMethodCreditCard,
		PaymentMethodCrediario,
		PaymentMethodBoleto,
		PaymentMethodCheque:
		return true
	}
	return false
}

// IsDeferred returns true for methods that always produce receivables
func (m PaymentMethod) IsDeferred() bool {
	switch m {
	case PaymentMethodCrediario, PaymentMethodBoleto, PaymentMethodCheque:
		return true
	}
	return false
}

// PostingMode is how a payment reaches the books
type PostingMode string

const (
	// PostingImmediate posts a PAID finance entry right away
	PostingImmediate PostingMode = "IMMEDIATE"
	// PostingCardInstallments splits a credit card payment into receivables at a fixed interval
	PostingCardInstallments PostingMode = "CARD_INSTALLMENTS"
	// PostingDeferred creates receivables on the caller's schedule
	PostingDeferred PostingMode = "DEFERRED"
)

// Classify returns the posting mode of a payment of this method split into
// the given number of installments
func (m PaymentMethod) Classify(installments int) PostingMode {
	switch {
	case m.IsDeferred():
		return PostingDeferred
	case m == PaymentMethodCreditCard && installments > 1:
		return PostingCardInstallments
	default:
		return PostingImmediate
	}
}

// ReceivableKind maps a receivable-producing method to its receivable kind
func (m PaymentMethod) ReceivableKind() ReceivableKind {
	switch m {
	case PaymentMethodCrediario:
		return ReceivableKindCrediario
	case PaymentMethodBoleto:
		return ReceivableKindBoleto
	case PaymentMethodCheque:
		return ReceivableKindCheque
	case PaymentMethodCreditCard:
		return ReceivableKindCardInstallment
	}
	return ReceivableKindManual
}

// Payment is money tendered against a sale, a purchase or a receivable
type Payment struct {
	shared.TenantEntity
	SaleID       *uuid.UUID
	PurchaseID   *uuid.UUID
	ReceivableID *uuid.UUID
	Date         time.Time
	Method       PaymentMethod
	Amount       decimal.Decimal
	AccountID    uuid.UUID
	CardType     string
	Installments int
	Notes        string
}

// NewPaymentParams carries the fields of a new payment
type NewPaymentParams struct {
	SaleID       *uuid.UUID
	PurchaseID   *uuid.UUID
	ReceivableID *uuid.UUID
	Date         time.Time
	Method       PaymentMethod
	Amount       decimal.Decimal
	AccountID    uuid.UUID
	CardType     string
	Installments int
	Notes        string
}

// NewPayment validates and builds a payment
func NewPayment(tenantID uuid.UUID, p NewPaymentParams) (*Payment, error) {
	if !p.Method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid payment method %q", p.Method))
	}
	if !shared.IsPositive(p.Amount) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "payment amount must be positive")
	}
	if p.AccountID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "payment account is required")
	}
	date := p.Date
	if date.IsZero() {
		date = time.Now()
	}
	installments := p.Installments
	if installments < 1 {
		installments = 1
	}
	return &Payment{
		TenantEntity: shared.NewTenantEntity(tenantID),
		SaleID:       p.SaleID,
		PurchaseID:   p.PurchaseID,
		ReceivableID: p.ReceivableID,
		Date:         date,
		Method:       p.Method,
		Amount:       shared.RoundMoney(p.Amount),
		AccountID:    p.AccountID,
		CardType:     p.CardType,
		Installments: installments,
		Notes:        p.Notes,
	}, nil
}
