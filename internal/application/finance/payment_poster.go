package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/application/uow"
	"github.com/retail/backoffice/internal/domain/finance"
	"github.com/retail/backoffice/internal/domain/shared"
)

// cardInstallmentIntervalDays is the fixed spacing of credit card installments
const cardInstallmentIntervalDays = 30

// SaleRef identifies the sale a payment belongs to
type SaleRef struct {
	SaleID     uuid.UUID
	CustomerID *uuid.UUID
	Date       time.Time
}

// ReversalResult counts what a cancellation voided
type ReversalResult struct {
	ReceivablesCancelled int `json:"receivables_cancelled"`
	EntriesCancelled     int `json:"entries_cancelled"`
}

// PaymentPoster turns tendered payments into payments, finance entries and
// receivables. Every method runs inside the caller's transaction.
type PaymentPoster struct {
	defaultIntervalDays int
}

// NewPaymentPoster creates a new PaymentPoster. defaultIntervalDays spaces
// deferred installments when the caller gives no interval.
func NewPaymentPoster(defaultIntervalDays int) *PaymentPoster {
	if defaultIntervalDays <= 0 {
		defaultIntervalDays = 30
	}
	return &PaymentPoster{defaultIntervalDays: defaultIntervalDays}
}

// PostSalePayment posts one payment of a sale according to its method:
// immediate methods produce a PAID INCOME entry dated at the sale date,
// card installments and deferred methods produce OPEN receivables.
func (p *PaymentPoster) PostSalePayment(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, sale SaleRef, in PaymentInput) (*PostingResult, error) {
	method := finance.PaymentMethod(in.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid payment method %q", in.Method))
	}
	mode := method.Classify(in.Installments)
	if mode != finance.PostingImmediate && (sale.CustomerID == nil || *sale.CustomerID == uuid.Nil) {
		return nil, shared.NewDomainError(shared.CodeMissingRequiredAssociation,
			fmt.Sprintf("payment method %s creates receivables and requires a customer on the sale", method))
	}
	if err := ensureAccount(ctx, repos, tenantID, in.AccountID); err != nil {
		return nil, err
	}

	saleID := sale.SaleID
	payment, err := finance.NewPayment(tenantID, finance.NewPaymentParams{
		SaleID:       &saleID,
		Date:         sale.Date,
		Method:       method,
		Amount:       in.Amount,
		AccountID:    in.AccountID,
		CardType:     in.CardType,
		Installments: in.Installments,
		Notes:        in.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := repos.Payments().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	result := &PostingResult{Payment: ToPaymentResponse(payment), Mode: string(mode)}
	switch mode {
	case finance.PostingImmediate:
		entry, err := p.postPaidEntry(ctx, repos, tenantID, payment, finance.EntryTypeIncome, "Sale payment "+method.String())
		if err != nil {
			return nil, err
		}
		resp := ToEntryResponse(entry)
		result.Entry = &resp

	case finance.PostingCardInstallments:
		schedule := finance.GenerateInstallments(payment.Amount, payment.Installments, cardInstallmentIntervalDays, sale.Date)
		result.Receivables, err = p.createReceivables(ctx, repos, tenantID, &saleID, *sale.CustomerID, method.ReceivableKind(), schedule, in.Notes)
		if err != nil {
			return nil, err
		}

	case finance.PostingDeferred:
		count := in.Installments
		if count < 1 {
			count = 1
		}
		interval := in.IntervalDays
		if interval <= 0 {
			interval = p.defaultIntervalDays
		}
		schedule := finance.GenerateInstallments(payment.Amount, count, interval, sale.Date)
		result.Receivables, err = p.createReceivables(ctx, repos, tenantID, &saleID, *sale.CustomerID, method.ReceivableKind(), schedule, in.Notes)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// PostPurchasePayment posts a purchase payment as a PAID EXPENSE entry.
// Purchases only accept immediate methods.
func (p *PaymentPoster) PostPurchasePayment(ctx context.Context, repos uow.Repositories, tenantID, purchaseID uuid.UUID, date time.Time, in PaymentInput) (*PostingResult, error) {
	method := finance.PaymentMethod(in.Method)
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid payment method %q", in.Method))
	}
	if mode := method.Classify(in.Installments); mode != finance.PostingImmediate {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("purchases accept only immediate payment methods, got %s", method))
	}
	if err := ensureAccount(ctx, repos, tenantID, in.AccountID); err != nil {
		return nil, err
	}

	payment, err := finance.NewPayment(tenantID, finance.NewPaymentParams{
		PurchaseID: &purchaseID,
		Date:       date,
		Method:     method,
		Amount:     in.Amount,
		AccountID:  in.AccountID,
		CardType:   in.CardType,
		Notes:      in.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := repos.Payments().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	entry, err := p.postPaidEntry(ctx, repos, tenantID, payment, finance.EntryTypeExpense, "Purchase payment "+method.String())
	if err != nil {
		return nil, err
	}
	resp := ToEntryResponse(entry)
	return &PostingResult{Payment: ToPaymentResponse(payment), Mode: string(finance.PostingImmediate), Entry: &resp}, nil
}

// ReverseSale cancels the OPEN receivables of a sale and the live finance
// entries posted by the payments tendered at the sale. Settlements of the
// sale's receivables record cash already received, so their payments and
// INCOME entries are left alone.
func (p *PaymentPoster) ReverseSale(ctx context.Context, repos uow.Repositories, tenantID, saleID uuid.UUID) (ReversalResult, error) {
	var result ReversalResult

	receivables, err := repos.Receivables().FindBySale(ctx, tenantID, saleID)
	if err != nil {
		return result, err
	}
	for i := range receivables {
		r := &receivables[i]
		if r.Status != finance.ReceivableStatusOpen {
			continue
		}
		if err := r.Cancel(); err != nil {
			return result, err
		}
		if err := repos.Receivables().SaveWithLock(ctx, r); err != nil {
			return result, err
		}
		result.ReceivablesCancelled++
	}

	payments, err := repos.Payments().FindBySale(ctx, tenantID, saleID)
	if err != nil {
		return result, err
	}
	tendered := payments[:0]
	for _, pay := range payments {
		if pay.ReceivableID == nil {
			tendered = append(tendered, pay)
		}
	}
	result.EntriesCancelled, err = cancelPaymentEntries(ctx, repos, tenantID, tendered)
	return result, err
}

// ReversePurchase cancels the expense entries of a purchase's payments
func (p *PaymentPoster) ReversePurchase(ctx context.Context, repos uow.Repositories, tenantID, purchaseID uuid.UUID) (int, error) {
	payments, err := repos.Payments().FindByPurchase(ctx, tenantID, purchaseID)
	if err != nil {
		return 0, err
	}
	return cancelPaymentEntries(ctx, repos, tenantID, payments)
}

func (p *PaymentPoster) postPaidEntry(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, payment *finance.Payment, entryType finance.EntryType, description string) (*finance.FinanceEntry, error) {
	paymentID := payment.ID
	entry, err := finance.NewPaidEntry(tenantID, finance.NewFinanceEntryParams{
		Type:        entryType,
		AccountID:   payment.AccountID,
		PaymentID:   &paymentID,
		Description: description,
		Amount:      payment.Amount,
	}, payment.Date)
	if err != nil {
		return nil, err
	}
	if err := repos.Entries().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create finance entry: %w", err)
	}
	return entry, nil
}

func (p *PaymentPoster) createReceivables(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, saleID *uuid.UUID, customerID uuid.UUID, kind finance.ReceivableKind, schedule []finance.Installment, notes string) ([]ReceivableResponse, error) {
	out := make([]ReceivableResponse, 0, len(schedule))
	for _, inst := range schedule {
		r, err := finance.NewReceivable(tenantID, finance.NewReceivableParams{
			SaleID:            saleID,
			CustomerID:        customerID,
			DueDate:           inst.DueDate,
			Amount:            inst.Amount,
			Kind:              kind,
			InstallmentNumber: inst.Number,
			InstallmentCount:  len(schedule),
			Notes:             notes,
		})
		if err != nil {
			return nil, err
		}
		if err := repos.Receivables().Create(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to create receivable: %w", err)
		}
		out = append(out, ToReceivableResponse(r))
	}
	return out, nil
}

func cancelPaymentEntries(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, payments []finance.Payment) (int, error) {
	if len(payments) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, len(payments))
	for i := range payments {
		ids[i] = payments[i].ID
	}
	entries, err := repos.Entries().FindByPaymentIDs(ctx, tenantID, ids)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for i := range entries {
		e := &entries[i]
		if e.Status == finance.EntryStatusCancelled {
			continue
		}
		if err := e.Cancel(); err != nil {
			return cancelled, err
		}
		if err := repos.Entries().SaveWithLock(ctx, e); err != nil {
			return cancelled, err
		}
		cancelled++
	}
	return cancelled, nil
}

func ensureAccount(ctx context.Context, repos uow.Repositories, tenantID, accountID uuid.UUID) error {
	exists, err := repos.Accounts().ExistsByID(ctx, tenantID, accountID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NotFound("account", accountID)
	}
	return nil
}
