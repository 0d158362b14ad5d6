package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusDraft     SaleStatus = "DRAFT"
	SaleStatusConfirmed SaleStatus = "CONFIRMED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusDraft, SaleStatusConfirmed, SaleStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	switch s {
	case SaleStatusDraft:
		return target == SaleStatusConfirmed || target == SaleStatusCancelled
	case SaleStatusConfirmed:
		return target == SaleStatusCancelled
	}
	return false
}

// SaleItemInput describes one line of a sale before it is priced
type SaleItemInput struct {
	ProductID uuid.UUID
	UnitID    uuid.UUID
	Quantity  decimal.Decimal // in the line's unit
	UnitPrice decimal.Decimal
}

// SaleItem is a line of a sale
type SaleItem struct {
	ID        uuid.UUID
	SaleID    uuid.UUID
	ProductID uuid.UUID
	UnitID    uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	CreatedAt time.Time
}

// NewSaleItem validates and prices a sale line
func NewSaleItem(saleID uuid.UUID, in SaleItemInput) (*SaleItem, error) {
	if in.ProductID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "product ID cannot be empty")
	}
	if in.UnitID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "unit ID cannot be empty")
	}
	if !shared.IsPositive(in.Quantity) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "unit price cannot be negative")
	}
	return &SaleItem{
		ID:        uuid.New(),
		SaleID:    saleID,
		ProductID: in.ProductID,
		UnitID:    in.UnitID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		LineTotal: shared.RoundMoney(in.Quantity.Mul(in.UnitPrice)),
		CreatedAt: time.Now(),
	}, nil
}

// Sale is the sale aggregate root. Items can only change while DRAFT; the
// coupon number is assigned once on confirmation and never released.
type Sale struct {
	shared.TenantAggregateRoot
	CustomerID   *uuid.UUID
	Date         time.Time
	Status       SaleStatus
	CouponNumber *int64
	Notes        string
	Total        decimal.Decimal
	Items        []SaleItem
	ConfirmedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewSale creates a DRAFT sale
func NewSale(tenantID uuid.UUID, customerID *uuid.UUID, date time.Time, notes string) *Sale {
	if customerID != nil && *customerID == uuid.Nil {
		customerID = nil
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		Date:                date,
		Status:              SaleStatusDraft,
		Notes:               notes,
		Total:               decimal.Zero,
		Items:               make([]SaleItem, 0),
	}
}

// ReplaceItems swaps the whole item list of a DRAFT sale
func (s *Sale) ReplaceItems(inputs []SaleItemInput) error {
	if s.Status != SaleStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("cannot change items of a sale in %s status", s.Status))
	}
	items := make([]SaleItem, 0, len(inputs))
	for _, in := range inputs {
		item, err := NewSaleItem(s.ID, in)
		if err != nil {
			return err
		}
		items = append(items, *item)
	}
	s.Items = items
	s.recalculateTotal()
	s.UpdatedAt = time.Now()
	return nil
}

// UpdateNotes changes the notes of any sale that is not cancelled
func (s *Sale) UpdateNotes(notes string) error {
	if s.Status == SaleStatusCancelled {
		return shared.NewDomainError(shared.CodeInvalidState, "cannot change notes of a cancelled sale")
	}
	s.Notes = notes
	s.UpdatedAt = time.Now()
	return nil
}

// CheckConfirmable reports whether the sale can be confirmed right now
func (s *Sale) CheckConfirmable() error {
	if s.Status != SaleStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("cannot confirm sale in %s status", s.Status))
	}
	if len(s.Items) == 0 {
		return shared.NewDomainError(shared.CodeInvalidState, "cannot confirm a sale without items")
	}
	return nil
}

// Confirm moves a DRAFT sale to CONFIRMED under the given coupon number
func (s *Sale) Confirm(couponNumber int64, at time.Time) error {
	if err := s.CheckConfirmable(); err != nil {
		return err
	}
	if couponNumber <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "coupon number must be positive")
	}
	if at.IsZero() {
		at = time.Now()
	}
	s.Status = SaleStatusConfirmed
	s.CouponNumber = &couponNumber
	s.ConfirmedAt = &at
	s.UpdatedAt = time.Now()
	return nil
}

// Cancel cancels a DRAFT or CONFIRMED sale and returns the status it had
// before, so callers know whether stock and receivables must be reversed
func (s *Sale) Cancel(reason string) (SaleStatus, error) {
	previous := s.Status
	if !previous.CanTransitionTo(SaleStatusCancelled) {
		return previous, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("cannot cancel sale in %s status", s.Status))
	}
	now := time.Now()
	s.Status = SaleStatusCancelled
	s.CancelledAt = &now
	s.CancelReason = reason
	s.UpdatedAt = now
	return previous, nil
}

func (s *Sale) recalculateTotal() {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.LineTotal)
	}
	s.Total = total
}

// IsDraft returns true if the sale is still a draft
func (s *Sale) IsDraft() bool {
	return s.Status == SaleStatusDraft
}

// IsConfirmed returns true if the sale is confirmed
func (s *Sale) IsConfirmed() bool {
	return s.Status == SaleStatusConfirmed
}

// IsCancelled returns true if the sale is cancelled
func (s *Sale) IsCancelled() bool {
	return s.Status == SaleStatusCancelled
}
