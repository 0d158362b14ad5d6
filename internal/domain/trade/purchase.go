package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseStatus represents the status of a purchase. Purchases are born
// CONFIRMED; there is no draft stage.
type PurchaseStatus string

const (
	PurchaseStatusConfirmed PurchaseStatus = "CONFIRMED"
	PurchaseStatusCancelled PurchaseStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	return s == PurchaseStatusConfirmed || s == PurchaseStatusCancelled
}

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// PurchaseItem is a received product line
type PurchaseItem struct {
	ID           uuid.UUID
	PurchaseID   uuid.UUID
	ProductID    uuid.UUID
	UnitID       uuid.UUID
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	LineTotal    decimal.Decimal
	QuantityBase int64
	CreatedAt    time.Time
}

// PurchaseCost is an extra cost (freight, fees) recorded on a purchase.
// It is part of the purchase total but never blended into lot unit costs.
type PurchaseCost struct {
	ID          uuid.UUID
	PurchaseID  uuid.UUID
	Description string
	Amount      decimal.Decimal
}

// Purchase is the purchase aggregate root
type Purchase struct {
	shared.TenantAggregateRoot
	SupplierID   *uuid.UUID
	Date         time.Time
	Status       PurchaseStatus
	Notes        string
	Total        decimal.Decimal
	Items        []PurchaseItem
	Costs        []PurchaseCost
	CancelledAt  *time.Time
	CancelReason string
}

// NewPurchase creates a CONFIRMED purchase with no lines yet
func NewPurchase(tenantID uuid.UUID, supplierID *uuid.UUID, date time.Time, notes string) *Purchase {
	if supplierID != nil && *supplierID == uuid.Nil {
		supplierID = nil
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Purchase{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SupplierID:          supplierID,
		Date:                date,
		Status:              PurchaseStatusConfirmed,
		Notes:               notes,
		Total:               decimal.Zero,
		Items:               make([]PurchaseItem, 0),
		Costs:               make([]PurchaseCost, 0),
	}
}

// AddItem appends a line. quantityBase is the line quantity already converted
// to the product's base unit.
func (p *Purchase) AddItem(productID, unitID uuid.UUID, quantity, unitCost decimal.Decimal, quantityBase int64) (*PurchaseItem, error) {
	if productID == uuid.Nil || unitID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "purchase item requires product and unit")
	}
	if !shared.IsPositive(quantity) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "quantity must be positive")
	}
	if quantityBase <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "base quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "unit cost cannot be negative")
	}
	item := PurchaseItem{
		ID:           uuid.New(),
		PurchaseID:   p.ID,
		ProductID:    productID,
		UnitID:       unitID,
		Quantity:     quantity,
		UnitCost:     unitCost,
		LineTotal:    shared.RoundMoney(quantity.Mul(unitCost)),
		QuantityBase: quantityBase,
		CreatedAt:    time.Now(),
	}
	p.Items = append(p.Items, item)
	p.recalculateTotal()
	return &p.Items[len(p.Items)-1], nil
}

// AddCost records an extra cost
func (p *Purchase) AddCost(description string, amount decimal.Decimal) error {
	if description == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "cost description cannot be empty")
	}
	if amount.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "cost amount cannot be negative")
	}
	p.Costs = append(p.Costs, PurchaseCost{
		ID:          uuid.New(),
		PurchaseID:  p.ID,
		Description: description,
		Amount:      shared.RoundMoney(amount),
	})
	p.recalculateTotal()
	return nil
}

// Cancel moves a CONFIRMED purchase to CANCELLED
func (p *Purchase) Cancel(reason string) error {
	if p.Status != PurchaseStatusConfirmed {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("cannot cancel purchase in %s status", p.Status))
	}
	now := time.Now()
	p.Status = PurchaseStatusCancelled
	p.CancelledAt = &now
	p.CancelReason = reason
	p.UpdatedAt = now
	return nil
}

// ProductIDs returns the distinct products of the purchase lines
func (p *Purchase) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(p.Items))
	ids := make([]uuid.UUID, 0, len(p.Items))
	for _, item := range p.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func (p *Purchase) recalculateTotal() {
	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.LineTotal)
	}
	for _, c := range p.Costs {
		total = total.Add(c.Amount)
	}
	p.Total = total
}
