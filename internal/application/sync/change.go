// Package sync applies batches of changes recorded offline by store devices.
// Each change is one of a closed set of variants; the dispatcher routes it to
// the service that owns the operation and skips change ids it has already
// applied for the tenant.
package sync

import (
	"context"

	"github.com/google/uuid"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	appinventory "github.com/retail/backoffice/internal/application/inventory"
	apptrade "github.com/retail/backoffice/internal/application/trade"
)

// ChangeKind names a change variant on the wire
type ChangeKind string

const (
	KindMovement   ChangeKind = "movement"
	KindSale       ChangeKind = "sale"
	KindSettlement ChangeKind = "settlement"
	KindPurchase   ChangeKind = "purchase"
	KindClosure    ChangeKind = "closure"
	KindEntry      ChangeKind = "entry"
)

// String returns the string representation of ChangeKind
func (k ChangeKind) String() string {
	return string(k)
}

// Change is one offline operation. Only this package can add variants.
type Change interface {
	Kind() ChangeKind
	// ID is the device-assigned change id used for replay detection
	ID() string
	apply(ctx context.Context, d *Dispatcher, tenantID uuid.UUID) (any, error)
}

// MovementChange records a manual stock movement
type MovementChange struct {
	ChangeID string
	Input    appinventory.RecordMovementInput
}

func (c MovementChange) Kind() ChangeKind { return KindMovement }
func (c MovementChange) ID() string       { return c.ChangeID }

func (c MovementChange) apply(ctx context.Context, d *Dispatcher, tenantID uuid.UUID) (any, error) {
	if d.handlers.Movements == nil {
		return nil, errNoHandler(c.Kind())
	}
	return d.handlers.Movements.RecordMovement(ctx, tenantID, c.Input)
}

// SaleChange creates an already confirmed sale, the way a POS closes a ticket
type SaleChange struct {
	ChangeID string
	Input    apptrade.CreateSaleInput
}

func (c SaleChange) Kind() ChangeKind { return KindSale }
func (c SaleChange) ID() string       { return c.ChangeID }

func (c SaleChange) apply(ctx context.Context, d *Dispatcher, tenantID uuid.UUID) (any, error) {
	if d.handlers.Sales == nil {
		return nil, errNoHandler(c.Kind())
	}
	input := c.Input
	input.Confirm = true
	return d.handlers.Sales.CreateConfirmedSale(ctx, tenantID, input)
}

// SettlementChange settles part or all of a receivable
type SettlementChange struct {
	ChangeID     string
	ReceivableID uuid.UUID
	Input        appfinance.SettleInput
}

func (c SettlementChange) Kind() ChangeKind { return KindSettlement }
func (c SettlementChange) ID() string       { return c.ChangeID }

func (c SettlementChange) apply(ctx context.Context, d *Dispatcher, tenantID uuid.UUID) (any, error) {
	if d.handlers.Settlements == nil {
		return nil, errNoHandler(c.Kind())
	}
	return d.handlers.Settlements.SettleReceivable(ctx, tenantID, c.ReceivableID, c.Input)
}

// PurchaseChange records goods received
type PurchaseChange struct {
	ChangeID string
	Input    apptrade.CreatePurchaseInput
}

func (c PurchaseChange) Kind() ChangeKind { return KindPurchase }
func (c PurchaseChange) ID() string       { return c.ChangeID }

func (c PurchaseChange) apply(ctx context.Context, d *Dispatcher, tenantID uuid.UUID) (any, error) {
	if d.handlers.Purchases == nil {
		return nil, errNoHandler(c.Kind())
	}
	return d.handlers.Purchases.CreatePurchase(ctx, tenantID, c.Input)
}

// ClosureChange closes a month for an account
type ClosureChange struct {
	ChangeID string
	Input    appfinance.CreateClosureInput
}

func (c ClosureChange) Kind() ChangeKind { return KindClosure }
func (c ClosureChange) ID() string       { return c.ChangeID }

func (c ClosureChange) apply(ctx context.Context, d *Dispatcher, tenantID uuid.UUID) (any, error) {
	if d.handlers.Closures == nil {
		return nil, errNoHandler(c.Kind())
	}
	return d.handlers.Closures.CreateClosure(ctx, tenantID, c.Input)
}

// EntryChange creates a finance entry
type EntryChange struct {
	ChangeID string
	Input    appfinance.CreateEntryInput
}

func (c EntryChange) Kind() ChangeKind { return KindEntry }
func (c EntryChange) ID() string       { return c.ChangeID }

func (c EntryChange) apply(ctx context.Context, d *Dispatcher, tenantID uuid.UUID) (any, error) {
	if d.handlers.Entries == nil {
		return nil, errNoHandler(c.Kind())
	}
	return d.handlers.Entries.CreateEntry(ctx, tenantID, c.Input)
}

var (
	_ Change = MovementChange{}
	_ Change = SaleChange{}
	_ Change = SettlementChange{}
	_ Change = PurchaseChange{}
	_ Change = ClosureChange{}
	_ Change = EntryChange{}
)
