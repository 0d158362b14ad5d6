package trade

import (
	"time"

	"github.com/google/uuid"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	"github.com/retail/backoffice/internal/domain/inventory"
	"github.com/retail/backoffice/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleItemInput is one sale line as sent by a client
type SaleItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	UnitID    uuid.UUID       `json:"unit_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleInput creates a draft sale, or a confirmed one when Confirm is set
type CreateSaleInput struct {
	CustomerID *uuid.UUID                `json:"customer_id"`
	Date       *time.Time                `json:"date"`
	Notes      string                    `json:"notes" binding:"max=500"`
	Items      []SaleItemInput           `json:"items" binding:"dive"`
	Confirm    bool                      `json:"confirm"`
	Payments   []appfinance.PaymentInput `json:"payments" binding:"dive"`
}

// ReplaceItemsInput swaps the item list of a draft
type ReplaceItemsInput struct {
	Items []SaleItemInput `json:"items" binding:"dive"`
}

// UpdateNotesInput changes the notes of a sale
type UpdateNotesInput struct {
	Notes string `json:"notes" binding:"max=500"`
}

// ConfirmSaleInput carries the tenders of a confirmation
type ConfirmSaleInput struct {
	Payments []appfinance.PaymentInput `json:"payments" binding:"dive"`
}

// CancelInput carries the reason of a cancellation
type CancelInput struct {
	Reason string `json:"reason" binding:"max=500"`
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	UnitID    uuid.UUID       `json:"unit_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID           uuid.UUID          `json:"id"`
	CustomerID   *uuid.UUID         `json:"customer_id,omitempty"`
	Date         time.Time          `json:"date"`
	Status       string             `json:"status"`
	CouponNumber *int64             `json:"coupon_number,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	Total        decimal.Decimal    `json:"total"`
	Items        []SaleItemResponse `json:"items,omitempty"`
	ConfirmedAt  *time.Time         `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason string             `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Version      int                `json:"version"`
}

// ToSaleResponse converts a domain sale
func ToSaleResponse(s *trade.Sale) SaleResponse {
	resp := SaleResponse{
		ID:           s.ID,
		CustomerID:   s.CustomerID,
		Date:         s.Date,
		Status:       s.Status.String(),
		CouponNumber: s.CouponNumber,
		Notes:        s.Notes,
		Total:        s.Total,
		ConfirmedAt:  s.ConfirmedAt,
		CancelledAt:  s.CancelledAt,
		CancelReason: s.CancelReason,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Version:      s.Version,
	}
	if len(s.Items) > 0 {
		resp.Items = make([]SaleItemResponse, len(s.Items))
		for i, item := range s.Items {
			resp.Items[i] = SaleItemResponse{
				ID:        item.ID,
				ProductID: item.ProductID,
				UnitID:    item.UnitID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				LineTotal: item.LineTotal,
			}
		}
	}
	return resp
}

// ConfirmationResult is what confirming a sale produced
type ConfirmationResult struct {
	Sale     SaleResponse                  `json:"sale"`
	Costs    []inventory.ConsumptionResult `json:"costs"`
	Payments []appfinance.PostingResult    `json:"payments"`
}

// CancellationResult is what cancelling a sale reversed
type CancellationResult struct {
	Sale              SaleResponse              `json:"sale"`
	PreviousStatus    string                    `json:"previous_status"`
	MovementsRecorded int                       `json:"movements_recorded"`
	Reversal          appfinance.ReversalResult `json:"reversal"`
}

// SaleListFilter represents filter options for the sale list
type SaleListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=DRAFT CONFIRMED CANCELLED"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseItemInput is one purchase line
type PurchaseItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	UnitID    uuid.UUID       `json:"unit_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// PurchaseCostInput is an extra cost of a purchase
type PurchaseCostInput struct {
	Description string          `json:"description" binding:"required,max=200"`
	Amount      decimal.Decimal `json:"amount"`
}

// CreatePurchaseInput records goods received from a supplier
type CreatePurchaseInput struct {
	SupplierID *uuid.UUID                `json:"supplier_id"`
	Date       *time.Time                `json:"date"`
	Notes      string                    `json:"notes" binding:"max=500"`
	Items      []PurchaseItemInput       `json:"items" binding:"required,min=1,dive"`
	Costs      []PurchaseCostInput       `json:"costs" binding:"dive"`
	Payments   []appfinance.PaymentInput `json:"payments" binding:"dive"`
}

// PurchaseItemResponse represents a purchase line in API responses
type PurchaseItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	UnitID       uuid.UUID       `json:"unit_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LineTotal    decimal.Decimal `json:"line_total"`
	QuantityBase int64           `json:"quantity_base"`
}

// PurchaseCostResponse represents an extra cost in API responses
type PurchaseCostResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID           uuid.UUID              `json:"id"`
	SupplierID   *uuid.UUID             `json:"supplier_id,omitempty"`
	Date         time.Time              `json:"date"`
	Status       string                 `json:"status"`
	Notes        string                 `json:"notes,omitempty"`
	Total        decimal.Decimal        `json:"total"`
	Items        []PurchaseItemResponse `json:"items,omitempty"`
	Costs        []PurchaseCostResponse `json:"costs,omitempty"`
	CancelledAt  *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason string                 `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	Version      int                    `json:"version"`
}

// ToPurchaseResponse converts a domain purchase
func ToPurchaseResponse(p *trade.Purchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:           p.ID,
		SupplierID:   p.SupplierID,
		Date:         p.Date,
		Status:       p.Status.String(),
		Notes:        p.Notes,
		Total:        p.Total,
		CancelledAt:  p.CancelledAt,
		CancelReason: p.CancelReason,
		CreatedAt:    p.CreatedAt,
		Version:      p.Version,
	}
	for _, item := range p.Items {
		resp.Items = append(resp.Items, PurchaseItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			UnitID:       item.UnitID,
			Quantity:     item.Quantity,
			UnitCost:     item.UnitCost,
			LineTotal:    item.LineTotal,
			QuantityBase: item.QuantityBase,
		})
	}
	for _, c := range p.Costs {
		resp.Costs = append(resp.Costs, PurchaseCostResponse{ID: c.ID, Description: c.Description, Amount: c.Amount})
	}
	return resp
}

// PurchaseCreationResult is what recording a purchase produced
type PurchaseCreationResult struct {
	Purchase PurchaseResponse           `json:"purchase"`
	Lots     []LotRef                   `json:"lots"`
	Payments []appfinance.PostingResult `json:"payments"`
}

// LotRef links a purchase line to the cost lot it opened
type LotRef struct {
	LotID        uuid.UUID       `json:"lot_id"`
	SourceLineID uuid.UUID       `json:"source_line_id"`
	QuantityBase int64           `json:"quantity_base"`
	UnitCostBase decimal.Decimal `json:"unit_cost_base"`
}

// PurchaseCancellationResult is what cancelling a purchase reversed
type PurchaseCancellationResult struct {
	Purchase          PurchaseResponse `json:"purchase"`
	MovementsRecorded int              `json:"movements_recorded"`
	LotsZeroed        int64            `json:"lots_zeroed"`
	EntriesCancelled  int              `json:"entries_cancelled"`
}

// PurchaseListFilter represents filter options for the purchase list
type PurchaseListFilter struct {
	SupplierID *uuid.UUID `form:"supplier_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=CONFIRMED CANCELLED"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
