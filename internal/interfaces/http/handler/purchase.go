package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/retail/backoffice/internal/application/trade"
	"github.com/retail/backoffice/internal/domain/shared"
)

// PurchaseHandler handles goods received from suppliers
type PurchaseHandler struct {
	BaseHandler
	purchaseService *apptrade.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService *apptrade.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// Create godoc
// @Summary      Record a purchase, opening one cost lot per line
// @Tags         purchases
// @Router       /purchases [post]
func (h *PurchaseHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req apptrade.CreatePurchaseInput
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.purchaseService.CreatePurchase(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByID returns a purchase
func (h *PurchaseHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// List lists purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter apptrade.PurchaseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	purchases, total, err := h.purchaseService.ListPurchases(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, purchases, total, page.Page, page.PageSize)
}

// Cancel reverses a purchase
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptrade.CancelInput
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.purchaseService.CancelPurchase(c.Request.Context(), tenantID, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
