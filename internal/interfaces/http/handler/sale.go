package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/retail/backoffice/internal/application/trade"
	"github.com/retail/backoffice/internal/domain/shared"
)

// SaleHandler handles the sale lifecycle
type SaleHandler struct {
	BaseHandler
	saleService *apptrade.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *apptrade.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create godoc
// @Summary      Create a draft sale, or a confirmed one with confirm=true
// @Tags         sales
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req apptrade.CreateSaleInput
	if !h.bindJSON(c, &req) {
		return
	}

	if req.Confirm {
		result, err := h.saleService.CreateConfirmedSale(c.Request.Context(), tenantID, req)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Created(c, result)
		return
	}

	sale, err := h.saleService.CreateDraft(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetByID godoc
// @Summary      Get a sale with its lines
// @Tags         sales
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter apptrade.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	sales, total, err := h.saleService.ListSales(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, sales, total, page.Page, page.PageSize)
}

// ReplaceItems swaps the lines of a draft
func (h *SaleHandler) ReplaceItems(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptrade.ReplaceItemsInput
	if !h.bindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.ReplaceItems(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// UpdateNotes changes the notes of a sale
func (h *SaleHandler) UpdateNotes(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptrade.UpdateNotesInput
	if !h.bindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.UpdateNotes(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Confirm godoc
// @Summary      Confirm a draft: stock out, FIFO cost, payments, coupon number
// @Tags         sales
// @Router       /sales/{id}/confirm [post]
func (h *SaleHandler) Confirm(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptrade.ConfirmSaleInput
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.saleService.ConfirmSale(c.Request.Context(), tenantID, id, req.Payments)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel godoc
// @Summary      Cancel a sale, reversing stock and money when it was confirmed
// @Tags         sales
// @Router       /sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *gin.Context) {
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

	result, err := h.saleService.CancelSale(c.Request.Context(), tenantID, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
