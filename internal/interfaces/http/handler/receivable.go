package handler

import (
	"github.com/gin-gonic/gin"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	"github.com/retail/backoffice/internal/domain/shared"
)

// ReceivableHandler handles customer receivables
type ReceivableHandler struct {
	BaseHandler
	receivableService *appfinance.ReceivableService
}

// NewReceivableHandler creates a new ReceivableHandler
func NewReceivableHandler(receivableService *appfinance.ReceivableService) *ReceivableHandler {
	return &ReceivableHandler{receivableService: receivableService}
}

// Create creates an ad hoc receivable, split into installments on request
func (h *ReceivableHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appfinance.CreateReceivableInput
	if !h.bindJSON(c, &req) {
		return
	}

	receivables, err := h.receivableService.CreateReceivable(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receivables)
}

// GetByID returns a receivable with its settlements
func (h *ReceivableHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	receivable, err := h.receivableService.GetReceivable(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receivable)
}

// List lists receivables
func (h *ReceivableHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appfinance.ReceivableListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	receivables, total, err := h.receivableService.ListReceivables(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, receivables, total, page.Page, page.PageSize)
}

// Settle godoc
// @Summary      Receive money against a receivable
// @Tags         receivables
// @Router       /receivables/{id}/settle [post]
func (h *ReceivableHandler) Settle(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appfinance.SettleInput
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.receivableService.SettleReceivable(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
