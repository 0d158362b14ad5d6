package handler

import (
	"github.com/gin-gonic/gin"
	appinventory "github.com/retail/backoffice/internal/application/inventory"
	"github.com/retail/backoffice/internal/domain/shared"
)

// InventoryHandler serves movements, stock, counts and cost lots
type InventoryHandler struct {
	BaseHandler
	inventoryService *appinventory.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *appinventory.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// RecordMovement godoc
// @Summary      Record a stock movement
// @Tags         inventory
// @Router       /movements [post]
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appinventory.RecordMovementInput
	if !h.bindJSON(c, &req) {
		return
	}
	req.DeviceID = deviceOr(c, req.DeviceID)

	movement, err := h.inventoryService.RecordMovement(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// ListMovements godoc
// @Summary      List stock movements
// @Tags         inventory
// @Router       /movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter appinventory.MovementListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	rows, total, err := h.inventoryService.ListMovements(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, rows, total, page.Page, page.PageSize)
}

// CurrentStock godoc
// @Summary      Current stock of a product in base units
// @Tags         inventory
// @Router       /products/{id}/stock [get]
func (h *InventoryHandler) CurrentStock(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	stock, err := h.inventoryService.CurrentStock(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// RecordInventoryCount records a physical count and adjusts stock to it
func (h *InventoryHandler) RecordInventoryCount(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appinventory.InventoryCountInput
	if !h.bindJSON(c, &req) {
		return
	}
	req.ProductID = productID
	req.DeviceID = deviceOr(c, req.DeviceID)

	result, err := h.inventoryService.RecordInventoryCount(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListLots lists a product's cost lots, oldest first. available=true hides
// exhausted lots.
func (h *InventoryHandler) ListLots(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	lots, err := h.inventoryService.ListLots(c.Request.Context(), tenantID, productID, c.Query("available") == "true")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lots)
}
