package handler

import (
	"github.com/gin-gonic/gin"
	appsync "github.com/retail/backoffice/internal/application/sync"
)

// SyncRequest is a batch of changes recorded offline by a device
type SyncRequest struct {
	Changes []appsync.Envelope `json:"changes" binding:"required,min=1,max=500,dive"`
}

// SyncHandler accepts offline change batches
type SyncHandler struct {
	BaseHandler
	dispatcher *appsync.Dispatcher
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(dispatcher *appsync.Dispatcher) *SyncHandler {
	return &SyncHandler{dispatcher: dispatcher}
}

// Apply godoc
// @Summary      Apply a batch of device changes
// @Description  Every change is applied once per id. A malformed batch is
// @Description  rejected whole; a change failing in the ledger does not stop the rest.
// @Tags         sync
// @Router       /sync [post]
func (h *SyncHandler) Apply(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req SyncRequest
	if !h.bindJSON(c, &req) {
		return
	}

	changes, err := appsync.DecodeAll(req.Changes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, h.dispatcher.Apply(c.Request.Context(), tenantID, changes))
}
