package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	appreport "github.com/retail/backoffice/internal/application/report"
)

// ReportHandler serves spreadsheet exports
type ReportHandler struct {
	BaseHandler
	exportService *appreport.ExportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(exportService *appreport.ExportService) *ReportHandler {
	return &ReportHandler{exportService: exportService}
}

// ExportClosures godoc
// @Summary      Export an account's closures as XLSX
// @Description  Answers with a download link when object storage is configured, else with the file itself
// @Tags         closures
// @Router       /closures/export [get]
func (h *ReportHandler) ExportClosures(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	accountID, ok := h.accountQuery(c)
	if !ok {
		return
	}

	result, err := h.exportService.ExportClosures(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Stored() {
		h.Success(c, result)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	c.Data(http.StatusOK, appreport.XLSXContentType, result.Content)
}
