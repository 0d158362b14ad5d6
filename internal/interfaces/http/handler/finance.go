package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	"github.com/retail/backoffice/internal/domain/shared"
)

// FinanceHandler serves accounts, finance entries, monthly closures and
// installment previews
type FinanceHandler struct {
	BaseHandler
	accountService      *appfinance.AccountService
	entryService        *appfinance.EntryService
	closureService      *appfinance.ClosureService
	defaultIntervalDays int
	now                 func() time.Time
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(
	accountService *appfinance.AccountService,
	entryService *appfinance.EntryService,
	closureService *appfinance.ClosureService,
	defaultIntervalDays int,
) *FinanceHandler {
	return &FinanceHandler{
		accountService:      accountService,
		entryService:        entryService,
		closureService:      closureService,
		defaultIntervalDays: defaultIntervalDays,
		now:                 time.Now,
	}
}

// PayEntryRequest settles an entry, at paid_at when given
type PayEntryRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// CreateAccount creates a cash or bank account
func (h *FinanceHandler) CreateAccount(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appfinance.CreateAccountInput
	if !h.bindJSON(c, &req) {
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// ListAccounts lists the tenant's accounts
func (h *FinanceHandler) ListAccounts(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// CreateEntry godoc
// @Summary      Record a manual income or expense
// @Tags         finance
// @Router       /finance/entries [post]
func (h *FinanceHandler) CreateEntry(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appfinance.CreateEntryInput
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.entryService.CreateEntry(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// ListDueEntries godoc
// @Summary      Sweep scheduled entries and list the ones due
// @Tags         finance
// @Router       /finance/entries/due [get]
func (h *FinanceHandler) ListDueEntries(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	page := shared.Filter{Page: queryInt(c, "page", 1), PageSize: queryInt(c, "page_size", 20)}.Normalize()

	entries, total, err := h.entryService.ListDueEntries(c.Request.Context(), tenantID, h.now(), page.Page, page.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, page.Page, page.PageSize)
}

// PayEntry settles a scheduled or due entry
func (h *FinanceHandler) PayEntry(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req PayEntryRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	paidAt := h.now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	entry, err := h.entryService.PayEntry(c.Request.Context(), tenantID, id, paidAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// CancelEntry voids an unpaid entry
func (h *FinanceHandler) CancelEntry(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.entryService.CancelEntry(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// CreateClosure godoc
// @Summary      Close an account for a month
// @Tags         closures
// @Router       /closures [post]
func (h *FinanceHandler) CreateClosure(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req appfinance.CreateClosureInput
	if !h.bindJSON(c, &req) {
		return
	}

	closure, err := h.closureService.CreateClosure(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, closure)
}

// ListClosures lists an account's closures, oldest month first
func (h *FinanceHandler) ListClosures(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	accountID, ok := h.accountQuery(c)
	if !ok {
		return
	}

	closures, err := h.closureService.ListClosures(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, closures)
}

// PreviewInstallments splits a total into installments without saving anything
func (h *FinanceHandler) PreviewInstallments(c *gin.Context) {
	if _, ok := h.tenant(c); !ok {
		return
	}
	var req appfinance.InstallmentPreviewInput
	if !h.bindJSON(c, &req) {
		return
	}

	schedule, err := appfinance.PreviewInstallments(req, h.defaultIntervalDays, h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schedule)
}
