package router

import (
	"github.com/retail/backoffice/internal/interfaces/http/handler"
)

// Handlers are the HTTP handlers mounted under the API group
type Handlers struct {
	Inventory  *handler.InventoryHandler
	Product    *handler.ProductHandler
	Customer   *handler.CustomerHandler
	Sale       *handler.SaleHandler
	Purchase   *handler.PurchaseHandler
	Receivable *handler.ReceivableHandler
	Finance    *handler.FinanceHandler
	Report     *handler.ReportHandler
	Sync       *handler.SyncHandler
}

// LedgerRoutes builds the route groups of the ledger API
func LedgerRoutes(h Handlers) []RouteRegistrar {
	movements := NewDomainGroup("inventory", "/movements").
		POST("", h.Inventory.RecordMovement).
		GET("", h.Inventory.ListMovements)

	products := NewDomainGroup("catalog", "/products").
		POST("", h.Product.Create).
		GET("", h.Product.List).
		GET("/:id", h.Product.GetByID).
		POST("/:id/units", h.Product.AddUnit).
		GET("/:id/units", h.Product.ListUnits).
		GET("/:id/stock", h.Inventory.CurrentStock).
		GET("/:id/lots", h.Inventory.ListLots).
		POST("/:id/inventory-count", h.Inventory.RecordInventoryCount)

	customers := NewDomainGroup("partner", "/customers").
		POST("", h.Customer.Create).
		GET("", h.Customer.List).
		GET("/:id", h.Customer.GetByID)

	sales := NewDomainGroup("sales", "/sales").
		POST("", h.Sale.Create).
		GET("", h.Sale.List).
		GET("/:id", h.Sale.GetByID).
		PUT("/:id/items", h.Sale.ReplaceItems).
		PUT("/:id/notes", h.Sale.UpdateNotes).
		POST("/:id/confirm", h.Sale.Confirm).
		POST("/:id/cancel", h.Sale.Cancel)

	purchases := NewDomainGroup("purchases", "/purchases").
		POST("", h.Purchase.Create).
		GET("", h.Purchase.List).
		GET("/:id", h.Purchase.GetByID).
		POST("/:id/cancel", h.Purchase.Cancel)

	receivables := NewDomainGroup("receivables", "/receivables").
		POST("", h.Receivable.Create).
		GET("", h.Receivable.List).
		GET("/:id", h.Receivable.GetByID).
		POST("/:id/settle", h.Receivable.Settle)

	finance := NewDomainGroup("finance", "/finance")
	finance.Group("entries", "/entries").
		POST("", h.Finance.CreateEntry).
		GET("/due", h.Finance.ListDueEntries).
		POST("/:id/pay", h.Finance.PayEntry).
		POST("/:id/cancel", h.Finance.CancelEntry)

	accounts := NewDomainGroup("accounts", "/accounts").
		POST("", h.Finance.CreateAccount).
		GET("", h.Finance.ListAccounts)

	closures := NewDomainGroup("closures", "/closures").
		POST("", h.Finance.CreateClosure).
		GET("", h.Finance.ListClosures).
		GET("/export", h.Report.ExportClosures)

	installments := NewDomainGroup("installments", "/installments").
		POST("/preview", h.Finance.PreviewInstallments)

	sync := NewDomainGroup("sync", "/sync").
		POST("", h.Sync.Apply)

	return []RouteRegistrar{
		movements, products, customers, sales, purchases,
		receivables, finance, accounts, closures, installments, sync,
	}
}
