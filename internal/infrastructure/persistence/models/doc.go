// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, TenantModel, TenantAggregateModel)
// - catalog.go: products and product units
// - partner.go: customers
// - inventory.go: inventory movements and cost lots
// - trade.go: sales, purchases and the coupon sequence
// - finance.go: accounts, payments, receivables, finance entries, monthly closures
package models

// All returns every model, in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&ProductModel{},
		&ProductUnitModel{},
		&CustomerModel{},
		&AccountModel{},
		&InventoryMovementModel{},
		&CostLotModel{},
		&SaleModel{},
		&SaleItemModel{},
		&PurchaseModel{},
		&PurchaseItemModel{},
		&PurchaseCostModel{},
		&CouponSequenceModel{},
		&PaymentModel{},
		&ReceivableModel{},
		&ReceivableSettlementModel{},
		&FinanceEntryModel{},
		&MonthlyClosureModel{},
	}
}
