package router

import "github.com/stockledger/backend/internal/interfaces/http/handler"

// Handlers bundles the HTTP handlers mounted by RegisterAPI
type Handlers struct {
	Catalog *handler.CatalogHandler
	Stock   *handler.StockHandler
	Intake  *handler.IntakeHandler
}

// RegisterAPI declares every API route. Kiosk reads and stock movements
// stay open; catalog writes, exports, cancellation and the intake workflow
// are back-office.
func RegisterAPI(r *Router, h Handlers) {
	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/categories", h.Catalog.ListCategories).
		GET("/items", h.Catalog.ListItems).
		GET("/items/:id/variants", h.Catalog.ListItemVariants).
		GET("/specs", h.Catalog.ListSpecs).
		GET("/variants", h.Catalog.ListVariants).
		GET("/users", h.Catalog.ListUsers)
	catalog.BackOffice().
		POST("/categories", h.Catalog.CreateCategory).
		DELETE("/categories/:id", h.Catalog.DeleteCategory).
		POST("/items", h.Catalog.CreateItem).
		POST("/items/quick", h.Catalog.QuickAddItem).
		POST("/specs", h.Catalog.CreateSpec).
		POST("/variants", h.Catalog.RegisterVariant).
		PATCH("/variants/:id", h.Catalog.UpdateVariant).
		POST("/users", h.Catalog.CreateUser)

	kiosk := NewDomainGroup("kiosk", "/kiosk")
	kiosk.GET("/catalog", h.Stock.KioskCatalog)

	stock := NewDomainGroup("stock", "/stock")
	stock.POST("/in", h.Stock.StockIn).
		POST("/out", h.Stock.StockOut).
		GET("/movements", h.Stock.ListMovements).
		GET("/usage", h.Stock.UsageStats)
	stock.BackOffice().
		GET("/movements/export", h.Stock.ExportMovements).
		POST("/movements/:id/cancel", h.Stock.CancelOut).
		GET("/usage/export", h.Stock.ExportUsage)

	intake := NewDomainGroup("intake", "/intake").BackOffice()
	intake.POST("/rows", h.Intake.SubmitRows).
		POST("/upload", h.Intake.UploadFile).
		GET("/batches", h.Intake.ListBatches).
		GET("/batches/:id/items", h.Intake.GetBatchItems).
		PUT("/batches/:id/quantities", h.Intake.UpdateQuantities).
		POST("/batches/:id/process", h.Intake.ProcessBatch).
		POST("/batches/:id/cancel", h.Intake.CancelBatch)

	r.Register(catalog).Register(kiosk).Register(stock).Register(intake)
}
