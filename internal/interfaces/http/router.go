package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/application/replenishment"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *ledger.UseCase
	Replenishment *replenishment.Manager
	JWTSecret     string
}

// Router registra las rutas de la API. Todo el libro de movimientos es
// protegido: cada asiento lleva el actor que sale del token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Libro de movimientos (protegido)
	ledgerGroup := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.Ledger)
	ledgerGroup.Post("/entries", ledgerHandler.RecordEntry)
	ledgerGroup.Post("/exits", ledgerHandler.RecordExit)
	ledgerGroup.Post("/losses", ledgerHandler.RecordLoss)
	ledgerGroup.Post("/returns", ledgerHandler.RecordReturn)
	ledgerGroup.Post("/transfers", ledgerHandler.RecordTransfer)
	ledgerGroup.Post("/adjustments", RequireRole("admin", "supervisor"), ledgerHandler.RecordAdjustment)
	ledgerGroup.Post("/reservations", ledgerHandler.Reserve)
	ledgerGroup.Post("/reservations/release", ledgerHandler.Release)
	ledgerGroup.Get("/movements", ledgerHandler.ListMovements)
	ledgerGroup.Post("/movements/:id/cancel", RequireRole("admin", "supervisor"), ledgerHandler.CancelMovement)

	// Registros de stock (protegido)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger)
	stockGroup.Get("/:item_id/:location_id", stockHandler.GetRecord)
	stockGroup.Put("/:item_id/:location_id/thresholds", RequireRole("admin", "supervisor"), stockHandler.UpdateThresholds)
	stockGroup.Put("/:item_id/:location_id/status", RequireRole("admin"), stockHandler.SetStatus)
	stockGroup.Get("/:item_id/:location_id/alerts", stockHandler.OpenAlerts)

	// Reposición (protegido)
	replGroup := protected.Group("/replenishment")
	replHandler := NewReplenishmentHandler(deps.Replenishment)
	replGroup.Post("/suggest", replHandler.Suggest)
	replGroup.Get("/", replHandler.List)
	replGroup.Get("/record/:item_id/:location_id", replHandler.OpenForRecord)
	replGroup.Post("/:id/approve", RequireRole("admin", "supervisor"), replHandler.Approve)
	replGroup.Post("/:id/request", RequireRole("admin", "supervisor"), replHandler.PlaceOrder)
	replGroup.Post("/:id/in-transit", replHandler.MarkInTransit)
	replGroup.Post("/:id/receive", replHandler.Receive)
	replGroup.Post("/:id/cancel", RequireRole("admin", "supervisor"), replHandler.Cancel)
}
