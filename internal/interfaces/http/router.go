package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/till"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.LedgerUseCase
	Till      *till.UseCase
	JWTSecret string
	JWTIssuer string
	Logger    zerolog.Logger
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger.With().Str("component", "http").Logger()
	writers := RequireRole(RoleAdmin, RoleManager, RoleStaff)
	managers := RequireRole(RoleAdmin, RoleManager)

	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Inventory ledger
	inventoryHandler := NewInventoryHandler(deps.Ledger, log)
	inv := protected.Group("/inventory")
	inv.Post("/movements", writers, inventoryHandler.CreateMovement)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/movements/:id", inventoryHandler.GetMovement)
	inv.Post("/movements/:id/receive", writers, inventoryHandler.ReceiveMovement)
	inv.Get("/expiry", inventoryHandler.ExpiryProjection)
	inv.Get("/stock", inventoryHandler.ListStock)
	inv.Get("/replenishment", managers, inventoryHandler.Replenishment)

	protected.Get("/locations", inventoryHandler.Directory)

	// Till reconciliation
	tillHandler := NewTillHandler(deps.Till, log)
	tills := protected.Group("/tills")
	tills.Post("/open", writers, tillHandler.Open)
	tills.Post("/close", writers, tillHandler.Close)
	tills.Get("/summary", managers, tillHandler.Summary)
	tills.Get("/open/:location_id", tillHandler.GetOpen)
	tills.Get("/:id", tillHandler.Get)
}
