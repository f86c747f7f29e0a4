package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/catalog"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/application/reports"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC      *inventory.StockUseCase
	KardexUC     *reports.KardexUseCase
	CatalogUC    *catalog.CatalogUseCase
	AuthUC       *auth.AuthUseCase
	JWTSecret    string
	RefreshGrace time.Duration // ventana para canjear un token ya expirado en /refresh
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Onboarding y auth. Refresh acepta un token expirado dentro de la
	// ventana de gracia (firma válida), para que una sesión vencida pueda
	// renovarse sin volver a pedir credenciales.
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/companies", authHandler.RegisterCompany)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", RefreshAuthMiddleware(deps.JWTSecret, deps.RefreshGrace), authHandler.Refresh)

	// Catálogo (protegido). Lecturas para cualquier rol autenticado; las
	// altas y ediciones son del administrador.
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	adminOnly := RequireRole(entity.RoleAdmin)
	products := api.Group("/products", AuthMiddleware(deps.JWTSecret))
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:productID", catalogHandler.GetProduct)
	products.Post("/", adminOnly, catalogHandler.CreateProduct)
	products.Put("/:productID", adminOnly, catalogHandler.UpdateProduct)

	warehouses := api.Group("/warehouses", AuthMiddleware(deps.JWTSecret))
	warehouses.Get("/", catalogHandler.ListWarehouses)
	warehouses.Post("/", adminOnly, catalogHandler.CreateWarehouse)
	warehouses.Put("/:warehouseID", adminOnly, catalogHandler.UpdateWarehouse)

	// Stock (protegido). Lecturas para cualquier rol autenticado; las
	// mutaciones requieren un rol que pueda mover stock, salvo reserva y
	// liberación que también hace el vendedor al vender.
	stock := api.Group("/stock", AuthMiddleware(deps.JWTSecret))
	stockHandler := NewStockHandler(deps.StockUC, deps.KardexUC)
	stock.Get("/:productID/rows", stockHandler.Rows)
	stock.Get("/:productID/summary", stockHandler.Summary)
	stock.Get("/:productID/movements", stockHandler.Movements)
	stock.Get("/:productID/kardex.pdf", stockHandler.KardexPDF)

	canMove := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)
	stock.Post("/adjust", canMove, stockHandler.Adjust)
	stock.Post("/transfer", canMove, stockHandler.Transfer)

	canReserve := RequireRole(entity.RoleAdmin, entity.RoleBodeguero, entity.RoleVendedor)
	stock.Post("/reserve", canReserve, stockHandler.Reserve)
	stock.Post("/release", canReserve, stockHandler.Release)
}
