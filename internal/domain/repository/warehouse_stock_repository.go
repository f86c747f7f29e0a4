package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// WarehouseStockRepository define el puerto para leer y mutar filas de stock
// por bodega (DIP). Las mutaciones condicionales (Reserve/Release) deben ser
// atómicas a nivel de base de datos: una sola sentencia condicional, sin
// leer-modificar-escribir en el cliente.
type WarehouseStockRepository interface {
	// Get obtiene la fila de stock; devuelve fila en cero si no existe.
	Get(ctx context.Context, productID, warehouseID string, variationID *string) (*entity.WarehouseStock, error)
	// GetForUpdate obtiene la fila bloqueándola (SELECT FOR UPDATE). Solo
	// válido dentro de una transacción.
	GetForUpdate(ctx context.Context, productID, warehouseID string, variationID *string) (*entity.WarehouseStock, error)
	// ListByProduct devuelve todas las filas del producto; si variationID no
	// es nil, filtra a esa variación.
	ListByProduct(ctx context.Context, productID string, variationID *string) ([]entity.WarehouseStock, error)
	// Upsert inserta o actualiza current/reserved de la fila.
	Upsert(ctx context.Context, stock *entity.WarehouseStock) error
	// Reserve incrementa reserved_stock solo si available >= quantity, en una
	// sola sentencia. Devuelve false si no había stock disponible suficiente.
	Reserve(ctx context.Context, productID, warehouseID string, variationID *string, quantity decimal.Decimal) (bool, error)
	// Release decrementa reserved_stock solo si reserved >= quantity, en una
	// sola sentencia. Devuelve false si no había stock reservado suficiente.
	Release(ctx context.Context, productID, warehouseID string, variationID *string, quantity decimal.Decimal) (bool, error)
}
