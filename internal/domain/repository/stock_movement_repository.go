package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// MovementFilter acota el listado de movimientos (kardex).
type MovementFilter struct {
	WarehouseID string     // vacío = todas las bodegas
	VariationID *string    // nil = todas las variaciones
	From        *time.Time // nil = sin límite inferior
	To          *time.Time // nil = sin límite superior
	Limit       int
	Offset      int
}

// StockMovementRepository define el puerto del libro de movimientos.
// Los movimientos son inmutables: solo Create y lecturas.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve movimientos del producto, más recientes primero.
	ListByProduct(ctx context.Context, productID string, filter MovementFilter) ([]entity.StockMovement, error)
	// CountByProduct devuelve el total de movimientos que cumplen el filtro.
	CountByProduct(ctx context.Context, productID string, filter MovementFilter) (int, error)
}
