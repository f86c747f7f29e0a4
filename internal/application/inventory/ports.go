package inventory

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock:
// ajuste y traslado mutan filas y escriben movimientos en un solo commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.WarehouseStockRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
