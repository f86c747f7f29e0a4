// Package stockclient es el SDK de stock multi-bodega: lecturas agregadas
// pasando por la caché de peticiones y mutaciones como llamadas RPC únicas
// que el backend ejecuta de forma atómica. El cliente no hace
// leer-modificar-escribir local sobre cantidades; solo verifica
// precondiciones baratas antes de llamar.
package stockclient

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/pkg/logger"
	"github.com/jhoicas/Almacen-api/pkg/requestcache"
)

// Backend define el puerto de salida hacia las operaciones remotas de stock.
// Cada mutación es una sola llamada que el backend ejecuta atómicamente
// (incluida la escritura del movimiento de auditoría). Para tests se inyecta
// un fake.
type Backend interface {
	// ListStockRows devuelve las filas de stock del producto; variationID nil
	// trae todas las variaciones (y los productos sin variación).
	ListStockRows(ctx context.Context, productID string, variationID *string) ([]entity.WarehouseStock, error)
	// AdjustStock aplica el cambio con signo y registra un movimiento, como
	// un solo paso indivisible.
	AdjustStock(ctx context.Context, req dto.AdjustStockRequest) (bool, error)
	// TransferStock mueve quantity entre bodegas y registra dos movimientos
	// enlazados, como un solo paso indivisible.
	TransferStock(ctx context.Context, req dto.TransferStockRequest) (bool, error)
	// Reserve incrementa el stock reservado solo si hay disponible suficiente
	// (comparación y escritura atómicas en el backend).
	Reserve(ctx context.Context, req dto.ReservationRequest) (bool, error)
	// Release decrementa el stock reservado solo si hay reservado suficiente.
	Release(ctx context.Context, req dto.ReservationRequest) (bool, error)
}

// Client orquesta las operaciones de stock sobre Backend y la caché.
type Client struct {
	backend Backend
	cache   *requestcache.Cache
	log     *logger.Logger
}

// New construye el cliente. La caché es obligatoria: las lecturas de stock
// pasan siempre por ella.
func New(backend Backend, cache *requestcache.Cache, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{backend: backend, cache: cache, log: log}
}

// GetStockSummary agrega las filas de stock del producto (y variación
// opcional) en totales. Lectura read-through: clave "stock-<producto>[-<variación>]".
// Cero filas devuelve resumen en cero, no error.
func (c *Client) GetStockSummary(ctx context.Context, productID string, variationID *string) (entity.StockSummary, error) {
	key := requestcache.StockKey(productID, variationID)
	return requestcache.GetTyped(ctx, c.cache, key, func(ctx context.Context) (entity.StockSummary, error) {
		rows, err := c.backend.ListStockRows(ctx, productID, variationID)
		if err != nil {
			return entity.StockSummary{}, err
		}
		return entity.SummarizeStocks(rows), nil
	})
}

// GetWarehouseStock devuelve la fila fresca de una bodega concreta (sin caché:
// se usa para verificar precondiciones de reserva).
func (c *Client) GetWarehouseStock(ctx context.Context, productID, warehouseID string, variationID *string) (*entity.WarehouseStock, error) {
	rows, err := c.backend.ListStockRows(ctx, productID, variationID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].WarehouseID == warehouseID && sameVariation(rows[i].VariationID, variationID) {
			return &rows[i], nil
		}
	}
	// Sin fila: stock cero, no error.
	return &entity.WarehouseStock{
		ProductID:     productID,
		WarehouseID:   warehouseID,
		VariationID:   variationID,
		CurrentStock:  decimal.Zero,
		ReservedStock: decimal.Zero,
	}, nil
}

// AdjustStock delega en el RPC atómico de ajuste. No valida no-negatividad
// del resultado: esa garantía pertenece a la operación remota.
func (c *Client) AdjustStock(ctx context.Context, req dto.AdjustStockRequest) (bool, error) {
	if req.ProductID == "" || req.WarehouseID == "" {
		return false, domain.NewError(domain.KindValidation, "product_id y warehouse_id son requeridos")
	}
	if req.QuantityChange.IsZero() {
		return false, domain.NewError(domain.KindValidation, "quantity_change no puede ser cero")
	}
	if !entity.ValidMovementType(req.MovementType) {
		return false, domain.NewError(domain.KindValidation, fmt.Sprintf("tipo de movimiento desconocido: %q", req.MovementType))
	}
	ok, err := c.backend.AdjustStock(ctx, req)
	if err != nil {
		return false, err
	}
	c.invalidateStock(req.ProductID)
	return ok, nil
}

// TransferStock delega en el RPC atómico de traslado. Rechaza en el cliente
// (sin llamada de red) el traslado a la misma bodega; nunca lo parte en dos
// ajustes porque eso no sería atómico ante fallo parcial.
func (c *Client) TransferStock(ctx context.Context, req dto.TransferStockRequest) (bool, error) {
	if req.FromWarehouseID == req.ToWarehouseID {
		return false, domain.WrapError(domain.KindValidation, domain.ErrSameWarehouse.Error(), domain.ErrSameWarehouse)
	}
	if !req.Quantity.GreaterThan(decimal.Zero) {
		return false, domain.NewError(domain.KindValidation, "quantity debe ser mayor que cero")
	}
	ok, err := c.backend.TransferStock(ctx, req)
	if err != nil {
		return false, err
	}
	c.invalidateStock(req.ProductID)
	return ok, nil
}

// ReserveStock toma una reserva blanda: verifica disponible >= quantity con
// una lectura fresca (error síncrono sin escritura si no alcanza) y luego
// delega en el RPC atómico, que repite la comparación al escribir. La
// corrección no depende de la verificación local.
func (c *Client) ReserveStock(ctx context.Context, req dto.ReservationRequest) (bool, error) {
	if !req.Quantity.GreaterThan(decimal.Zero) {
		return false, domain.NewError(domain.KindValidation, "quantity debe ser mayor que cero")
	}
	row, err := c.GetWarehouseStock(ctx, req.ProductID, req.WarehouseID, req.VariationID)
	if err != nil {
		return false, err
	}
	if row.AvailableStock().LessThan(req.Quantity) {
		return false, domain.WrapError(domain.KindInsufficientStock,
			fmt.Sprintf("stock disponible insuficiente: disponible %s, solicitado %s",
				row.AvailableStock().String(), req.Quantity.String()),
			domain.ErrInsufficientStock)
	}
	ok, err := c.backend.Reserve(ctx, req)
	if err != nil {
		return false, err
	}
	c.invalidateStock(req.ProductID)
	return ok, nil
}

// ReleaseReservedStock libera una reserva: verifica reservado >= quantity y
// delega en el RPC atómico.
func (c *Client) ReleaseReservedStock(ctx context.Context, req dto.ReservationRequest) (bool, error) {
	if !req.Quantity.GreaterThan(decimal.Zero) {
		return false, domain.NewError(domain.KindValidation, "quantity debe ser mayor que cero")
	}
	row, err := c.GetWarehouseStock(ctx, req.ProductID, req.WarehouseID, req.VariationID)
	if err != nil {
		return false, err
	}
	if row.ReservedStock.LessThan(req.Quantity) {
		return false, domain.WrapError(domain.KindInsufficientStock,
			fmt.Sprintf("stock reservado insuficiente: reservado %s, solicitado %s",
				row.ReservedStock.String(), req.Quantity.String()),
			domain.ErrInsufficientStock)
	}
	ok, err := c.backend.Release(ctx, req)
	if err != nil {
		return false, err
	}
	c.invalidateStock(req.ProductID)
	return ok, nil
}

// invalidateStock fuerza relectura de las claves del producto tras una
// mutación (las lecturas no pasan por la mutación, solo por la caché).
func (c *Client) invalidateStock(productID string) {
	c.cache.InvalidateByPattern("stock-" + productID)
	c.cache.InvalidateByPattern("inventory-")
}

func sameVariation(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
