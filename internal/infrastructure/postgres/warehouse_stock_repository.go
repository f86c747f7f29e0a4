package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.WarehouseStockRepository = (*WarehouseStockRepo)(nil)

// WarehouseStockRepo implementación de WarehouseStockRepository sobre
// PostgreSQL (usable con pool o tx). La clave lógica de la tabla es
// (product_id, warehouse_id, COALESCE(variation_id, '')): un NULL en
// variation_id representa producto sin variaciones.
type WarehouseStockRepo struct {
	q Querier
}

// NewWarehouseStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWarehouseStockRepository(q Querier) *WarehouseStockRepo {
	return &WarehouseStockRepo{q: q}
}

// Get obtiene la fila de stock; fila en cero si no existe (no es error).
func (r *WarehouseStockRepo) Get(ctx context.Context, productID, warehouseID string, variationID *string) (*entity.WarehouseStock, error) {
	query := `
		SELECT product_id, warehouse_id, variation_id, current_stock, reserved_stock, updated_at
		FROM warehouse_stock
		WHERE product_id = $1 AND warehouse_id = $2
		  AND COALESCE(variation_id, '') = COALESCE($3::text, '')`
	return r.scanRow(r.q.QueryRow(ctx, query, productID, warehouseID, variationID), productID, warehouseID, variationID, "get warehouse stock")
}

// GetForUpdate obtiene la fila bloqueándola (SELECT FOR UPDATE). Solo tiene
// sentido dentro de una transacción.
func (r *WarehouseStockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string, variationID *string) (*entity.WarehouseStock, error) {
	query := `
		SELECT product_id, warehouse_id, variation_id, current_stock, reserved_stock, updated_at
		FROM warehouse_stock
		WHERE product_id = $1 AND warehouse_id = $2
		  AND COALESCE(variation_id, '') = COALESCE($3::text, '')
		FOR UPDATE`
	return r.scanRow(r.q.QueryRow(ctx, query, productID, warehouseID, variationID), productID, warehouseID, variationID, "get warehouse stock for update")
}

func (r *WarehouseStockRepo) scanRow(row pgx.Row, productID, warehouseID string, variationID *string, op string) (*entity.WarehouseStock, error) {
	var s entity.WarehouseStock
	err := row.Scan(&s.ProductID, &s.WarehouseID, &s.VariationID, &s.CurrentStock, &s.ReservedStock, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.WarehouseStock{
				ProductID:     productID,
				WarehouseID:   warehouseID,
				VariationID:   variationID,
				CurrentStock:  decimal.Zero,
				ReservedStock: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

// ListByProduct devuelve todas las filas del producto; variationID no nulo
// filtra a esa variación.
func (r *WarehouseStockRepo) ListByProduct(ctx context.Context, productID string, variationID *string) ([]entity.WarehouseStock, error) {
	query := `
		SELECT product_id, warehouse_id, variation_id, current_stock, reserved_stock, updated_at
		FROM warehouse_stock
		WHERE product_id = $1
		  AND ($2::text IS NULL OR variation_id = $2)
		ORDER BY warehouse_id`
	rows, err := r.q.Query(ctx, query, productID, variationID)
	if err != nil {
		return nil, fmt.Errorf("list warehouse stock: %w", err)
	}
	defer rows.Close()
	var list []entity.WarehouseStock
	for rows.Next() {
		var s entity.WarehouseStock
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.VariationID, &s.CurrentStock, &s.ReservedStock, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Upsert inserta o actualiza current/reserved de la fila.
func (r *WarehouseStockRepo) Upsert(ctx context.Context, stock *entity.WarehouseStock) error {
	query := `
		INSERT INTO warehouse_stock (product_id, warehouse_id, variation_id, current_stock, reserved_stock, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (product_id, warehouse_id, COALESCE(variation_id, ''))
		DO UPDATE SET current_stock = EXCLUDED.current_stock,
		              reserved_stock = EXCLUDED.reserved_stock,
		              updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		stock.ProductID, stock.WarehouseID, stock.VariationID,
		stock.CurrentStock, stock.ReservedStock,
	)
	if err != nil {
		return fmt.Errorf("upsert warehouse stock: %w", err)
	}
	return nil
}

// Reserve incrementa reserved_stock en una sola sentencia condicional:
// comparación y escritura atómicas, sin leer-modificar-escribir en el
// cliente. false = no había disponible suficiente (cero filas afectadas).
func (r *WarehouseStockRepo) Reserve(ctx context.Context, productID, warehouseID string, variationID *string, quantity decimal.Decimal) (bool, error) {
	query := `
		UPDATE warehouse_stock
		SET reserved_stock = reserved_stock + $4, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2
		  AND COALESCE(variation_id, '') = COALESCE($3::text, '')
		  AND current_stock - reserved_stock >= $4`
	tag, err := r.q.Exec(ctx, query, productID, warehouseID, variationID, quantity)
	if err != nil {
		return false, fmt.Errorf("reserve stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Release decrementa reserved_stock con la misma forma condicional:
// false = no había reservado suficiente.
func (r *WarehouseStockRepo) Release(ctx context.Context, productID, warehouseID string, variationID *string, quantity decimal.Decimal) (bool, error) {
	query := `
		UPDATE warehouse_stock
		SET reserved_stock = reserved_stock - $4, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2
		  AND COALESCE(variation_id, '') = COALESCE($3::text, '')
		  AND reserved_stock >= $4`
	tag, err := r.q.Exec(ctx, query, productID, warehouseID, variationID, quantity)
	if err != nil {
		return false, fmt.Errorf("release stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
