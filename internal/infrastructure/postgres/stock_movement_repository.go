package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo persistencia del kardex (movimientos de stock).
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, product_id, warehouse_id, variation_id, quantity, direction,
	movement_type, previous_stock, new_stock, reason, notes, transfer_ref, created_by, created_at`

// Create registra un movimiento. Los movimientos son inmutables: solo insert.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.WarehouseID, m.VariationID,
		m.Quantity, m.Direction, m.Type,
		m.PreviousStock, m.NewStock,
		m.Reason, m.Notes, m.TransferRef, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByProduct lista movimientos del producto, más recientes primero,
// aplicando los filtros opcionales.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, filter repository.MovementFilter) ([]entity.StockMovement, error) {
	where, args := movementWhere(productID, filter)
	query := `SELECT ` + movementColumns + ` FROM stock_movements ` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var list []entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.WarehouseID, &m.VariationID,
			&m.Quantity, &m.Direction, &m.Type,
			&m.PreviousStock, &m.NewStock,
			&m.Reason, &m.Notes, &m.TransferRef, &m.CreatedBy, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// CountByProduct total de movimientos bajo los mismos filtros (para paginación).
func (r *StockMovementRepo) CountByProduct(ctx context.Context, productID string, filter repository.MovementFilter) (int, error) {
	where, args := movementWhere(productID, filter)
	var count int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements `+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count stock movements: %w", err)
	}
	return count, nil
}

func movementWhere(productID string, filter repository.MovementFilter) (string, []any) {
	conds := []string{"product_id = $1"}
	args := []any{productID}
	if filter.WarehouseID != "" {
		args = append(args, filter.WarehouseID)
		conds = append(conds, fmt.Sprintf("warehouse_id = $%d", len(args)))
	}
	if filter.VariationID != nil {
		args = append(args, *filter.VariationID)
		conds = append(conds, fmt.Sprintf("variation_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
