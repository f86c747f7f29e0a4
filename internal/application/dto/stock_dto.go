package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// AdjustStockRequest entrada del RPC de ajuste atómico de stock.
// QuantityChange con signo: positivo entrada, negativo salida.
type AdjustStockRequest struct {
	ProductID      string          `json:"product_id"`
	WarehouseID    string          `json:"warehouse_id"`
	VariationID    *string         `json:"variation_id,omitempty"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	MovementType   string          `json:"movement_type"` // purchase, sale, adjustment, return
	Reason         string          `json:"reason,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// TransferStockRequest entrada del RPC de traslado atómico entre bodegas.
type TransferStockRequest struct {
	ProductID       string          `json:"product_id"`
	VariationID     *string         `json:"variation_id,omitempty"`
	FromWarehouseID string          `json:"from_warehouse_id"`
	ToWarehouseID   string          `json:"to_warehouse_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Reason          string          `json:"reason,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// ReservationRequest entrada de los RPC de reserva y liberación.
type ReservationRequest struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	VariationID *string         `json:"variation_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// WarehouseStockDTO fila de stock por bodega en el wire.
type WarehouseStockDTO struct {
	ProductID      string          `json:"product_id"`
	WarehouseID    string          `json:"warehouse_id"`
	VariationID    *string         `json:"variation_id,omitempty"`
	CurrentStock   decimal.Decimal `json:"current_stock"`
	ReservedStock  decimal.Decimal `json:"reserved_stock"`
	AvailableStock decimal.Decimal `json:"available_stock"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// StockRowsResponse listado de filas de stock de un producto.
type StockRowsResponse struct {
	Rows []WarehouseStockDTO `json:"rows"`
}

// StockSummaryResponse resumen agregado de stock.
type StockSummaryResponse struct {
	TotalStock      decimal.Decimal     `json:"total_stock"`
	AvailableStock  decimal.Decimal     `json:"available_stock"`
	ReservedStock   decimal.Decimal     `json:"reserved_stock"`
	WarehouseStocks []WarehouseStockDTO `json:"warehouse_stocks"`
}

// StockMovementDTO movimiento de stock en el wire.
type StockMovementDTO struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	VariationID   *string         `json:"variation_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Direction     string          `json:"direction"`
	Type          string          `json:"type"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
	Reason        string          `json:"reason,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	TransferRef   string          `json:"transfer_ref,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementsResponse listado paginado de movimientos (kardex).
type MovementsResponse struct {
	Movements []StockMovementDTO `json:"movements"`
	Page      PageResponse       `json:"page"`
}

// ── Conversores entidad <-> DTO ───────────────────────────────────────────────

// FromWarehouseStock mapea la entidad a su DTO (available derivado).
func FromWarehouseStock(s *entity.WarehouseStock) WarehouseStockDTO {
	return WarehouseStockDTO{
		ProductID:      s.ProductID,
		WarehouseID:    s.WarehouseID,
		VariationID:    s.VariationID,
		CurrentStock:   s.CurrentStock,
		ReservedStock:  s.ReservedStock,
		AvailableStock: s.AvailableStock(),
		UpdatedAt:      s.UpdatedAt,
	}
}

// ToWarehouseStock mapea el DTO a la entidad (available se descarta, es derivado).
func (d WarehouseStockDTO) ToWarehouseStock() entity.WarehouseStock {
	return entity.WarehouseStock{
		ProductID:     d.ProductID,
		WarehouseID:   d.WarehouseID,
		VariationID:   d.VariationID,
		CurrentStock:  d.CurrentStock,
		ReservedStock: d.ReservedStock,
		UpdatedAt:     d.UpdatedAt,
	}
}

// FromStockSummary mapea el resumen agregado a su DTO.
func FromStockSummary(s entity.StockSummary) StockSummaryResponse {
	rows := make([]WarehouseStockDTO, 0, len(s.WarehouseStocks))
	for i := range s.WarehouseStocks {
		rows = append(rows, FromWarehouseStock(&s.WarehouseStocks[i]))
	}
	return StockSummaryResponse{
		TotalStock:      s.TotalStock,
		AvailableStock:  s.AvailableStock,
		ReservedStock:   s.ReservedStock,
		WarehouseStocks: rows,
	}
}

// FromStockMovement mapea la entidad movimiento a su DTO.
func FromStockMovement(m *entity.StockMovement) StockMovementDTO {
	return StockMovementDTO{
		ID:            m.ID,
		ProductID:     m.ProductID,
		WarehouseID:   m.WarehouseID,
		VariationID:   m.VariationID,
		Quantity:      m.Quantity,
		Direction:     m.Direction,
		Type:          m.Type,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Reason:        m.Reason,
		Notes:         m.Notes,
		TransferRef:   m.TransferRef,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}
