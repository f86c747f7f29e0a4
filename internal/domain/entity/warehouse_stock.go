package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseStock representa el stock de un producto (y opcionalmente una
// variación) en una bodega. AvailableStock es derivado: current - reserved.
// La invariante reserved <= current la garantizan las operaciones atómicas
// del backend, no el cliente.
type WarehouseStock struct {
	ProductID     string
	WarehouseID   string
	VariationID   *string // nil = producto sin dimensión de variación
	CurrentStock  decimal.Decimal
	ReservedStock decimal.Decimal
	UpdatedAt     time.Time
}

// AvailableStock devuelve el stock disponible (actual menos reservado).
func (s *WarehouseStock) AvailableStock() decimal.Decimal {
	return s.CurrentStock.Sub(s.ReservedStock)
}
