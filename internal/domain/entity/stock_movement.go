package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de movimiento.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Tipos de movimiento de stock.
const (
	MovementTypePurchase   = "purchase"
	MovementTypeSale       = "sale"
	MovementTypeAdjustment = "adjustment"
	MovementTypeTransfer   = "transfer"
	MovementTypeReturn     = "return"
)

// ValidMovementType indica si type es uno de los tipos conocidos.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypePurchase, MovementTypeSale, MovementTypeAdjustment,
		MovementTypeTransfer, MovementTypeReturn:
		return true
	}
	return false
}

// StockMovement es el registro inmutable de auditoría de un cambio de stock.
// Se crea solo como efecto de una operación de stock; nunca se actualiza ni
// se borra. Quantity lleva signo (positivo entrada, negativo salida) y
// PreviousStock/NewStock capturan el stock de la bodega antes y después.
// TransferRef enlaza los dos movimientos de un traslado (salida y entrada).
type StockMovement struct {
	ID            string
	ProductID     string
	WarehouseID   string
	VariationID   *string
	Quantity      decimal.Decimal
	Direction     string // in, out
	Type          string // purchase, sale, adjustment, transfer, return
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	Reason        string
	Notes         string
	TransferRef   string // vacío salvo en traslados
	CreatedBy     string
	CreatedAt     time.Time
}
