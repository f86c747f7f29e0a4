package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario multi-bodega.
// HasVariations indica si el stock se lleva por variación (talla, color);
// en ese caso cada fila de WarehouseStock lleva VariationID no nulo.
type Product struct {
	ID            string
	CompanyID     string
	SKU           string // código único por empresa
	Name          string
	Description   string
	Price         decimal.Decimal
	Cost          decimal.Decimal
	UnitMeasure   string
	HasVariations bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductVariation es una variante concreta de un producto variable.
type ProductVariation struct {
	ID        string
	ProductID string
	Name      string // ej. "Talla M / Rojo"
	SKU       string
	CreatedAt time.Time
}
