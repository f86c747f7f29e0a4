package entity

import "github.com/shopspring/decimal"

// StockSummary agrega todas las filas de stock de un producto (y opcionalmente
// una variación) en totales. Es derivado: se recalcula en cada lectura, nunca
// se persiste.
type StockSummary struct {
	TotalStock      decimal.Decimal
	AvailableStock  decimal.Decimal
	ReservedStock   decimal.Decimal
	WarehouseStocks []WarehouseStock
}

// SummarizeStocks calcula el resumen a partir de las filas por bodega.
// Con cero filas devuelve totales en cero y lista vacía (no es error).
func SummarizeStocks(rows []WarehouseStock) StockSummary {
	summary := StockSummary{
		TotalStock:      decimal.Zero,
		AvailableStock:  decimal.Zero,
		ReservedStock:   decimal.Zero,
		WarehouseStocks: rows,
	}
	if summary.WarehouseStocks == nil {
		summary.WarehouseStocks = []WarehouseStock{}
	}
	for i := range rows {
		summary.TotalStock = summary.TotalStock.Add(rows[i].CurrentStock)
		summary.ReservedStock = summary.ReservedStock.Add(rows[i].ReservedStock)
		summary.AvailableStock = summary.AvailableStock.Add(rows[i].AvailableStock())
	}
	return summary
}
