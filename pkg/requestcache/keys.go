package requestcache

import "strings"

// Claves de caché — un solo lugar para que no se dispersen por el código.
// Convención: "<dominio>-<calificador>[-<calificador>...]".

// CriticalPrefixes son los dominios de cambio frecuente que usan el TTL corto.
// Debe mantenerse alineada con cómo se nombran las claves en los call sites.
var CriticalPrefixes = []string{
	"sales-",
	"purchases-",
	"inventory-",
	"stock-",
	"accounts-",
	"transactions-",
}

// StockKey clave para el resumen de stock de un producto (y variación opcional).
func StockKey(productID string, variationID *string) string {
	if variationID != nil && *variationID != "" {
		return "stock-" + productID + "-" + *variationID
	}
	return "stock-" + productID
}

// MovementsKey clave para el listado de movimientos de un producto.
func MovementsKey(productID string) string {
	return "inventory-movements-" + productID
}

// WarehousesKey clave para el listado de bodegas de una empresa.
func WarehousesKey(companyID string) string {
	return "warehouses-" + companyID
}

func containsSubstring(key, substring string) bool {
	return strings.Contains(key, substring)
}
