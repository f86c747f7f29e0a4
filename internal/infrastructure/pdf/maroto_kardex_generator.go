// Package pdf implementa la generación del reporte Kardex de un producto:
// historial de movimientos con stock antes/después, más el resumen vigente
// por bodega.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + SKU  │  "KARDEX" + Fecha de emisión     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Total / Reservado / Disponible + filas por bodega │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Bodega | Cant | Antes | Después      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Almacen-api/internal/application/reports"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 180, Green: 30, Blue: 30}
	colorGreen   = &props.Color{Red: 20, Green: 120, Blue: 50}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ reports.KardexPDFGenerator = (*MarotoKardexGenerator)(nil)

// MarotoKardexGenerator implementa reports.KardexPDFGenerator usando Maroto v2.
type MarotoKardexGenerator struct{}

// NewMarotoKardexGenerator construye el generador.
func NewMarotoKardexGenerator() *MarotoKardexGenerator { return &MarotoKardexGenerator{} }

// GenerateKardexPDF genera el PDF y devuelve sus bytes.
func (g *MarotoKardexGenerator) GenerateKardexPDF(
	_ context.Context,
	product *entity.Product,
	movements []entity.StockMovement,
	summary entity.StockSummary,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+product.SKU, true).
		Build()

	m := maroto.New(cfg)

	// Header principal
	m.AddRows(headerRow(product))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	// Resumen de stock vigente
	m.AddRows(summaryRow(summary))
	for _, r := range warehouseRows(summary.WarehouseStocks) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Tabla de movimientos
	m.AddRows(tableHeaderRow())
	for _, r := range movementRows(movements) {
		m.AddRows(r)
	}
	if len(movements) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos en el período seleccionado.", props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre + SKU (izq) y título + fecha de emisión (der).
func headerRow(product *entity.Product) core.Row {
	emitido := time.Now().Format("02/01/2006 15:04")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(product.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("SKU: "+product.SKU, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Emitido: "+emitido, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// summaryRow: totales vigentes del producto.
func summaryRow(summary entity.StockSummary) core.Row {
	metric := func(label, value string, color *props.Color) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: colorGray, Top: 1,
			}),
			text.New(value, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Center, Color: color, Top: 6,
			}),
		)
	}
	return row.New(15).Add(
		metric("STOCK TOTAL", summary.TotalStock.String(), colorPrimary),
		metric("RESERVADO", summary.ReservedStock.String(), colorRed),
		metric("DISPONIBLE", summary.AvailableStock.String(), colorGreen),
	)
}

// warehouseRows: una fila por bodega con stock del producto.
func warehouseRows(stocks []entity.WarehouseStock) []core.Row {
	result := make([]core.Row, 0, len(stocks))
	for _, s := range stocks {
		name := s.WarehouseID
		if s.VariationID != nil {
			name += " / " + *s.VariationID
		}
		result = append(result, row.New(5).Add(
			col.New(6).Add(text.New(name, props.Text{
				Size: 7.5, Align: align.Left, Top: 0.5, Left: 2, Color: colorGray,
			})),
			col.New(2).Add(text.New(s.CurrentStock.String(), props.Text{
				Size: 7.5, Align: align.Right, Top: 0.5,
			})),
			col.New(2).Add(text.New(s.ReservedStock.String(), props.Text{
				Size: 7.5, Align: align.Right, Top: 0.5, Color: colorRed,
			})),
			col.New(2).Add(text.New(s.AvailableStock().String(), props.Text{
				Size: 7.5, Align: align.Right, Top: 0.5, Color: colorGreen,
			})),
		))
	}
	return result
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Bodega", 3, align.Left),
		h("Cantidad", 1, align.Right),
		h("Antes", 2, align.Right),
		h("Después", 2, align.Right),
	)
}

// movementRows: una fila por movimiento, cantidad coloreada por dirección.
func movementRows(movements []entity.StockMovement) []core.Row {
	result := make([]core.Row, 0, len(movements))
	for _, mov := range movements {
		qtyColor := colorGreen
		if mov.Direction == entity.DirectionOut {
			qtyColor = colorRed
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(
				mov.CreatedAt.Format("02/01/2006 15:04"),
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				movementLabel(mov.Type),
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				mov.WarehouseID,
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				mov.Quantity.String(),
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Color: qtyColor},
			)),
			col.New(2).Add(text.New(
				mov.PreviousStock.String(),
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1, Color: colorGray},
			)),
			col.New(2).Add(text.New(
				mov.NewStock.String(),
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

// movementLabel traduce el tipo a la etiqueta del reporte.
func movementLabel(t string) string {
	switch t {
	case entity.MovementTypePurchase:
		return "Compra"
	case entity.MovementTypeSale:
		return "Venta"
	case entity.MovementTypeAdjustment:
		return "Ajuste"
	case entity.MovementTypeTransfer:
		return "Traslado"
	case entity.MovementTypeReturn:
		return "Devolución"
	}
	return t
}
