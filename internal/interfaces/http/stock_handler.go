package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/application/reports"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// StockHandler expone las operaciones de stock: lecturas (filas, resumen,
// kardex) y los RPC atómicos (ajuste, traslado, reserva, liberación).
type StockHandler struct {
	stockUC  *inventory.StockUseCase
	kardexUC *reports.KardexUseCase
}

// NewStockHandler construye el handler de stock.
func NewStockHandler(stockUC *inventory.StockUseCase, kardexUC *reports.KardexUseCase) *StockHandler {
	return &StockHandler{stockUC: stockUC, kardexUC: kardexUC}
}

// Rows godoc
// @Summary      Filas de stock por bodega de un producto
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        productID     path   string  true   "ID del producto"
// @Param        variation_id  query  string  false  "filtrar a una variación"
// @Success      200  {object}  dto.StockRowsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productID}/rows [get]
func (h *StockHandler) Rows(c *fiber.Ctx) error {
	rows, err := h.stockUC.Rows(c.Context(), GetCompanyID(c), c.Params("productID"), variationID(c))
	if err != nil {
		return stockError(c, err)
	}
	out := dto.StockRowsResponse{Rows: make([]dto.WarehouseStockDTO, 0, len(rows))}
	for i := range rows {
		out.Rows = append(out.Rows, dto.FromWarehouseStock(&rows[i]))
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen agregado de stock de un producto
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        productID     path   string  true   "ID del producto"
// @Param        variation_id  query  string  false  "filtrar a una variación"
// @Success      200  {object}  dto.StockSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productID}/summary [get]
func (h *StockHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.stockUC.Summary(c.Context(), GetCompanyID(c), c.Params("productID"), variationID(c))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(dto.FromStockSummary(summary))
}

// Adjust godoc
// @Summary      Ajuste atómico de stock
// @Description  Aplica quantity_change (con signo) y registra el movimiento en una transacción.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AdjustStockRequest  true  "ajuste"
// @Success      200   {object}  dto.SuccessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.stockUC.Adjust(c.Context(), inventory.AdjustInput{
		CompanyID:      GetCompanyID(c),
		UserID:         GetUserID(c),
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		VariationID:    in.VariationID,
		QuantityChange: in.QuantityChange,
		MovementType:   in.MovementType,
		Reason:         in.Reason,
		Notes:          in.Notes,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Transfer godoc
// @Summary      Traslado atómico entre bodegas
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.TransferStockRequest  true  "traslado"
// @Success      200   {object}  dto.SuccessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfer [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.stockUC.Transfer(c.Context(), inventory.TransferInput{
		CompanyID:       GetCompanyID(c),
		UserID:          GetUserID(c),
		ProductID:       in.ProductID,
		VariationID:     in.VariationID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Reason:          in.Reason,
		Notes:           in.Notes,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Reserve godoc
// @Summary      Reservar stock (comparación y escritura atómicas)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ReservationRequest  true  "reserva"
// @Success      200   {object}  dto.SuccessResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reserve [post]
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	return h.reservation(c, h.stockUC.Reserve)
}

// Release godoc
// @Summary      Liberar stock reservado
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ReservationRequest  true  "liberación"
// @Success      200   {object}  dto.SuccessResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/release [post]
func (h *StockHandler) Release(c *fiber.Ctx) error {
	return h.reservation(c, h.stockUC.Release)
}

func (h *StockHandler) reservation(c *fiber.Ctx, op func(ctx context.Context, input inventory.ReservationInput) error) error {
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := op(c.Context(), inventory.ReservationInput{
		CompanyID:   GetCompanyID(c),
		UserID:      GetUserID(c),
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		VariationID: in.VariationID,
		Quantity:    in.Quantity,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Movements godoc
// @Summary      Kardex del producto (movimientos, más recientes primero)
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        productID     path   string  true   "ID del producto"
// @Param        warehouse_id  query  string  false  "filtrar a una bodega"
// @Param        limit         query  int     false  "tamaño de página (default 20)"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productID}/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	filter := movementFilter(c)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	movements, total, err := h.stockUC.Movements(c.Context(), GetCompanyID(c), c.Params("productID"), filter)
	if err != nil {
		return stockError(c, err)
	}
	out := dto.MovementsResponse{
		Movements: make([]dto.StockMovementDTO, 0, len(movements)),
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for i := range movements {
		out.Movements = append(out.Movements, dto.FromStockMovement(&movements[i]))
	}
	return c.JSON(out)
}

// KardexPDF godoc
// @Summary      Kardex del producto en PDF
// @Tags         stock
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        productID     path   string  true   "ID del producto"
// @Param        warehouse_id  query  string  false  "filtrar a una bodega"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productID}/kardex.pdf [get]
func (h *StockHandler) KardexPDF(c *fiber.Ctx) error {
	pdfBytes, err := h.kardexUC.GenerateKardex(c.Context(), GetCompanyID(c), c.Params("productID"), movementFilter(c))
	if err != nil {
		return stockError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="kardex.pdf"`)
	return c.Send(pdfBytes)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// variationID lee el query param opcional variation_id (nil si ausente).
func variationID(c *fiber.Ctx) *string {
	if v := c.Query("variation_id"); v != "" {
		return &v
	}
	return nil
}

// movementFilter arma el filtro de kardex desde la query (fechas RFC 3339).
func movementFilter(c *fiber.Ctx) repository.MovementFilter {
	filter := repository.MovementFilter{
		WarehouseID: c.Query("warehouse_id"),
		VariationID: variationID(c),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}
	return filter
}

// stockError traduce errores de dominio a estado y código HTTP estables.
// El kind viaja en el campo code: el SDK cliente lo mapea de vuelta sin
// comparar mensajes.
func stockError(c *fiber.Ctx, err error) error {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case domain.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case domain.KindInsufficientStock:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case domain.KindConflict:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case domain.KindAuth:
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	}
	if err == domain.ErrForbidden {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
