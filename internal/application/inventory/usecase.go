package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// StockUseCase implementa las operaciones remotas de stock que el SDK invoca
// como RPC: ajuste, traslado, reserva/liberación y lecturas agregadas. Las
// mutaciones con leer-modificar-escribir van dentro de una transacción con
// bloqueo de fila (SELECT FOR UPDATE); reserva y liberación son una sola
// sentencia condicional en el repositorio, sin ventana de carrera.
type StockUseCase struct {
	txRunner      TxRunner
	stockRepo     repository.WarehouseStockRepository
	movementRepo  repository.StockMovementRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner TxRunner,
	stockRepo repository.WarehouseStockRepository,
	movementRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *StockUseCase {
	return &StockUseCase{
		txRunner:      txRunner,
		stockRepo:     stockRepo,
		movementRepo:  movementRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
	}
}

// AdjustInput entrada del ajuste atómico. QuantityChange con signo: positivo
// entrada, negativo salida.
type AdjustInput struct {
	CompanyID      string
	UserID         string
	ProductID      string
	WarehouseID    string
	VariationID    *string
	QuantityChange decimal.Decimal
	MovementType   string // purchase, sale, adjustment, return
	Reason         string
	Notes          string
}

// TransferInput entrada del traslado atómico entre bodegas.
type TransferInput struct {
	CompanyID       string
	UserID          string
	ProductID       string
	VariationID     *string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        decimal.Decimal
	Reason          string
	Notes           string
}

// ReservationInput entrada de reserva/liberación.
type ReservationInput struct {
	CompanyID   string
	UserID      string
	ProductID   string
	WarehouseID string
	VariationID *string
	Quantity    decimal.Decimal
}

// Adjust aplica el cambio de stock y registra un movimiento, todo en una
// transacción con la fila bloqueada. Rechaza resultados negativos y
// resultados por debajo del stock reservado (consumir unidades reservadas
// requiere liberarlas primero).
func (uc *StockUseCase) Adjust(ctx context.Context, input AdjustInput) error {
	if input.ProductID == "" || input.WarehouseID == "" || input.QuantityChange.IsZero() {
		return domain.ErrInvalidInput
	}
	if !entity.ValidMovementType(input.MovementType) || input.MovementType == entity.MovementTypeTransfer {
		return domain.ErrInvalidInput
	}
	if err := uc.validateOwnership(input.CompanyID, input.ProductID, input.WarehouseID); err != nil {
		return err
	}

	now := time.Now()
	return uc.txRunner.Run(ctx, func(
		stockRepo repository.WarehouseStockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		stock, err := stockRepo.GetForUpdate(ctx, input.ProductID, input.WarehouseID, input.VariationID)
		if err != nil {
			return err
		}
		previous := stock.CurrentStock
		next := previous.Add(input.QuantityChange)
		if next.LessThan(decimal.Zero) || next.LessThan(stock.ReservedStock) {
			return domain.ErrInsufficientStock
		}
		stock.CurrentStock = next
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, stock); err != nil {
			return err
		}
		direction := entity.DirectionIn
		if input.QuantityChange.LessThan(decimal.Zero) {
			direction = entity.DirectionOut
		}
		return movRepo.Create(ctx, &entity.StockMovement{
			ID:            uuid.New().String(),
			ProductID:     input.ProductID,
			WarehouseID:   input.WarehouseID,
			VariationID:   input.VariationID,
			Quantity:      input.QuantityChange,
			Direction:     direction,
			Type:          input.MovementType,
			PreviousStock: previous,
			NewStock:      next,
			Reason:        input.Reason,
			Notes:         input.Notes,
			CreatedBy:     input.UserID,
			CreatedAt:     now,
		})
	})
}

// Transfer mueve quantity de una bodega a otra en una sola transacción:
// bloquea la fila origen, verifica disponible (actual - reservado, las
// unidades reservadas no se trasladan), resta, suma en destino y registra
// dos movimientos enlazados por un transferRef compartido.
func (uc *StockUseCase) Transfer(ctx context.Context, input TransferInput) error {
	if input.ProductID == "" || input.FromWarehouseID == "" || input.ToWarehouseID == "" {
		return domain.ErrInvalidInput
	}
	if input.FromWarehouseID == input.ToWarehouseID {
		return domain.ErrSameWarehouse
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if err := uc.validateOwnership(input.CompanyID, input.ProductID, input.FromWarehouseID); err != nil {
		return err
	}
	toWh, err := uc.warehouseRepo.GetByID(input.ToWarehouseID)
	if err != nil {
		return err
	}
	if toWh == nil || toWh.CompanyID != input.CompanyID {
		return domain.ErrNotFound
	}

	now := time.Now()
	transferRef := uuid.New().String()
	return uc.txRunner.Run(ctx, func(
		stockRepo repository.WarehouseStockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		origin, err := stockRepo.GetForUpdate(ctx, input.ProductID, input.FromWarehouseID, input.VariationID)
		if err != nil {
			return err
		}
		if origin.AvailableStock().LessThan(input.Quantity) {
			return domain.ErrInsufficientStock
		}
		dest, err := stockRepo.Get(ctx, input.ProductID, input.ToWarehouseID, input.VariationID)
		if err != nil {
			return err
		}

		originPrev := origin.CurrentStock
		destPrev := dest.CurrentStock
		origin.CurrentStock = originPrev.Sub(input.Quantity)
		dest.CurrentStock = destPrev.Add(input.Quantity)
		origin.UpdatedAt = now
		dest.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, origin); err != nil {
			return err
		}
		if err := stockRepo.Upsert(ctx, dest); err != nil {
			return err
		}

		outMov := &entity.StockMovement{
			ID:            uuid.New().String(),
			ProductID:     input.ProductID,
			WarehouseID:   input.FromWarehouseID,
			VariationID:   input.VariationID,
			Quantity:      input.Quantity.Neg(),
			Direction:     entity.DirectionOut,
			Type:          entity.MovementTypeTransfer,
			PreviousStock: originPrev,
			NewStock:      origin.CurrentStock,
			Reason:        input.Reason,
			Notes:         input.Notes,
			TransferRef:   transferRef,
			CreatedBy:     input.UserID,
			CreatedAt:     now,
		}
		if err := movRepo.Create(ctx, outMov); err != nil {
			return err
		}
		inMov := &entity.StockMovement{
			ID:            uuid.New().String(),
			ProductID:     input.ProductID,
			WarehouseID:   input.ToWarehouseID,
			VariationID:   input.VariationID,
			Quantity:      input.Quantity,
			Direction:     entity.DirectionIn,
			Type:          entity.MovementTypeTransfer,
			PreviousStock: destPrev,
			NewStock:      dest.CurrentStock,
			Reason:        input.Reason,
			Notes:         input.Notes,
			TransferRef:   transferRef,
			CreatedBy:     input.UserID,
			CreatedAt:     now,
		}
		return movRepo.Create(ctx, inMov)
	})
}

// Reserve toma una reserva blanda. La comparación disponible >= quantity y
// la escritura son una sola sentencia condicional en el repositorio; si no
// afecta filas, no había disponible suficiente.
func (uc *StockUseCase) Reserve(ctx context.Context, input ReservationInput) error {
	if input.ProductID == "" || input.WarehouseID == "" || !input.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if err := uc.validateOwnership(input.CompanyID, input.ProductID, input.WarehouseID); err != nil {
		return err
	}
	ok, err := uc.stockRepo.Reserve(ctx, input.ProductID, input.WarehouseID, input.VariationID, input.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInsufficientStock
	}
	return nil
}

// Release libera una reserva con la misma sentencia condicional (reservado
// >= quantity).
func (uc *StockUseCase) Release(ctx context.Context, input ReservationInput) error {
	if input.ProductID == "" || input.WarehouseID == "" || !input.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if err := uc.validateOwnership(input.CompanyID, input.ProductID, input.WarehouseID); err != nil {
		return err
	}
	ok, err := uc.stockRepo.Release(ctx, input.ProductID, input.WarehouseID, input.VariationID, input.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInsufficientStock
	}
	return nil
}

// Rows devuelve las filas de stock del producto (variación opcional),
// verificando que el producto pertenezca a la empresa.
func (uc *StockUseCase) Rows(ctx context.Context, companyID, productID string, variationID *string) ([]entity.WarehouseStock, error) {
	if err := uc.validateProduct(companyID, productID); err != nil {
		return nil, err
	}
	return uc.stockRepo.ListByProduct(ctx, productID, variationID)
}

// Summary agrega las filas del producto en totales. Sin filas devuelve
// resumen en cero (no es error).
func (uc *StockUseCase) Summary(ctx context.Context, companyID, productID string, variationID *string) (entity.StockSummary, error) {
	rows, err := uc.Rows(ctx, companyID, productID, variationID)
	if err != nil {
		return entity.StockSummary{}, err
	}
	return entity.SummarizeStocks(rows), nil
}

// Movements devuelve el kardex del producto (más recientes primero) y el
// total para paginar.
func (uc *StockUseCase) Movements(ctx context.Context, companyID, productID string, filter repository.MovementFilter) ([]entity.StockMovement, int, error) {
	if err := uc.validateProduct(companyID, productID); err != nil {
		return nil, 0, err
	}
	movements, err := uc.movementRepo.ListByProduct(ctx, productID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.movementRepo.CountByProduct(ctx, productID, filter)
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// validateProduct verifica que el producto exista y sea de la empresa.
func (uc *StockUseCase) validateProduct(companyID, productID string) error {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return nil
}

// validateOwnership verifica producto y bodega contra la empresa del caller.
func (uc *StockUseCase) validateOwnership(companyID, productID, warehouseID string) error {
	if err := uc.validateProduct(companyID, productID); err != nil {
		return err
	}
	warehouse, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil || warehouse.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return nil
}
