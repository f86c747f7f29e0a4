package reports

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// KardexPDFGenerator define el puerto de salida para la representación PDF
// del kardex. La implementación concreta usa Maroto; para tests se inyecta
// un mock.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, product *entity.Product, movements []entity.StockMovement, summary entity.StockSummary) ([]byte, error)
}

// KardexUseCase genera el reporte kardex (historial de movimientos con stock
// antes/después) de un producto.
type KardexUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	stockRepo    repository.WarehouseStockRepository
	generator    KardexPDFGenerator
}

// NewKardexUseCase construye el caso de uso.
func NewKardexUseCase(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	stockRepo repository.WarehouseStockRepository,
	generator KardexPDFGenerator,
) *KardexUseCase {
	return &KardexUseCase{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		stockRepo:    stockRepo,
		generator:    generator,
	}
}

// GenerateKardex arma el PDF: producto + resumen de stock vigente + los
// movimientos que cumplen el filtro (más recientes primero).
func (uc *KardexUseCase) GenerateKardex(ctx context.Context, companyID, productID string, filter repository.MovementFilter) ([]byte, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	movements, err := uc.movementRepo.ListByProduct(ctx, productID, filter)
	if err != nil {
		return nil, err
	}
	rows, err := uc.stockRepo.ListByProduct(ctx, productID, filter.VariationID)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateKardexPDF(ctx, product, movements, entity.SummarizeStocks(rows))
}
