// Package catalog gestiona productos y bodegas: el catálogo sobre el que
// después se mueve stock. Sin estas altas el servicio no tendría nada que
// ajustar, trasladar ni reservar.
package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// CatalogUseCase casos de uso de gestión de catálogo (productos y bodegas).
type CatalogUseCase struct {
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewCatalogUseCase construye el caso de uso de catálogo.
func NewCatalogUseCase(productRepo repository.ProductRepository, warehouseRepo repository.WarehouseRepository) *CatalogUseCase {
	return &CatalogUseCase{productRepo: productRepo, warehouseRepo: warehouseRepo}
}

// ── Productos ────────────────────────────────────────────────────────────────

// CreateProduct da de alta un producto. El SKU es único por empresa.
func (uc *CatalogUseCase) CreateProduct(companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.productRepo.GetBySKU(companyID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		SKU:           in.SKU,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		Cost:          in.Cost,
		UnitMeasure:   in.UnitMeasure,
		HasVariations: in.HasVariations,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	resp := dto.FromProduct(product)
	return &resp, nil
}

// GetProduct devuelve el producto con sus variaciones. El producto debe
// pertenecer a la empresa del caller.
func (uc *CatalogUseCase) GetProduct(companyID, productID string) (*dto.ProductResponse, error) {
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
	resp := dto.FromProduct(product)
	if product.HasVariations {
		variations, err := uc.productRepo.ListVariations(productID)
		if err != nil {
			return nil, err
		}
		for _, v := range variations {
			resp.Variations = append(resp.Variations, dto.FromProductVariation(v))
		}
	}
	return &resp, nil
}

// ListProducts lista los productos de la empresa con paginación.
func (uc *CatalogUseCase) ListProducts(companyID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	products, err := uc.productRepo.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Products: make([]dto.ProductResponse, 0, len(products)),
		Page:     dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, p := range products {
		out.Products = append(out.Products, dto.FromProduct(p))
	}
	return out, nil
}

// UpdateProduct actualiza los campos mutables del producto (el SKU no cambia).
func (uc *CatalogUseCase) UpdateProduct(companyID, productID string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
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
	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Cost = in.Cost
	product.UnitMeasure = in.UnitMeasure
	product.HasVariations = in.HasVariations
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(product); err != nil {
		return nil, err
	}
	resp := dto.FromProduct(product)
	return &resp, nil
}

// ── Bodegas ──────────────────────────────────────────────────────────────────

// CreateWarehouse da de alta una bodega. El código es único por empresa.
func (uc *CatalogUseCase) CreateWarehouse(companyID string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Code:      in.Code,
		Name:      in.Name,
		Address:   in.Address,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.warehouseRepo.Create(warehouse); err != nil {
		return nil, err
	}
	resp := dto.FromWarehouse(warehouse)
	return &resp, nil
}

// ListWarehouses lista las bodegas de la empresa.
func (uc *CatalogUseCase) ListWarehouses(companyID string) ([]dto.WarehouseResponse, error) {
	warehouses, err := uc.warehouseRepo.ListByCompany(companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WarehouseResponse, 0, len(warehouses))
	for _, w := range warehouses {
		out = append(out, dto.FromWarehouse(w))
	}
	return out, nil
}

// UpdateWarehouse actualiza nombre, dirección y estado de la bodega.
func (uc *CatalogUseCase) UpdateWarehouse(companyID, warehouseID string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	warehouse, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	if warehouse.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	warehouse.Name = in.Name
	warehouse.Address = in.Address
	if in.IsActive != nil {
		warehouse.IsActive = *in.IsActive
	}
	warehouse.UpdatedAt = time.Now()
	if err := uc.warehouseRepo.Update(warehouse); err != nil {
		return nil, err
	}
	resp := dto.FromWarehouse(warehouse)
	return &resp, nil
}
