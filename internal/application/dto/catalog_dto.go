package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// CreateProductRequest alta de producto en el catálogo.
type CreateProductRequest struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	UnitMeasure   string          `json:"unit_measure,omitempty"`
	HasVariations bool            `json:"has_variations"`
}

// UpdateProductRequest campos mutables del producto.
type UpdateProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	UnitMeasure   string          `json:"unit_measure,omitempty"`
	HasVariations bool            `json:"has_variations"`
}

// ProductResponse representación pública de un producto.
type ProductResponse struct {
	ID            string                `json:"id"`
	CompanyID     string                `json:"company_id"`
	SKU           string                `json:"sku"`
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	Price         decimal.Decimal       `json:"price"`
	Cost          decimal.Decimal       `json:"cost"`
	UnitMeasure   string                `json:"unit_measure,omitempty"`
	HasVariations bool                  `json:"has_variations"`
	Variations    []ProductVariationDTO `json:"variations,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ProductVariationDTO variante de un producto variable.
type ProductVariationDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku,omitempty"`
}

// ProductListResponse listado paginado de productos.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Page     PageResponse      `json:"page"`
}

// CreateWarehouseRequest alta de bodega.
type CreateWarehouseRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// UpdateWarehouseRequest campos mutables de la bodega.
type UpdateWarehouseRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// WarehouseResponse representación pública de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterCompanyRequest alta de empresa (tenant).
type RegisterCompanyRequest struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// CompanyResponse representación pública de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ── Conversores entidad -> DTO ───────────────────────────────────────────────

// FromProduct mapea la entidad producto a su DTO (sin variaciones).
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Cost:          p.Cost,
		UnitMeasure:   p.UnitMeasure,
		HasVariations: p.HasVariations,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// FromProductVariation mapea la variación a su DTO.
func FromProductVariation(v *entity.ProductVariation) ProductVariationDTO {
	return ProductVariationDTO{ID: v.ID, Name: v.Name, SKU: v.SKU}
}

// FromWarehouse mapea la entidad bodega a su DTO.
func FromWarehouse(w *entity.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		CompanyID: w.CompanyID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// FromCompany mapea la entidad empresa a su DTO.
func FromCompany(c *entity.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}
