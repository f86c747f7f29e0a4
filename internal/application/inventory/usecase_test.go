package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

func stockKey(productID, warehouseID string, variationID *string) string {
	v := ""
	if variationID != nil {
		v = *variationID
	}
	return productID + "|" + warehouseID + "|" + v
}

// fakeStockRepo guarda las filas en un mapa y replica la semántica
// condicional de Reserve/Release.
type fakeStockRepo struct {
	rows map[string]*entity.WarehouseStock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{rows: make(map[string]*entity.WarehouseStock)}
}

func (f *fakeStockRepo) seed(productID, warehouseID string, current, reserved int64) {
	f.rows[stockKey(productID, warehouseID, nil)] = &entity.WarehouseStock{
		ProductID:     productID,
		WarehouseID:   warehouseID,
		CurrentStock:  decimal.NewFromInt(current),
		ReservedStock: decimal.NewFromInt(reserved),
	}
}

func (f *fakeStockRepo) Get(_ context.Context, productID, warehouseID string, variationID *string) (*entity.WarehouseStock, error) {
	if s, ok := f.rows[stockKey(productID, warehouseID, variationID)]; ok {
		cp := *s
		return &cp, nil
	}
	return &entity.WarehouseStock{
		ProductID:     productID,
		WarehouseID:   warehouseID,
		VariationID:   variationID,
		CurrentStock:  decimal.Zero,
		ReservedStock: decimal.Zero,
	}, nil
}

func (f *fakeStockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string, variationID *string) (*entity.WarehouseStock, error) {
	return f.Get(ctx, productID, warehouseID, variationID)
}

func (f *fakeStockRepo) ListByProduct(_ context.Context, productID string, variationID *string) ([]entity.WarehouseStock, error) {
	var out []entity.WarehouseStock
	for _, s := range f.rows {
		if s.ProductID != productID {
			continue
		}
		if variationID != nil && (s.VariationID == nil || *s.VariationID != *variationID) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStockRepo) Upsert(_ context.Context, stock *entity.WarehouseStock) error {
	cp := *stock
	f.rows[stockKey(stock.ProductID, stock.WarehouseID, stock.VariationID)] = &cp
	return nil
}

func (f *fakeStockRepo) Reserve(_ context.Context, productID, warehouseID string, variationID *string, quantity decimal.Decimal) (bool, error) {
	s, ok := f.rows[stockKey(productID, warehouseID, variationID)]
	if !ok || s.CurrentStock.Sub(s.ReservedStock).LessThan(quantity) {
		return false, nil
	}
	s.ReservedStock = s.ReservedStock.Add(quantity)
	return true, nil
}

func (f *fakeStockRepo) Release(_ context.Context, productID, warehouseID string, variationID *string, quantity decimal.Decimal) (bool, error) {
	s, ok := f.rows[stockKey(productID, warehouseID, variationID)]
	if !ok || s.ReservedStock.LessThan(quantity) {
		return false, nil
	}
	s.ReservedStock = s.ReservedStock.Sub(quantity)
	return true, nil
}

type fakeMovementRepo struct {
	movements []entity.StockMovement
}

func (f *fakeMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	f.movements = append(f.movements, *m)
	return nil
}

func (f *fakeMovementRepo) ListByProduct(_ context.Context, productID string, _ repository.MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for i := len(f.movements) - 1; i >= 0; i-- {
		if f.movements[i].ProductID == productID {
			out = append(out, f.movements[i])
		}
	}
	return out, nil
}

func (f *fakeMovementRepo) CountByProduct(_ context.Context, productID string, _ repository.MovementFilter) (int, error) {
	count := 0
	for i := range f.movements {
		if f.movements[i].ProductID == productID {
			count++
		}
	}
	return count, nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func (f *fakeProductRepo) Create(*entity.Product) error { return nil }
func (f *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return f.products[id], nil
}
func (f *fakeProductRepo) GetBySKU(string, string) (*entity.Product, error) { return nil, nil }
func (f *fakeProductRepo) ListByCompany(string, int, int) ([]*entity.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) Update(*entity.Product) error { return nil }
func (f *fakeProductRepo) ListVariations(string) ([]*entity.ProductVariation, error) {
	return nil, nil
}

type fakeWarehouseRepo struct {
	warehouses map[string]*entity.Warehouse
}

func (f *fakeWarehouseRepo) Create(*entity.Warehouse) error { return nil }
func (f *fakeWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	return f.warehouses[id], nil
}
func (f *fakeWarehouseRepo) ListByCompany(string) ([]*entity.Warehouse, error) { return nil, nil }
func (f *fakeWarehouseRepo) Update(*entity.Warehouse) error                    { return nil }

// fakeTxRunner ejecuta fn directamente con los fakes (sin transacción real).
type fakeTxRunner struct {
	stockRepo    *fakeStockRepo
	movementRepo *fakeMovementRepo
}

func (f *fakeTxRunner) Run(_ context.Context, fn func(repository.WarehouseStockRepository, repository.StockMovementRepository) error) error {
	return fn(f.stockRepo, f.movementRepo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID = "empresa-1"
	userID    = "usuario-1"
	productID = "producto-1"
)

type fixture struct {
	uc        *inventory.StockUseCase
	stocks    *fakeStockRepo
	movements *fakeMovementRepo
}

func newFixture() *fixture {
	stocks := newFakeStockRepo()
	movements := &fakeMovementRepo{}
	products := &fakeProductRepo{products: map[string]*entity.Product{
		productID:    {ID: productID, CompanyID: companyID, SKU: "SKU-1", Name: "Camiseta"},
		"ajeno":      {ID: "ajeno", CompanyID: "otra-empresa", SKU: "SKU-X"},
		"sin-bodega": {ID: "sin-bodega", CompanyID: companyID, SKU: "SKU-2"},
	}}
	warehouses := &fakeWarehouseRepo{warehouses: map[string]*entity.Warehouse{
		"w1": {ID: "w1", CompanyID: companyID, Code: "BOD-01", IsActive: true},
		"w2": {ID: "w2", CompanyID: companyID, Code: "BOD-02", IsActive: true},
		"wx": {ID: "wx", CompanyID: "otra-empresa", Code: "BOD-X", IsActive: true},
	}}
	runner := &fakeTxRunner{stockRepo: stocks, movementRepo: movements}
	return &fixture{
		uc:        inventory.NewStockUseCase(runner, stocks, movements, products, warehouses),
		stocks:    stocks,
		movements: movements,
	}
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ──────────────────────────────────────────────────────────────────────────────
// Adjust
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_AplicaCambioYRegistraMovimiento(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 10, 0)

	err := f.uc.Adjust(context.Background(), inventory.AdjustInput{
		CompanyID:      companyID,
		UserID:         userID,
		ProductID:      productID,
		WarehouseID:    "w1",
		QuantityChange: dec(-4),
		MovementType:   entity.MovementTypeSale,
		Reason:         "venta mostrador",
	})
	require.NoError(t, err)

	row, _ := f.stocks.Get(context.Background(), productID, "w1", nil)
	assert.True(t, row.CurrentStock.Equal(dec(6)))

	require.Len(t, f.movements.movements, 1)
	mov := f.movements.movements[0]
	assert.NotEmpty(t, mov.ID)
	assert.Equal(t, entity.DirectionOut, mov.Direction)
	assert.Equal(t, entity.MovementTypeSale, mov.Type)
	assert.True(t, mov.PreviousStock.Equal(dec(10)), "el movimiento captura el stock anterior")
	assert.True(t, mov.NewStock.Equal(dec(6)), "y el posterior")
	assert.Equal(t, userID, mov.CreatedBy)
}

func TestAdjust_RechazaResultadoNegativo(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 3, 0)

	err := f.uc.Adjust(context.Background(), inventory.AdjustInput{
		CompanyID:      companyID,
		UserID:         userID,
		ProductID:      productID,
		WarehouseID:    "w1",
		QuantityChange: dec(-5),
		MovementType:   entity.MovementTypeSale,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	row, _ := f.stocks.Get(context.Background(), productID, "w1", nil)
	assert.True(t, row.CurrentStock.Equal(dec(3)), "un ajuste rechazado no toca el stock")
	assert.Empty(t, f.movements.movements, "ni deja movimiento")
}

// El stock no puede bajar de lo reservado: esas unidades están comprometidas.
func TestAdjust_RechazaBajarDeLoReservado(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 10, 4)

	err := f.uc.Adjust(context.Background(), inventory.AdjustInput{
		CompanyID:      companyID,
		UserID:         userID,
		ProductID:      productID,
		WarehouseID:    "w1",
		QuantityChange: dec(-7), // dejaría 3 < 4 reservado
		MovementType:   entity.MovementTypeSale,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestAdjust_ValidaEntrada(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 10, 0)

	cases := []inventory.AdjustInput{
		{CompanyID: companyID, ProductID: productID, WarehouseID: "w1", MovementType: entity.MovementTypeSale},                                           // cantidad cero
		{CompanyID: companyID, ProductID: productID, WarehouseID: "w1", QuantityChange: dec(1), MovementType: "inventado"},                              // tipo desconocido
		{CompanyID: companyID, ProductID: productID, WarehouseID: "w1", QuantityChange: dec(1), MovementType: entity.MovementTypeTransfer},              // transfer no va por Adjust
		{CompanyID: companyID, ProductID: "", WarehouseID: "w1", QuantityChange: dec(1), MovementType: entity.MovementTypeSale},                         // sin producto
		{CompanyID: companyID, ProductID: productID, WarehouseID: "", QuantityChange: dec(1), MovementType: entity.MovementTypeSale},                    // sin bodega
	}
	for _, in := range cases {
		in.UserID = userID
		assert.ErrorIs(t, f.uc.Adjust(context.Background(), in), domain.ErrInvalidInput)
	}
}

func TestAdjust_ProductoDeOtraEmpresa_Prohibido(t *testing.T) {
	f := newFixture()
	err := f.uc.Adjust(context.Background(), inventory.AdjustInput{
		CompanyID:      companyID,
		UserID:         userID,
		ProductID:      "ajeno",
		WarehouseID:    "w1",
		QuantityChange: dec(1),
		MovementType:   entity.MovementTypePurchase,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAdjust_BodegaDeOtraEmpresa_NoEncontrada(t *testing.T) {
	f := newFixture()
	err := f.uc.Adjust(context.Background(), inventory.AdjustInput{
		CompanyID:      companyID,
		UserID:         userID,
		ProductID:      productID,
		WarehouseID:    "wx",
		QuantityChange: dec(1),
		MovementType:   entity.MovementTypePurchase,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_MueveYEnlazaDosMovimientos(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 10, 2)
	f.stocks.seed(productID, "w2", 1, 0)

	err := f.uc.Transfer(context.Background(), inventory.TransferInput{
		CompanyID:       companyID,
		UserID:          userID,
		ProductID:       productID,
		FromWarehouseID: "w1",
		ToWarehouseID:   "w2",
		Quantity:        dec(5),
	})
	require.NoError(t, err)

	origin, _ := f.stocks.Get(context.Background(), productID, "w1", nil)
	dest, _ := f.stocks.Get(context.Background(), productID, "w2", nil)
	assert.True(t, origin.CurrentStock.Equal(dec(5)))
	assert.True(t, origin.ReservedStock.Equal(dec(2)), "las reservas se quedan en la bodega origen")
	assert.True(t, dest.CurrentStock.Equal(dec(6)))

	require.Len(t, f.movements.movements, 2)
	out, in := f.movements.movements[0], f.movements.movements[1]
	assert.Equal(t, entity.DirectionOut, out.Direction)
	assert.Equal(t, entity.DirectionIn, in.Direction)
	assert.Equal(t, entity.MovementTypeTransfer, out.Type)
	assert.True(t, out.Quantity.Equal(dec(-5)), "salida con signo negativo")
	assert.True(t, in.Quantity.Equal(dec(5)))
	assert.NotEmpty(t, out.TransferRef)
	assert.Equal(t, out.TransferRef, in.TransferRef, "ambos movimientos comparten la referencia del traslado")
}

func TestTransfer_MismaBodega_Rechaza(t *testing.T) {
	f := newFixture()
	err := f.uc.Transfer(context.Background(), inventory.TransferInput{
		CompanyID:       companyID,
		UserID:          userID,
		ProductID:       productID,
		FromWarehouseID: "w1",
		ToWarehouseID:   "w1",
		Quantity:        dec(1),
	})
	assert.ErrorIs(t, err, domain.ErrSameWarehouse)
	assert.Empty(t, f.movements.movements)
}

// Solo se traslada lo disponible: actual 10 con 4 reservadas = 6 disponibles.
func TestTransfer_NoTrasladaUnidadesReservadas(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 10, 4)

	err := f.uc.Transfer(context.Background(), inventory.TransferInput{
		CompanyID:       companyID,
		UserID:          userID,
		ProductID:       productID,
		FromWarehouseID: "w1",
		ToWarehouseID:   "w2",
		Quantity:        dec(7),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	origin, _ := f.stocks.Get(context.Background(), productID, "w1", nil)
	assert.True(t, origin.CurrentStock.Equal(dec(10)), "el traslado rechazado no toca nada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reserve / Release
// ──────────────────────────────────────────────────────────────────────────────

func TestReserve_IncrementaReservado(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 10, 2)

	err := f.uc.Reserve(context.Background(), inventory.ReservationInput{
		CompanyID:   companyID,
		UserID:      userID,
		ProductID:   productID,
		WarehouseID: "w1",
		Quantity:    dec(3),
	})
	require.NoError(t, err)

	row, _ := f.stocks.Get(context.Background(), productID, "w1", nil)
	assert.True(t, row.ReservedStock.Equal(dec(5)))
	assert.True(t, row.CurrentStock.Equal(dec(10)), "reservar no cambia el stock físico")
}

func TestReserve_DisponibleInsuficiente(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 5, 3) // disponible 2

	err := f.uc.Reserve(context.Background(), inventory.ReservationInput{
		CompanyID:   companyID,
		UserID:      userID,
		ProductID:   productID,
		WarehouseID: "w1",
		Quantity:    dec(3),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	row, _ := f.stocks.Get(context.Background(), productID, "w1", nil)
	assert.True(t, row.ReservedStock.Equal(dec(3)), "la reserva rechazada no escribe")
}

func TestRelease_DecrementaReservado(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 10, 4)

	err := f.uc.Release(context.Background(), inventory.ReservationInput{
		CompanyID:   companyID,
		UserID:      userID,
		ProductID:   productID,
		WarehouseID: "w1",
		Quantity:    dec(4),
	})
	require.NoError(t, err)

	row, _ := f.stocks.Get(context.Background(), productID, "w1", nil)
	assert.True(t, row.ReservedStock.IsZero())
}

func TestRelease_ReservadoInsuficiente(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 10, 1)

	err := f.uc.Release(context.Background(), inventory.ReservationInput{
		CompanyID:   companyID,
		UserID:      userID,
		ProductID:   productID,
		WarehouseID: "w1",
		Quantity:    dec(2),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestSummary_AgregaFilas(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 10, 2)
	f.stocks.seed(productID, "w2", 5, 0)

	summary, err := f.uc.Summary(context.Background(), companyID, productID, nil)
	require.NoError(t, err)

	assert.True(t, summary.TotalStock.Equal(dec(15)))
	assert.True(t, summary.ReservedStock.Equal(dec(2)))
	assert.True(t, summary.AvailableStock.Equal(dec(13)))
}

func TestSummary_SinFilas_EnCero(t *testing.T) {
	f := newFixture()
	summary, err := f.uc.Summary(context.Background(), companyID, "sin-bodega", nil)
	require.NoError(t, err)
	assert.True(t, summary.TotalStock.IsZero())
	assert.NotNil(t, summary.WarehouseStocks)
	assert.Empty(t, summary.WarehouseStocks)
}

func TestMovements_DevuelveKardexYTotal(t *testing.T) {
	f := newFixture()
	f.stocks.seed(productID, "w1", 10, 0)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.uc.Adjust(context.Background(), inventory.AdjustInput{
			CompanyID:      companyID,
			UserID:         userID,
			ProductID:      productID,
			WarehouseID:    "w1",
			QuantityChange: dec(1),
			MovementType:   entity.MovementTypePurchase,
		}))
	}

	movements, total, err := f.uc.Movements(context.Background(), companyID, productID, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, movements, 3)
	assert.Equal(t, 3, total)
}

func TestRows_ProductoInexistente_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Rows(context.Background(), companyID, "no-existe", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
