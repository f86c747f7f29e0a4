package stockclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/pkg/config"
	pkgjwt "github.com/jhoicas/Almacen-api/pkg/jwt"
	"github.com/jhoicas/Almacen-api/pkg/session"
	"github.com/jhoicas/Almacen-api/pkg/stockclient"
)

// backendFixture levanta un servidor HTTP de prueba y un HTTPBackend apuntando a él.
func backendFixture(t *testing.T, handler http.Handler) (*stockclient.HTTPBackend, *session.Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.NewStore()
	backend := stockclient.NewHTTPBackend(config.ClientConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, sessions, nil)
	return backend, sessions, srv
}

// writeJSON responde desde el handler de prueba; corre en la goroutine del
// servidor, así que no usa require.
func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("serializar respuesta de prueba: %v", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Inyección del token y decodificación
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTPBackend_ListStockRows_InyectaBearerYDecodifica(t *testing.T) {
	var gotAuth string
	backend, sessions, _ := backendFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/stock/producto-1/rows", r.URL.Path)
		writeJSON(t, w, http.StatusOK, dto.StockRowsResponse{
			Rows: []dto.WarehouseStockDTO{
				{ProductID: "producto-1", WarehouseID: "bodega-1", CurrentStock: decimal.NewFromInt(10), ReservedStock: decimal.NewFromInt(2)},
			},
		})
	}))
	sessions.Set(session.Session{Token: "tok-123", ExpiresAt: time.Now().Add(time.Hour)})

	rows, err := backend.ListStockRows(context.Background(), "producto-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth, "el token de la sesión viaja en Authorization")
	require.Len(t, rows, 1)
	assert.True(t, rows[0].CurrentStock.Equal(decimal.NewFromInt(10)))
	assert.True(t, rows[0].ReservedStock.Equal(decimal.NewFromInt(2)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo estado HTTP + código → Kind
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTPBackend_Conflicto409ConCodigo_EsInsufficientStock(t *testing.T) {
	backend, _, _ := backendFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	}))

	_, err := backend.AdjustStock(context.Background(), dto.AdjustStockRequest{
		ProductID: "p", WarehouseID: "w", QuantityChange: decimal.NewFromInt(-5), MovementType: "sale",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInsufficientStock, domain.KindOf(err))
}

func TestHTTPBackend_Conflicto409SinCodigo_EsConflict(t *testing.T) {
	backend, _, _ := backendFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	}))

	_, err := backend.Reserve(context.Background(), dto.ReservationRequest{ProductID: "p", WarehouseID: "w", Quantity: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestHTTPBackend_401_EsAuth(t *testing.T) {
	backend, _, _ := backendFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
	}))

	_, err := backend.ListStockRows(context.Background(), "producto-1", nil)
	require.Error(t, err)
	assert.True(t, domain.IsAuth(err), "un 401 del backend debe clasificarse como error de auth")
}

func TestHTTPBackend_404_EsNotFound(t *testing.T) {
	backend, _, _ := backendFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	}))

	_, err := backend.ListStockRows(context.Background(), "no-existe", nil)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestHTTPBackend_500_EsUnavailable(t *testing.T) {
	backend, _, _ := backendFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "boom"})
	}))

	_, err := backend.TransferStock(context.Background(), dto.TransferStockRequest{
		ProductID: "p", FromWarehouseID: "a", ToWarehouseID: "b", Quantity: decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(err))
}

func TestHTTPBackend_ServidorCaido_EsUnavailable(t *testing.T) {
	backend, _, srv := backendFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := backend.ListStockRows(context.Background(), "producto-1", nil)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Login y refresh contra el store de sesión
// ──────────────────────────────────────────────────────────────────────────────

// El vencimiento de la sesión sale del claim exp del propio token, no del
// campo serializado de la respuesta.
func TestHTTPBackend_Login_GuardaSesionConExpDelToken(t *testing.T) {
	token, err := pkgjwt.Generate("secreto-del-servidor", "user-1", "empresa-1", "vendedor", "almacen-api-test", 60)
	require.NoError(t, err)

	backend, sessions, _ := backendFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		writeJSON(t, w, http.StatusOK, dto.LoginResponse{
			Token: token,
			// ExpiresAt serializado deliberadamente en cero: el claim manda.
			User: dto.UserResponse{ID: "user-1", CompanyID: "empresa-1", Role: "vendedor"},
		})
	}))

	require.NoError(t, backend.Login(context.Background(), dto.LoginRequest{Email: "v@e.co", Password: "12345678", CompanyID: "empresa-1"}))

	sess, ok := sessions.Current()
	require.True(t, ok)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, token, sess.Token)
	assert.WithinDuration(t, time.Now().Add(60*time.Minute), sess.ExpiresAt, time.Minute,
		"el vencimiento debe venir del claim exp del token")
	assert.True(t, sess.Active())
}

func TestHTTPBackend_RefreshFallido_CierraSesion(t *testing.T) {
	backend, sessions, _ := backendFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
	}))
	sessions.Set(session.Session{Token: "viejo", ExpiresAt: time.Now().Add(time.Hour)})

	err := backend.RefreshSession(context.Background())
	require.Error(t, err)

	_, ok := sessions.Current()
	assert.False(t, ok, "un refresh fallido debe cerrar la sesión local")
}

// ──────────────────────────────────────────────────────────────────────────────
// NewSDK — composición completa desde configuración
// ──────────────────────────────────────────────────────────────────────────────

func TestNewSDK_CableaClienteCacheYSesion(t *testing.T) {
	var listCalls atomic.Int32
	token, err := pkgjwt.Generate("secreto-del-servidor", "user-1", "empresa-1", "admin", "almacen-api-test", 60)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			writeJSON(t, w, http.StatusOK, dto.LoginResponse{
				Token: token,
				User:  dto.UserResponse{ID: "user-1", CompanyID: "empresa-1", Role: "admin"},
			})
		default:
			listCalls.Add(1)
			writeJSON(t, w, http.StatusOK, dto.StockRowsResponse{
				Rows: []dto.WarehouseStockDTO{
					{ProductID: "producto-1", WarehouseID: "bodega-1", CurrentStock: decimal.NewFromInt(7)},
				},
			})
		}
	}))
	t.Cleanup(srv.Close)

	sdk := stockclient.NewSDK(
		config.ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second},
		config.CacheConfig{CriticalTTL: 5 * time.Second, DefaultTTL: 30 * time.Second, WaitTimeout: 8 * time.Second},
		nil,
	)
	require.NotNil(t, sdk.Client)
	require.NotNil(t, sdk.Cache)
	require.NotNil(t, sdk.Sessions)

	require.NoError(t, sdk.Backend.Login(context.Background(), dto.LoginRequest{Email: "a@e.co", Password: "12345678", CompanyID: "empresa-1"}))
	_, ok := sdk.Sessions.Current()
	require.True(t, ok, "el login del backend debe poblar el store compartido")

	// Dos lecturas seguidas: la segunda sale de la caché compartida.
	summary, err := sdk.Client.GetStockSummary(context.Background(), "producto-1", nil)
	require.NoError(t, err)
	assert.True(t, summary.TotalStock.Equal(decimal.NewFromInt(7)))

	_, err = sdk.Client.GetStockSummary(context.Background(), "producto-1", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), listCalls.Load(), "la segunda lectura debe ser hit de caché")
}
