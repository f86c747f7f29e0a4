package stockclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/jwt"
	"github.com/jhoicas/Almacen-api/pkg/logger"
	"github.com/jhoicas/Almacen-api/pkg/requestcache"
	"github.com/jhoicas/Almacen-api/pkg/session"
)

var (
	_ Backend                       = (*HTTPBackend)(nil)
	_ requestcache.SessionRefresher = (*HTTPBackend)(nil)
)

// HTTPBackend implementa Backend contra la API HTTP del servicio de stock.
// Usa net/http de la stdlib; el token sale del session.Store inyectado y los
// errores HTTP se traducen a Kind de dominio para que el resto del SDK no
// inspeccione mensajes.
type HTTPBackend struct {
	baseURL    string
	httpClient *http.Client
	sessions   *session.Store
	log        *logger.Logger
}

// NewHTTPBackend construye el backend HTTP. El timeout limita cada petición;
// una vez emitida, no hay cancelación del lado remoto.
func NewHTTPBackend(cfg config.ClientConfig, sessions *session.Store, log *logger.Logger) *HTTPBackend {
	if log == nil {
		log = logger.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPBackend{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		sessions:   sessions,
		log:        log,
	}
}

// ListStockRows trae las filas de stock del producto.
func (b *HTTPBackend) ListStockRows(ctx context.Context, productID string, variationID *string) ([]entity.WarehouseStock, error) {
	path := "/api/stock/" + url.PathEscape(productID) + "/rows"
	if variationID != nil && *variationID != "" {
		path += "?variation_id=" + url.QueryEscape(*variationID)
	}
	var resp dto.StockRowsResponse
	if err := b.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	rows := make([]entity.WarehouseStock, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		rows = append(rows, r.ToWarehouseStock())
	}
	return rows, nil
}

// AdjustStock invoca el RPC de ajuste atómico.
func (b *HTTPBackend) AdjustStock(ctx context.Context, req dto.AdjustStockRequest) (bool, error) {
	var resp dto.SuccessResponse
	if err := b.doJSON(ctx, http.MethodPost, "/api/stock/adjust", req, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// TransferStock invoca el RPC de traslado atómico.
func (b *HTTPBackend) TransferStock(ctx context.Context, req dto.TransferStockRequest) (bool, error) {
	var resp dto.SuccessResponse
	if err := b.doJSON(ctx, http.MethodPost, "/api/stock/transfer", req, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// Reserve invoca el RPC atómico de reserva.
func (b *HTTPBackend) Reserve(ctx context.Context, req dto.ReservationRequest) (bool, error) {
	var resp dto.SuccessResponse
	if err := b.doJSON(ctx, http.MethodPost, "/api/stock/reserve", req, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// Release invoca el RPC atómico de liberación de reserva.
func (b *HTTPBackend) Release(ctx context.Context, req dto.ReservationRequest) (bool, error) {
	var resp dto.SuccessResponse
	if err := b.doJSON(ctx, http.MethodPost, "/api/stock/release", req, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// Login autentica contra el backend y guarda la sesión en el store
// (notificando a los suscriptores).
func (b *HTTPBackend) Login(ctx context.Context, req dto.LoginRequest) error {
	var resp dto.LoginResponse
	if err := b.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return err
	}
	b.sessions.Set(sessionFrom(resp))
	return nil
}

// RefreshSession renueva el token vigente (efecto de refresco que usa la
// caché en su camino de reintento por error de auth).
func (b *HTTPBackend) RefreshSession(ctx context.Context) error {
	var resp dto.LoginResponse
	if err := b.doJSON(ctx, http.MethodPost, "/api/auth/refresh", nil, &resp); err != nil {
		b.sessions.Clear()
		return err
	}
	b.sessions.Set(sessionFrom(resp))
	return nil
}

// sessionFrom arma la sesión a partir de la respuesta de login/refresh. El
// vencimiento autoritativo es el claim exp del propio token; el campo
// serializado queda de respaldo por si el token no trae expiración.
func sessionFrom(resp dto.LoginResponse) session.Session {
	expiresAt := resp.ExpiresAt
	if exp, err := jwt.ExpiresAt(resp.Token); err == nil {
		expiresAt = exp
	}
	return session.Session{
		UserID:    resp.User.ID,
		CompanyID: resp.User.CompanyID,
		Role:      resp.User.Role,
		Token:     resp.Token,
		ExpiresAt: expiresAt,
	}
}

// doJSON emite una petición JSON y decodifica la respuesta en out (si no es
// nil). Errores de red y timeouts salen como KindUnavailable; los estados
// HTTP se mapean a Kind estables.
func (b *HTTPBackend) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("stockclient: serializar cuerpo: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("stockclient: construir petición: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := b.sessions.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.KindUnavailable, "backend de stock inaccesible", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.WrapError(domain.KindUnavailable, "leer respuesta del backend", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var errBody dto.ErrorResponse
		_ = json.Unmarshal(raw, &errBody)
		if errBody.Message == "" {
			errBody.Message = http.StatusText(resp.StatusCode)
		}
		b.log.Debug().Str("path", path).Int("status", resp.StatusCode).
			Str("code", errBody.Code).Msg("stockclient: error del backend")
		return domain.NewError(kindFor(resp.StatusCode, errBody.Code), errBody.Message)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("stockclient: decodificar respuesta de %s: %w", path, err)
		}
	}
	return nil
}

// kindFor traduce estado HTTP + código de error del backend a Kind.
func kindFor(status int, code string) domain.Kind {
	switch {
	case status == http.StatusUnauthorized:
		return domain.KindAuth
	case status == http.StatusNotFound:
		return domain.KindNotFound
	case status == http.StatusBadRequest:
		return domain.KindValidation
	case status == http.StatusConflict:
		if code == "INSUFFICIENT_STOCK" {
			return domain.KindInsufficientStock
		}
		return domain.KindConflict
	case status >= http.StatusInternalServerError, status == http.StatusRequestTimeout:
		return domain.KindUnavailable
	}
	return domain.KindUnknown
}
