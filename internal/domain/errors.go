package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrSameWarehouse      = errors.New("bodega origen y destino no pueden ser la misma")
	ErrSessionExpired     = errors.New("sesión expirada")
)

// Kind clasifica un error de forma estable para que los consumidores (cache,
// cliente de stock, handlers HTTP) decidan sin inspeccionar mensajes.
type Kind string

const (
	KindAuth              Kind = "auth"               // sesión/token inválido o expirado
	KindNotFound          Kind = "not_found"          // recurso inexistente
	KindValidation        Kind = "validation"         // precondición del cliente
	KindConflict          Kind = "conflict"           // estado inconsistente con la operación
	KindInsufficientStock Kind = "insufficient_stock" // regla de negocio: no hay stock disponible
	KindUnavailable       Kind = "unavailable"        // backend inaccesible o timeout
	KindUnknown           Kind = "unknown"
)

// Error es un error de dominio con Kind estable y causa anidada.
type Error struct {
	Kind    Kind
	Message string
	Err     error // causa, puede ser nil
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// Unwrap permite errors.Is/As sobre la causa.
func (e *Error) Unwrap() error { return e.Err }

// NewError construye un error de dominio con Kind y mensaje.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError envuelve una causa con un Kind estable.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf devuelve el Kind de un error. Para errores tipados usa el campo Kind;
// para los sentinel del paquete los mapea; para errores ajenos sin tipo aplica
// la heurística legada por substring (compatibilidad con backends que solo
// devuelven mensajes).
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionExpired):
		return KindAuth
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrSameWarehouse):
		return KindValidation
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate), errors.Is(err, ErrEmailAlreadyExists):
		return KindConflict
	}
	if matchesAuthMessage(err.Error()) {
		return KindAuth
	}
	return KindUnknown
}

// IsAuth indica si el error corresponde a sesión/token inválido o expirado.
func IsAuth(err error) bool { return KindOf(err) == KindAuth }

// Substrings conocidos de errores de autenticación de backends sin taxonomía
// (Supabase/PostgREST y gateways devuelven estos textos).
var authMessageFragments = []string{
	"jwt expired",
	"invalid token",
	"token expired",
	"not authenticated",
	"session expired",
	"401",
}

func matchesAuthMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, frag := range authMessageFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
