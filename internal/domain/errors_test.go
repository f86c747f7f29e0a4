package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Almacen-api/internal/domain"
)

// La clasificación debe salir del Kind tipado, no del texto del mensaje.
func TestKindOf_ErroresTipados(t *testing.T) {
	cases := []struct {
		err  error
		want domain.Kind
	}{
		{domain.NewError(domain.KindAuth, "lo que sea"), domain.KindAuth},
		{domain.NewError(domain.KindInsufficientStock, "sin stock"), domain.KindInsufficientStock},
		{domain.WrapError(domain.KindUnavailable, "backend caído", errors.New("dial tcp")), domain.KindUnavailable},
		// Envuelto con fmt: errors.As atraviesa la cadena.
		{fmt.Errorf("contexto: %w", domain.NewError(domain.KindValidation, "inválido")), domain.KindValidation},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, domain.KindOf(c.err), "error: %v", c.err)
	}
}

func TestKindOf_Sentinels(t *testing.T) {
	cases := []struct {
		err  error
		want domain.Kind
	}{
		{domain.ErrUnauthorized, domain.KindAuth},
		{domain.ErrSessionExpired, domain.KindAuth},
		{domain.ErrNotFound, domain.KindNotFound},
		{domain.ErrInsufficientStock, domain.KindInsufficientStock},
		{domain.ErrSameWarehouse, domain.KindValidation},
		{domain.ErrInvalidInput, domain.KindValidation},
		{domain.ErrDuplicate, domain.KindConflict},
		{fmt.Errorf("al reservar: %w", domain.ErrInsufficientStock), domain.KindInsufficientStock},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, domain.KindOf(c.err), "error: %v", c.err)
	}
}

// Backends legados solo devuelven texto: los mensajes de auth conocidos deben
// seguir clasificando como KindAuth.
func TestKindOf_FallbackPorMensaje(t *testing.T) {
	authLike := []string{
		"JWT expired",
		"error: Invalid Token",
		"la sesión expiró: session expired",
		"request failed with status 401",
	}
	for _, msg := range authLike {
		assert.Equal(t, domain.KindAuth, domain.KindOf(errors.New(msg)), "mensaje: %q", msg)
		assert.True(t, domain.IsAuth(errors.New(msg)))
	}

	assert.Equal(t, domain.KindUnknown, domain.KindOf(errors.New("cualquier otro fallo")))
	assert.False(t, domain.IsAuth(errors.New("connection refused")))
}

func TestError_UnwrapConservaLaCausa(t *testing.T) {
	cause := errors.New("raíz")
	err := domain.WrapError(domain.KindConflict, "conflicto", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "conflicto", err.Error())
	assert.Equal(t, string(domain.KindUnknown), domain.NewError(domain.KindUnknown, "").Error(),
		"sin mensaje ni causa, Error() devuelve el kind")
}
