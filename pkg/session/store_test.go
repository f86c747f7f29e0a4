package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/pkg/session"
)

func sampleSession() session.Session {
	return session.Session{
		UserID:    "u1",
		CompanyID: "e1",
		Role:      "bodeguero",
		Token:     "tok-123",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestStore_SinSesionInicial(t *testing.T) {
	store := session.NewStore()

	_, ok := store.Current()
	assert.False(t, ok)
	assert.Empty(t, store.Token())
}

func TestStore_SetYClear(t *testing.T) {
	store := session.NewStore()
	store.Set(sampleSession())

	current, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "tok-123", store.Token())
	assert.Equal(t, "u1", current.UserID)

	store.Clear()
	_, ok = store.Current()
	assert.False(t, ok)
	assert.Empty(t, store.Token())
}

// Los suscriptores reciben cada cambio en orden, sin sondear.
func TestStore_NotificaSuscriptores(t *testing.T) {
	store := session.NewStore()

	type event struct {
		sess session.Session
		ok   bool
	}
	var events []event
	unsubscribe := store.Subscribe(func(s session.Session, ok bool) {
		events = append(events, event{sess: s, ok: ok})
	})
	defer unsubscribe()

	store.Set(sampleSession())
	store.Clear()

	require.Len(t, events, 2)
	assert.True(t, events[0].ok)
	assert.Equal(t, "u1", events[0].sess.UserID)
	assert.False(t, events[1].ok, "Clear notifica sesión cerrada")
	assert.Empty(t, events[1].sess.Token)
}

func TestStore_Unsubscribe_DejaDeNotificar(t *testing.T) {
	store := session.NewStore()

	calls := 0
	unsubscribe := store.Subscribe(func(session.Session, bool) { calls++ })

	store.Set(sampleSession())
	require.Equal(t, 1, calls)

	unsubscribe()
	store.Clear()
	assert.Equal(t, 1, calls, "tras darse de baja no llegan más notificaciones")
}

// Un observador puede leer el store dentro del callback (se notifica fuera
// del lock).
func TestStore_ObservadorPuedeLeerElStore(t *testing.T) {
	store := session.NewStore()

	var seenToken string
	unsubscribe := store.Subscribe(func(session.Session, bool) {
		seenToken = store.Token()
	})
	defer unsubscribe()

	store.Set(sampleSession())
	assert.Equal(t, "tok-123", seenToken)
}

func TestSession_Active(t *testing.T) {
	assert.False(t, session.Session{}.Active(), "sin token no hay sesión activa")
	assert.False(t, session.Session{Token: "t", ExpiresAt: time.Now().Add(-time.Minute)}.Active(),
		"token expirado no es sesión activa")
	assert.True(t, session.Session{Token: "t", ExpiresAt: time.Now().Add(time.Minute)}.Active())
}
