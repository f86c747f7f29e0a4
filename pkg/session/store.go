// Package session mantiene la sesión vigente del SDK en una única instancia
// inyectada. Los interesados se suscriben a cambios en lugar de sondear
// estado compartido con un intervalo.
package session

import (
	"sync"
	"time"
)

// Session es la sesión autenticada actual.
type Session struct {
	UserID    string
	CompanyID string
	Role      string
	Token     string
	ExpiresAt time.Time
}

// Active indica si la sesión tiene token sin expirar.
func (s Session) Active() bool {
	return s.Token != "" && time.Now().Before(s.ExpiresAt)
}

// Listener recibe la sesión tras cada cambio. ok=false significa sesión
// cerrada (Clear).
type Listener func(current Session, ok bool)

// Store es el contenedor de sesión: mutex + observadores. Se construye y se
// inyecta; no hay singleton de paquete.
type Store struct {
	mu        sync.Mutex
	current   Session
	hasActive bool
	nextID    int
	listeners map[int]Listener
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// Current devuelve la sesión vigente; ok=false si no hay sesión.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasActive
}

// Token devuelve el token vigente o cadena vacía.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasActive {
		return ""
	}
	return s.current.Token
}

// Set reemplaza la sesión y notifica a los suscriptores.
func (s *Store) Set(sess Session) {
	s.mu.Lock()
	s.current = sess
	s.hasActive = true
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(sess, true)
	}
}

// Clear cierra la sesión y notifica a los suscriptores.
func (s *Store) Clear() {
	s.mu.Lock()
	s.current = Session{}
	s.hasActive = false
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(Session{}, false)
	}
}

// Subscribe registra un observador y devuelve la función para darse de baja.
// El observador se invoca fuera del lock: puede llamar al store sin deadlock.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshotListeners copia los observadores vigentes; llamar con el lock tomado.
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}
