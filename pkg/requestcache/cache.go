// Package requestcache implementa la caché de peticiones del SDK: memoiza el
// resultado de un fetch por clave durante un TTL corto y colapsa callers
// concurrentes de la misma clave en una sola petición en vuelo.
//
// A diferencia del origen (un solo hilo cooperativo), aquí hay paralelismo
// real: todos los mapas van protegidos por un mutex y la garantía de "una
// petición en vuelo por clave" se sostiene publicando el resultado por un
// canal cerrado al resolver.
package requestcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// Valores por defecto. Los dominios críticos cambian con frecuencia y toleran
// poca obsolescencia; el resto puede vivir más tiempo en caché.
const (
	DefaultCriticalTTL = 5 * time.Second
	DefaultTTL         = 30 * time.Second
	// DefaultWaitTimeout es cuánto espera un caller una petición en vuelo
	// ajena antes de abandonarla y lanzar la suya (protección contra fetch
	// colgado; la petición original no se cancela).
	DefaultWaitTimeout = 8 * time.Second
)

// FetchFunc produce el valor para una clave.
type FetchFunc func(ctx context.Context) (any, error)

// SessionRefresher ejecuta el efecto de refresco de sesión cuando un fetch
// falla con error de autenticación. La caché lo invoca exactamente una vez
// por intento y reintenta el fetch exactamente una vez.
type SessionRefresher interface {
	RefreshSession(ctx context.Context) error
}

type entry struct {
	value    any
	storedAt time.Time
}

// pendingFetch es el slot de una petición en vuelo. done se cierra al
// resolver; value/err solo se leen después del cierre. dropped marca que el
// slot fue invalidado explícitamente y su resultado no debe escribirse.
type pendingFetch struct {
	done    chan struct{}
	value   any
	err     error
	dropped bool
}

// Cache es una instancia construida y poseída explícitamente (se inyecta,
// no hay estado global de paquete).
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	pending map[string]*pendingFetch

	criticalTTL      time.Duration
	defaultTTL       time.Duration
	waitTimeout      time.Duration
	criticalPrefixes []string

	refresher SessionRefresher
	log       *logger.Logger
	now       func() time.Time
}

// Option configura la caché.
type Option func(*Cache)

// WithTTLs fija el TTL crítico y el TTL por defecto.
func WithTTLs(critical, def time.Duration) Option {
	return func(c *Cache) {
		c.criticalTTL = critical
		c.defaultTTL = def
	}
}

// WithWaitTimeout fija el tiempo máximo de espera sobre una petición ajena.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Cache) { c.waitTimeout = d }
}

// WithSessionRefresher habilita el reintento único tras error de autenticación.
func WithSessionRefresher(r SessionRefresher) Option {
	return func(c *Cache) { c.refresher = r }
}

// WithLogger inyecta el logger estructurado.
func WithLogger(l *logger.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithClock inyecta la fuente de tiempo (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithCriticalPrefixes reemplaza la lista de prefijos de TTL corto.
func WithCriticalPrefixes(prefixes ...string) Option {
	return func(c *Cache) { c.criticalPrefixes = prefixes }
}

// New construye la caché.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:          make(map[string]entry),
		pending:          make(map[string]*pendingFetch),
		criticalTTL:      DefaultCriticalTTL,
		defaultTTL:       DefaultTTL,
		waitTimeout:      DefaultWaitTimeout,
		criticalPrefixes: append([]string(nil), CriticalPrefixes...),
		log:              logger.Nop(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get devuelve el valor para key: se une a la petición en vuelo si existe,
// sirve la entrada cacheada si está dentro de su TTL, o ejecuta fetch y
// registra el resultado. Los errores nunca se tragan; la única excepción es
// el camino de reintento por error de autenticación (ver startFetch).
func (c *Cache) Get(ctx context.Context, key string, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	if p := c.pending[key]; p != nil {
		c.mu.Unlock()
		c.log.Debug().Str("key", key).Msg("cache: unido a petición en vuelo")
		select {
		case <-p.done:
			return p.value, p.err
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.waitTimeout):
			// La petición compartida lleva demasiado colgada: se abandona el
			// slot y este caller lanza la suya. La original no se cancela y
			// puede resolver más tarde (last-write-wins sobre la entrada).
			c.log.Warn().Str("key", key).Dur("timeout", c.waitTimeout).
				Msg("cache: petición en vuelo abandonada por timeout")
			c.mu.Lock()
			if c.pending[key] == p {
				delete(c.pending, key)
			}
			return c.startFetch(ctx, key, fetch)
		}
	}
	if e, ok := c.entries[key]; ok && c.now().Sub(e.storedAt) < c.ttlFor(key) {
		c.mu.Unlock()
		c.log.Debug().Str("key", key).Msg("cache: hit")
		return e.value, nil
	}
	return c.startFetch(ctx, key, fetch)
}

// startFetch registra el slot pendiente y ejecuta fetch en la goroutine del
// caller; los demás callers se unen vía el canal done. Se llama con c.mu
// tomado y lo libera.
func (c *Cache) startFetch(ctx context.Context, key string, fetch FetchFunc) (any, error) {
	p := &pendingFetch{done: make(chan struct{})}
	c.pending[key] = p
	c.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil && c.refresher != nil && domain.IsAuth(err) {
		// Error de sesión: vaciar los valores cacheados (pueden ser de la
		// sesión anterior), refrescar la sesión una sola vez y reintentar el
		// fetch una sola vez. Un segundo fallo se propaga tal cual.
		c.log.Warn().Str("key", key).Err(err).Msg("cache: error de auth, refrescando sesión")
		c.clearValues()
		if rerr := c.refresher.RefreshSession(ctx); rerr != nil {
			c.log.Error().Err(rerr).Msg("cache: refresco de sesión falló")
		}
		value, err = fetch(ctx)
	}

	c.settle(key, p, value, err)
	return value, err
}

// settle publica el resultado a los waiters y actualiza los mapas: éxito
// cachea el valor (salvo slot invalidado), fallo limpia el slot sin cachear.
func (c *Cache) settle(key string, p *pendingFetch, value any, err error) {
	c.mu.Lock()
	if c.pending[key] == p {
		delete(c.pending, key)
	}
	if err == nil && !p.dropped {
		c.entries[key] = entry{value: value, storedAt: c.now()}
	}
	c.mu.Unlock()

	p.value = value
	p.err = err
	close(p.done)
}

// ttlFor devuelve el TTL según el prefijo de la clave.
func (c *Cache) ttlFor(key string) time.Duration {
	for _, prefix := range c.criticalPrefixes {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			return c.criticalTTL
		}
	}
	return c.defaultTTL
}

// Invalidate elimina la entrada de key y descarta su slot pendiente: los
// waiters actuales reciben el resultado pero no se cachea.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	if p := c.pending[key]; p != nil {
		p.dropped = true
		delete(c.pending, key)
	}
	c.mu.Unlock()
	c.log.Debug().Str("key", key).Msg("cache: invalidada")
}

// InvalidateByPattern elimina toda clave que contenga substring (entradas y
// slots pendientes). Se usa tras mutaciones para forzar relectura.
func (c *Cache) InvalidateByPattern(substring string) {
	c.mu.Lock()
	for key := range c.entries {
		if containsSubstring(key, substring) {
			delete(c.entries, key)
		}
	}
	for key, p := range c.pending {
		if containsSubstring(key, substring) {
			p.dropped = true
			delete(c.pending, key)
		}
	}
	c.mu.Unlock()
	c.log.Debug().Str("pattern", substring).Msg("cache: invalidación por patrón")
}

// Clear vacía la caché completa y descarta todos los slots pendientes.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	for key, p := range c.pending {
		p.dropped = true
		delete(c.pending, key)
	}
	c.mu.Unlock()
}

// clearValues vacía solo los valores cacheados, sin tocar los slots
// pendientes (camino de refresco de sesión: el slot propio debe poder
// cachear el resultado del reintento).
func (c *Cache) clearValues() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Keys devuelve las claves cacheadas actualmente (introspección/debug).
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// PendingKeys devuelve las claves con petición en vuelo (introspección/debug).
func (c *Cache) PendingKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.pending))
	for key := range c.pending {
		keys = append(keys, key)
	}
	return keys
}

// GetTyped es el helper genérico sobre Cache.Get para no repetir aserciones
// de tipo en los call sites.
func GetTyped[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("requestcache: valor de tipo %T no convertible a %T para clave %q", v, zero, key)
	}
	return typed, nil
}
