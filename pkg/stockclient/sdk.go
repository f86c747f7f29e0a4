package stockclient

import (
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
	"github.com/jhoicas/Almacen-api/pkg/requestcache"
	"github.com/jhoicas/Almacen-api/pkg/session"
)

// SDK agrupa las piezas del cliente de stock ya cableadas entre sí: sesión,
// backend HTTP, caché de peticiones (con el backend como refrescador de
// sesión) y el cliente. Es el punto de entrada recomendado para consumidores.
type SDK struct {
	Client   *Client
	Cache    *requestcache.Cache
	Sessions *session.Store
	Backend  *HTTPBackend
}

// NewSDK construye el SDK desde la configuración. Los TTL y el timeout de
// espera de la caché salen de cacheCfg; un valor en cero cae al default del
// paquete requestcache.
func NewSDK(clientCfg config.ClientConfig, cacheCfg config.CacheConfig, log *logger.Logger) *SDK {
	if log == nil {
		log = logger.Nop()
	}
	sessions := session.NewStore()
	backend := NewHTTPBackend(clientCfg, sessions, log)

	opts := []requestcache.Option{
		requestcache.WithSessionRefresher(backend),
		requestcache.WithLogger(log),
	}
	if cacheCfg.CriticalTTL > 0 && cacheCfg.DefaultTTL > 0 {
		opts = append(opts, requestcache.WithTTLs(cacheCfg.CriticalTTL, cacheCfg.DefaultTTL))
	}
	if cacheCfg.WaitTimeout > 0 {
		opts = append(opts, requestcache.WithWaitTimeout(cacheCfg.WaitTimeout))
	}
	cache := requestcache.New(opts...)

	return &SDK{
		Client:   New(backend, cache, log),
		Cache:    cache,
		Sessions: sessions,
		Backend:  backend,
	}
}
