package stagehttp

import (
	"net"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/rs/zerolog"
	"github.com/xmidt-org/httpaux"
)

// options collects the engine knobs shared by NewServer
type options struct {
	router     []func(*mux.Router) error
	middleware []alice.Constructor
	chain      ListenerChain
	logger     zerolog.Logger
}

// Option tailors a staged server beyond what its Config describes
type Option func(*options)

// WithRouter exposes the underlying mux.Router so a test can register
// its own application handlers on the staged server.
func WithRouter(f func(*mux.Router) error) Option {
	return func(o *options) {
		o.router = append(o.router, f)
	}
}

// WithMiddleware appends middleware to the server's handler chain,
// after the built-in request-id and access-log middleware.
func WithMiddleware(m ...alice.Constructor) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithListenerChain decorates the listener used to accept traffic
func WithListenerChain(lc ListenerChain) Option {
	return func(o *options) {
		o.chain = o.chain.Extend(lc)
	}
}

// WithLogger sets the access logger.  The default is a nop logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// CaptureAddress is a shorthand for a listener chain that sends the
// resolved bind address to the given channel once the server starts.
func CaptureAddress(ch chan<- net.Addr) Option {
	return WithListenerChain(
		NewListenerChain(CaptureListenAddress(ch)),
	)
}

// MuxServer is the gorilla/mux backed server engine
type MuxServer struct {
	*Base
	router *mux.Router
}

// Router returns the underlying mux.Router.  Handlers may be registered
// before the server starts; gorilla/mux routers are not safe for
// registration while serving.
func (s *MuxServer) Router() *mux.Router {
	return s.router
}

// NewServer creates a staged server backed by gorilla/mux from the
// given configuration.  The server is created stopped.
func NewServer(cfg Config, opts ...Option) (*MuxServer, error) {
	o := options{
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	router := mux.NewRouter()
	if err := assemble(router, cfg, o.router); err != nil {
		return nil, err
	}

	handler := alice.New(
		append(
			[]alice.Constructor{RequestID(), AccessLog(o.logger)},
			o.middleware...,
		)...,
	).Then(router)

	base, err := NewBase(cfg, ResponseHeaders(httpaux.NewHeader(cfg.Header), handler))
	if err != nil {
		return nil, err
	}

	base.UseListenerChain(o.chain)
	return &MuxServer{
		Base:   base,
		router: router,
	}, nil
}

// assemble mounts descriptor routes, resource directories and the
// webapp root under the configured path
func assemble(router *mux.Router, cfg Config, custom []func(*mux.Router) error) error {
	strip := strings.TrimSuffix(cfg.Path, "/")

	mount := router
	if strip != "" {
		mount = router.PathPrefix(strip).Subrouter()
	}

	if cfg.Descriptor != "" {
		routes, err := ReadRoutes(cfg.Descriptor)
		if err != nil {
			return err
		}

		for _, r := range routes {
			mount.Path(r.Path).Methods(r.Method).Handler(r.Handler())
		}
	}

	for _, f := range custom {
		if err := f(router); err != nil {
			return err
		}
	}

	for _, dir := range cfg.Resources {
		base := "/" + filepath.Base(dir)
		mount.PathPrefix(base + "/").Handler(
			http.StripPrefix(strip+base, http.FileServer(http.Dir(dir))),
		)
	}

	if cfg.Webapp != "" {
		mount.PathPrefix("/").Handler(
			http.StripPrefix(strip, http.FileServer(http.Dir(cfg.Webapp))),
		)
	}

	return nil
}
