package stagegin

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justinas/alice"
	"github.com/rs/zerolog"
	"github.com/stagekit/stage/stagehttp"
	"github.com/xmidt-org/httpaux"
)

// options collects the engine knobs shared by NewServer
type options struct {
	engine     []func(*gin.Engine) error
	middleware []alice.Constructor
	chain      stagehttp.ListenerChain
	logger     zerolog.Logger
}

// Option tailors a staged gin server beyond what its Config describes
type Option func(*options)

// WithEngine exposes the underlying gin.Engine so a test can register
// its own application handlers on the staged server.
func WithEngine(f func(*gin.Engine) error) Option {
	return func(o *options) {
		o.engine = append(o.engine, f)
	}
}

// WithMiddleware appends middleware to the server's handler chain,
// after the built-in request-id and access-log middleware.  These wrap
// the whole engine; gin-native middleware belongs in WithEngine.
func WithMiddleware(m ...alice.Constructor) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithListenerChain decorates the listener used to accept traffic
func WithListenerChain(lc stagehttp.ListenerChain) Option {
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

// Server is the gin backed server engine
type Server struct {
	*stagehttp.Base
	engine *gin.Engine
}

var _ stagehttp.Server = (*Server)(nil)

// Engine returns the underlying gin.Engine.  Handlers may be registered
// before the server starts.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// NewServer creates a staged server backed by gin from the given
// configuration.  The server is created stopped.
func NewServer(cfg stagehttp.Config, opts ...Option) (*Server, error) {
	o := options{
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	if err := assemble(engine, cfg, o.engine); err != nil {
		return nil, err
	}

	handler := alice.New(
		append(
			[]alice.Constructor{stagehttp.RequestID(), stagehttp.AccessLog(o.logger)},
			o.middleware...,
		)...,
	).Then(engine)

	base, err := stagehttp.NewBase(cfg, stagehttp.ResponseHeaders(httpaux.NewHeader(cfg.Header), handler))
	if err != nil {
		return nil, err
	}

	base.UseListenerChain(o.chain)
	return &Server{
		Base:   base,
		engine: engine,
	}, nil
}

// assemble mounts descriptor routes, resource directories and the
// webapp root under the configured path
func assemble(engine *gin.Engine, cfg stagehttp.Config, custom []func(*gin.Engine) error) error {
	strip := strings.TrimSuffix(cfg.Path, "/")
	group := engine.Group(cfg.Path)

	if cfg.Descriptor != "" {
		routes, err := stagehttp.ReadRoutes(cfg.Descriptor)
		if err != nil {
			return err
		}

		for _, r := range routes {
			group.Handle(r.Method, r.Path, gin.WrapH(r.Handler()))
		}
	}

	for _, f := range custom {
		if err := f(engine); err != nil {
			return err
		}
	}

	for _, dir := range cfg.Resources {
		group.StaticFS("/"+filepath.Base(dir), http.Dir(dir))
	}

	if cfg.Webapp != "" {
		files := http.StripPrefix(strip, http.FileServer(http.Dir(cfg.Webapp)))
		engine.NoRoute(func(c *gin.Context) {
			if strip == "" || strings.HasPrefix(c.Request.URL.Path, strip+"/") {
				files.ServeHTTP(c.Writer, c.Request)
				return
			}

			c.Status(http.StatusNotFound)
		})
	}

	return nil
}
