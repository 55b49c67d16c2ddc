package stagehttp

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/stagekit/stage"
	"go.uber.org/multierr"
)

const (
	// DefaultPath is the mount path used when none is configured
	DefaultPath = "/"

	// DefaultStopTimeout bounds graceful shutdown when no stop timeout
	// is configured
	DefaultStopTimeout = 30 * time.Second

	// DefaultWebapp is the conventional static content root, used when no
	// webapp is configured and the directory exists
	DefaultWebapp = "testdata/webapp"
)

// Config describes a staged server.  This struct can be unmarshaled via
// the root stage package, allowing a server to be bootstrapped from
// external configuration, or built fluently with a Builder.
//
// A Config is treated as immutable once built: it is safe to share one
// Config value across any number of servers and test runs.  None of the
// server engines ever mutate the Config they are given.
type Config struct {
	// Port is the port to bind.  The default of 0 binds the first
	// available port, which is almost always what a test wants.
	Port int

	// Path is the mount path of the staged application.  The default is "/".
	Path string

	// Webapp is an optional directory of static content served under Path.
	Webapp string

	// Resources are optional additional directories, each mounted under
	// Path at the directory's base name.
	Resources []string

	// Env are environment properties applied before the server starts
	// and restored after it stops.
	Env map[string]string

	// Header supplies HTTP headers to emit on every response from this server
	Header http.Header

	// Descriptor is an optional path to a YAML route descriptor file
	// defining canned routes served by the staged server.
	Descriptor string

	// ReadTimeout corresponds to http.Server.ReadTimeout
	ReadTimeout time.Duration

	// WriteTimeout corresponds to http.Server.WriteTimeout
	WriteTimeout time.Duration

	// IdleTimeout corresponds to http.Server.IdleTimeout
	IdleTimeout time.Duration

	// StopTimeout bounds graceful shutdown.  The default is DefaultStopTimeout.
	StopTimeout time.Duration

	// StopAtShutdown, when set, stops the server when the test process
	// receives an interrupt or termination signal.  Otherwise the process
	// exits with the server running.
	StopAtShutdown bool

	// TLS is the optional TLS configuration.  If set, the staged server
	// serves HTTPS.
	TLS *TLS

	// Hooks are invoked in order before the server starts and in reverse
	// order after it stops.  Hooks cannot be unmarshaled and are excluded
	// from Equal.
	Hooks stage.Hooks `mapstructure:"-"`
}

// Default returns the default configuration: ephemeral port, "/" mount
// path, and the default stop timeout.
func Default() Config {
	return Config{
		Path:        DefaultPath,
		StopTimeout: DefaultStopTimeout,
	}
}

// normalize fills zero values with defaults.  Unmarshaled configurations
// pass through here so that a partially specified document behaves the
// same as a Builder-produced Config.
func (c Config) normalize() Config {
	if c.Path == "" {
		c.Path = DefaultPath
	}

	if c.StopTimeout == 0 {
		c.StopTimeout = DefaultStopTimeout
	}

	if c.Webapp == "" {
		if info, err := os.Stat(DefaultWebapp); err == nil && info.IsDir() {
			c.Webapp = DefaultWebapp
		}
	}

	return c
}

// Validate reports every invalid field of this Config, combined into a
// single error.  A zero Config is not valid until normalized, since the
// stop timeout must be positive.
func (c Config) Validate() (err error) {
	if c.Port < 0 {
		err = multierr.Append(err, fmt.Errorf("port must not be negative: %d", c.Port))
	}

	if strings.TrimSpace(c.Path) == "" {
		err = multierr.Append(err, errors.New("path must not be blank"))
	} else if !strings.HasPrefix(c.Path, "/") {
		err = multierr.Append(err, fmt.Errorf("path must start with '/': %q", c.Path))
	}

	if c.StopTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("stop timeout must be positive: %s", c.StopTimeout))
	}

	for key := range c.Env {
		if strings.TrimSpace(key) == "" {
			err = multierr.Append(err, errors.New("environment property names must not be blank"))
		}
	}

	for _, dir := range c.Resources {
		if strings.TrimSpace(dir) == "" {
			err = multierr.Append(err, errors.New("resource directories must not be blank"))
		}
	}

	for _, h := range c.Hooks {
		if h == nil {
			err = multierr.Append(err, errors.New("hooks must not be nil"))
		}
	}

	return
}

// Equal tests whether two configurations hold the same values.  Hooks
// are behavioral and excluded from value equality.
func (c Config) Equal(o Config) bool {
	switch {
	case c.Port != o.Port,
		c.Path != o.Path,
		c.Webapp != o.Webapp,
		c.Descriptor != o.Descriptor,
		c.ReadTimeout != o.ReadTimeout,
		c.WriteTimeout != o.WriteTimeout,
		c.IdleTimeout != o.IdleTimeout,
		c.StopTimeout != o.StopTimeout,
		c.StopAtShutdown != o.StopAtShutdown,
		len(c.Resources) != len(o.Resources),
		len(c.Env) != len(o.Env),
		len(c.Header) != len(o.Header):
		return false
	}

	for i, dir := range c.Resources {
		if o.Resources[i] != dir {
			return false
		}
	}

	for key, value := range c.Env {
		if actual, ok := o.Env[key]; !ok || actual != value {
			return false
		}
	}

	for key, values := range c.Header {
		actual, ok := o.Header[key]
		if !ok || len(actual) != len(values) {
			return false
		}

		for i, value := range values {
			if actual[i] != value {
				return false
			}
		}
	}

	switch {
	case c.TLS == nil && o.TLS == nil:
		return true

	case c.TLS == nil || o.TLS == nil:
		return false

	default:
		return *c.TLS == *o.TLS
	}
}

// String satisfies fmt.Stringer
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{port: %d, path: %s, webapp: %s, resources: %v, env: %v, header: %v, descriptor: %s, readTimeout: %s, writeTimeout: %s, idleTimeout: %s, stopTimeout: %s, stopAtShutdown: %t, tls: %t}",
		c.Port, c.Path, c.Webapp, c.Resources, c.Env, c.Header, c.Descriptor, c.ReadTimeout, c.WriteTimeout, c.IdleTimeout, c.StopTimeout, c.StopAtShutdown, c.TLS != nil,
	)
}

// Builder assembles a Config fluently.  Each method returns the builder
// for chaining.  Build validates every supplied value and fails fast
// with the combined validation errors.
type Builder struct {
	cfg  Config
	errs []error
}

// NewBuilder starts a builder chain seeded with the default configuration.
func NewBuilder() *Builder {
	return &Builder{
		cfg: Default(),
	}
}

// Port sets the bind port.  Zero selects an ephemeral port.
func (b *Builder) Port(port int) *Builder {
	if port < 0 {
		b.errs = append(b.errs, fmt.Errorf("port must not be negative: %d", port))
	} else {
		b.cfg.Port = port
	}

	return b
}

// Path sets the mount path of the staged application
func (b *Builder) Path(path string) *Builder {
	if strings.TrimSpace(path) == "" {
		b.errs = append(b.errs, errors.New("path must not be blank"))
	} else {
		b.cfg.Path = path
	}

	return b
}

// Webapp sets the static content root served under the mount path
func (b *Builder) Webapp(dir string) *Builder {
	if strings.TrimSpace(dir) == "" {
		b.errs = append(b.errs, errors.New("webapp must not be blank"))
	} else {
		b.cfg.Webapp = dir
	}

	return b
}

// Resource adds an additional directory mounted under the mount path
func (b *Builder) Resource(dir string) *Builder {
	if strings.TrimSpace(dir) == "" {
		b.errs = append(b.errs, errors.New("resource directories must not be blank"))
	} else {
		b.cfg.Resources = append(b.cfg.Resources, dir)
	}

	return b
}

// Env adds an environment property applied before start and restored
// after stop
func (b *Builder) Env(name, value string) *Builder {
	if strings.TrimSpace(name) == "" {
		b.errs = append(b.errs, errors.New("environment property names must not be blank"))
		return b
	}

	if b.cfg.Env == nil {
		b.cfg.Env = make(map[string]string)
	}

	b.cfg.Env[name] = value
	return b
}

// Header adds a response header emitted on every response
func (b *Builder) Header(name, value string) *Builder {
	if strings.TrimSpace(name) == "" {
		b.errs = append(b.errs, errors.New("header names must not be blank"))
		return b
	}

	if b.cfg.Header == nil {
		b.cfg.Header = make(http.Header)
	}

	b.cfg.Header.Add(name, value)
	return b
}

// Hook appends a lifecycle hook
func (b *Builder) Hook(h stage.Hook) *Builder {
	if h == nil {
		b.errs = append(b.errs, errors.New("hooks must not be nil"))
	} else {
		b.cfg.Hooks = append(b.cfg.Hooks, h)
	}

	return b
}

// Descriptor sets the route descriptor file
func (b *Builder) Descriptor(path string) *Builder {
	if strings.TrimSpace(path) == "" {
		b.errs = append(b.errs, errors.New("descriptor must not be blank"))
	} else {
		b.cfg.Descriptor = path
	}

	return b
}

// ReadTimeout sets http.Server.ReadTimeout
func (b *Builder) ReadTimeout(d time.Duration) *Builder {
	b.cfg.ReadTimeout = d
	return b
}

// WriteTimeout sets http.Server.WriteTimeout
func (b *Builder) WriteTimeout(d time.Duration) *Builder {
	b.cfg.WriteTimeout = d
	return b
}

// IdleTimeout sets http.Server.IdleTimeout
func (b *Builder) IdleTimeout(d time.Duration) *Builder {
	b.cfg.IdleTimeout = d
	return b
}

// StopTimeout bounds graceful shutdown.  It must be positive.
func (b *Builder) StopTimeout(d time.Duration) *Builder {
	if d <= 0 {
		b.errs = append(b.errs, fmt.Errorf("stop timeout must be positive: %s", d))
	} else {
		b.cfg.StopTimeout = d
	}

	return b
}

// StopAtShutdown stops the server when the test process receives an
// interrupt or termination signal
func (b *Builder) StopAtShutdown(f bool) *Builder {
	b.cfg.StopAtShutdown = f
	return b
}

// TLS sets the TLS configuration, switching the staged server to HTTPS
func (b *Builder) TLS(t *TLS) *Builder {
	b.cfg.TLS = t
	return b
}

// Build validates the assembled configuration and returns it.  The
// returned Config holds defensive copies of every collection, so the
// builder may be reused or discarded freely afterward.
func (b *Builder) Build() (Config, error) {
	if err := multierr.Combine(b.errs...); err != nil {
		return Config{}, err
	}

	cfg := b.cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	if len(b.cfg.Resources) > 0 {
		cfg.Resources = append([]string{}, b.cfg.Resources...)
	}

	if len(b.cfg.Env) > 0 {
		cfg.Env = make(map[string]string, len(b.cfg.Env))
		for key, value := range b.cfg.Env {
			cfg.Env[key] = value
		}
	}

	if len(b.cfg.Header) > 0 {
		cfg.Header = b.cfg.Header.Clone()
	}

	if len(b.cfg.Hooks) > 0 {
		cfg.Hooks = append(stage.Hooks{}, b.cfg.Hooks...)
	}

	if b.cfg.TLS != nil {
		clone := *b.cfg.TLS
		cfg.TLS = &clone
	}

	return cfg, nil
}
