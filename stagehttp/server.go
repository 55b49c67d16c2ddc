package stagehttp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/stagekit/stage"
	"go.uber.org/multierr"
)

// Server is the contract every staged server engine satisfies.  A Server
// is created stopped, started at most once at a time, and may be started
// again after a stop.
type Server interface {
	stage.Target

	// Start applies environment properties, runs the configured hooks,
	// binds the listener and begins serving.  Starting a started server
	// returns an error satisfying errors.Is(err, ErrAlreadyStarted).
	Start(ctx context.Context) error

	// Stop gracefully shuts the server down within the configured stop
	// timeout, runs the configured hooks in reverse order, and restores
	// environment properties.  Teardown always runs to completion, even
	// when individual steps fail.  Stopping a stopped server returns an
	// error satisfying errors.Is(err, ErrNotStarted).
	Stop(ctx context.Context) error

	// Started reports whether the server is currently running
	Started() bool

	// Config returns the configuration this server was created with
	Config() Config
}

// envProperty remembers the process environment prior to Start so that
// Stop can put it back.
type envProperty struct {
	name    string
	value   string
	present bool
}

// Base is the lifecycle core shared by the server engines.  It owns the
// started/stopped state, environment property handling, hook invocation
// and the accept loop.  Engines supply the http.Handler and may decorate
// the listener; everything else is Base.
//
// Base satisfies Server.  It is safe for concurrent use.
type Base struct {
	cfg     Config
	handler http.Handler
	factory ListenerFactory
	chain   ListenerChain
	onExit  []func()

	mu      sync.Mutex
	started bool
	server  *http.Server
	port    int
	env     []envProperty
	sigs    chan os.Signal
}

// NewBase creates the lifecycle core for a staged server.  The supplied
// configuration is normalized and validated; the handler is what the
// engine assembled from it.
func NewBase(cfg Config, handler http.Handler) (*Base, error) {
	cfg = cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Base{
		cfg:     cfg,
		handler: handler,
		factory: DefaultListenerFactory{},
	}, nil
}

// UseListenerChain sets the chain that decorates this server's listener.
// It must be called before Start.
func (b *Base) UseListenerChain(lc ListenerChain) {
	b.chain = lc
}

// OnExit registers a callback invoked when the accept loop exits for any
// reason.  Used by stagefx to shut down the enclosing application when a
// staged server dies.
func (b *Base) OnExit(f func()) {
	b.onExit = append(b.onExit, f)
}

// Config implements Server
func (b *Base) Config() Config {
	return b.cfg
}

// Started implements Server
func (b *Base) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

// Port implements stage.Target.  Once started, this is the resolved
// port, even when the configuration asked for an ephemeral one.
func (b *Base) Port() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return b.port
	}

	return b.cfg.Port
}

// URL implements stage.Target
func (b *Base) URL() string {
	return b.urlFor(b.Port())
}

func (b *Base) urlFor(port int) string {
	scheme := "http"
	if b.cfg.TLS != nil {
		scheme = "https"
	}

	return fmt.Sprintf("%s://127.0.0.1:%d%s", scheme, port, b.cfg.Path)
}

// hookTarget is an immutable snapshot of a server handed to lifecycle
// hooks.  Hooks run while the server's mutex is held, so they receive a
// lock-free view rather than the server itself.
type hookTarget struct {
	port int
	url  string
}

func (t hookTarget) Port() int   { return t.port }
func (t hookTarget) URL() string { return t.url }

// snapshot captures the hook view of this server.  The caller must hold
// b.mu.
func (b *Base) snapshot() stage.Target {
	port := b.cfg.Port
	if b.started {
		port = b.port
	}

	return hookTarget{port: port, url: b.urlFor(port)}
}

// Start implements Server
func (b *Base) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return serverError("start", ErrAlreadyStarted)
	}

	b.applyEnv()
	if err := b.cfg.Hooks.OnStart(ctx, b.snapshot()); err != nil {
		err = multierr.Append(err, b.restoreEnv())
		return serverError("start", err)
	}

	tc, err := b.cfg.TLS.New()
	if err != nil {
		err = multierr.Append(err, b.restoreEnv())
		return serverError("start", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", b.cfg.Port),
		Handler:      b.handler,
		ReadTimeout:  b.cfg.ReadTimeout,
		WriteTimeout: b.cfg.WriteTimeout,
		IdleTimeout:  b.cfg.IdleTimeout,
		TLSConfig:    tc,
	}

	listener, err := b.chain.Factory(b.factory).Listen(ctx, server)
	if err != nil {
		err = multierr.Append(err, b.restoreEnv())
		return serverError("start", err)
	}

	b.server = server
	b.port = listener.Addr().(*net.TCPAddr).Port
	b.started = true

	go b.serve(server, listener)

	if b.cfg.StopAtShutdown {
		b.sigs = make(chan os.Signal, 1)
		signal.Notify(b.sigs, os.Interrupt, syscall.SIGTERM)
		go b.stopOnSignal(b.sigs)
	}

	return nil
}

// serve runs the accept loop and fires any exit callbacks when it ends
func (b *Base) serve(server *http.Server, listener net.Listener) {
	defer func() {
		for _, f := range b.onExit {
			f()
		}
	}()

	server.Serve(listener) // nolint:errcheck // http.ErrServerClosed on every normal stop
}

// stopOnSignal implements the stop-at-shutdown behavior.  The channel is
// closed by Stop, which also deregisters it.
func (b *Base) stopOnSignal(sigs <-chan os.Signal) {
	if _, open := <-sigs; open {
		b.Stop(context.Background()) // nolint:errcheck // best effort on process exit
	}
}

// Stop implements Server
func (b *Base) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return serverError("stop", ErrNotStarted)
	}

	if b.sigs != nil {
		signal.Stop(b.sigs)
		close(b.sigs)
		b.sigs = nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, b.cfg.StopTimeout)
	defer cancel()

	err := b.server.Shutdown(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		// the stop timeout elapsed with connections still open
		err = multierr.Append(err, b.server.Close())
	}

	err = multierr.Append(err, b.cfg.Hooks.OnStop(ctx, b.snapshot()))
	err = multierr.Append(err, b.restoreEnv())

	b.server = nil
	b.started = false
	return serverError("stop", err)
}

// applyEnv sets the configured environment properties, remembering the
// previous state of each so Stop can restore it.
func (b *Base) applyEnv() {
	b.env = b.env[:0]
	for name, value := range b.cfg.Env {
		previous, present := os.LookupEnv(name)
		b.env = append(b.env, envProperty{
			name:    name,
			value:   previous,
			present: present,
		})

		os.Setenv(name, value) // nolint:errcheck // only fails on blank names, rejected at build time
	}
}

// restoreEnv puts the process environment back the way applyEnv found it
func (b *Base) restoreEnv() (err error) {
	for _, p := range b.env {
		if p.present {
			err = multierr.Append(err, os.Setenv(p.name, p.value))
		} else {
			err = multierr.Append(err, os.Unsetenv(p.name))
		}
	}

	b.env = b.env[:0]
	return
}
