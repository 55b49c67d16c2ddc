package stageclient

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/stagekit/stage"
)

// Strategy selects the underlying client library a Client delegates to
type Strategy int

const (
	// StrategyAuto selects the preferred available strategy, currently resty
	StrategyAuto Strategy = iota

	// StrategyResty delegates to go-resty
	StrategyResty

	// StrategyNetHTTP delegates to net/http
	StrategyNetHTTP
)

// String satisfies fmt.Stringer
func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyResty:
		return "resty"
	case StrategyNetHTTP:
		return "nethttp"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// resolve maps StrategyAuto onto a concrete strategy
func (s Strategy) resolve() Strategy {
	if s == StrategyAuto {
		return StrategyResty
	}

	return s
}

// Client issues fluent requests against a staged server.  A Client is
// created against a running server and destroyed when the test is done
// with it; Destroy is safe to call from multiple goroutines and is
// idempotent.
type Client interface {
	// Request begins a fluent, single-use request for an arbitrary method.
	// The endpoint is resolved against the bound server's base URL.
	Request(method, endpoint string) *Request

	Get(endpoint string) *Request
	Post(endpoint string) *Request
	Put(endpoint string) *Request
	Patch(endpoint string) *Request
	Delete(endpoint string) *Request
	Head(endpoint string) *Request

	// URL returns the base URL this client is bound to
	URL() string

	// Strategy returns the resolved strategy this client delegates to
	Strategy() Strategy

	// Destroy releases the underlying client library's resources.  Only
	// the first call has any effect; subsequent calls return nil.
	Destroy() error

	// Destroyed reports whether Destroy has been called
	Destroyed() bool
}

// executor is the minimal contract each underlying client library
// adapter satisfies
type executor interface {
	do(ctx context.Context, r *Request) (Response, error)
	close() error
}

// options collects client construction knobs
type options struct {
	timeout   time.Duration
	userAgent string
	header    http.Header
	transport TransportConfig
	chain     RoundTripperChain
	insecure  bool
}

// Option tailors a Client at construction time
type Option func(*options)

// WithTimeout bounds every request issued by the client
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithUserAgent sets the User-Agent applied to requests that do not
// set their own
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithDefaultHeader adds a header applied to every request
func WithDefaultHeader(name, value string) Option {
	return func(o *options) {
		if o.header == nil {
			o.header = make(http.Header)
		}

		o.header.Add(name, value)
	}
}

// WithTransportConfig tailors the http.Transport used by the net/http
// strategy.  Other strategies ignore it.
func WithTransportConfig(tc TransportConfig) Option {
	return func(o *options) {
		o.transport = tc
	}
}

// WithRoundTripperChain decorates the transport used by the net/http
// strategy.  Other strategies ignore it.
func WithRoundTripperChain(rc RoundTripperChain) Option {
	return func(o *options) {
		o.chain = o.chain.Extend(rc)
	}
}

// WithInsecureTLS skips certificate verification, for staged servers
// using self-signed certificates
func WithInsecureTLS() Option {
	return func(o *options) {
		o.insecure = true
	}
}

// client is the single Client implementation; adapters vary only in
// their executor
type client struct {
	target    stage.Target
	strategy  Strategy
	header    Header
	userAgent string
	exec      executor
	destroyed atomic.Bool
}

// New creates a Client bound to the given target, usually a started
// stagehttp.Server.  The zero Strategy (StrategyAuto) picks the
// preferred underlying library.
func New(strategy Strategy, target stage.Target, opts ...Option) (Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	resolved := strategy.resolve()
	c := &client{
		target:    target,
		strategy:  resolved,
		header:    NewHeader(o.header),
		userAgent: o.userAgent,
	}

	switch resolved {
	case StrategyResty:
		c.exec = newRestyExecutor(o)

	case StrategyNetHTTP:
		c.exec = newNetExecutor(o)

	default:
		return nil, clientError("new", fmt.Errorf("unsupported strategy: %s", strategy))
	}

	return c, nil
}

// NewFor creates a Client with the automatic strategy
func NewFor(target stage.Target, opts ...Option) (Client, error) {
	return New(StrategyAuto, target, opts...)
}

func (c *client) Request(method, endpoint string) *Request {
	r := newRequest(c, method, endpoint)
	if c.destroyed.Load() {
		r.errs = append(r.errs, ErrDestroyed)
	}

	return r
}

func (c *client) Get(endpoint string) *Request    { return c.Request(http.MethodGet, endpoint) }
func (c *client) Post(endpoint string) *Request   { return c.Request(http.MethodPost, endpoint) }
func (c *client) Put(endpoint string) *Request    { return c.Request(http.MethodPut, endpoint) }
func (c *client) Patch(endpoint string) *Request  { return c.Request(http.MethodPatch, endpoint) }
func (c *client) Delete(endpoint string) *Request { return c.Request(http.MethodDelete, endpoint) }
func (c *client) Head(endpoint string) *Request   { return c.Request(http.MethodHead, endpoint) }

// URL resolves the bound target's base URL.  Resolution is deferred to
// each call so that a client may be created before its server starts,
// while the server's ephemeral port is still unknown.
func (c *client) URL() string {
	return c.target.URL()
}

func (c *client) Strategy() Strategy {
	return c.strategy
}

func (c *client) Destroy() error {
	if !c.destroyed.CompareAndSwap(false, true) {
		// already destroyed, possibly by a racing shutdown hook
		return nil
	}

	return clientError("destroy", c.exec.close())
}

func (c *client) Destroyed() bool {
	return c.destroyed.Load()
}
