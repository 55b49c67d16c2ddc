package stage

import (
	"context"

	"go.uber.org/multierr"
)

// Target is the view of a staged server that hooks receive.  It is
// implemented by every server type in this module.  Hooks receive a
// point-in-time snapshot of their server: when OnStart runs the listener
// is not yet bound, so an ephemeral port reads as zero; when OnStop runs
// the resolved port is still visible.
type Target interface {
	// Port returns the port the server is (or will be) bound to.  For
	// configurations using an ephemeral port, this is only meaningful
	// after the listener has been bound.
	Port() int

	// URL returns the resolved base URL of the server, including the
	// configured mount path.
	URL() string
}

// Hook receives callbacks around the lifecycle of a staged server.
// OnStart runs before the server binds its listener, OnStop runs after
// the server has shut down.  Hooks must be safe for reuse across
// multiple start/stop cycles of independent servers.
type Hook interface {
	OnStart(ctx context.Context, t Target) error
	OnStop(ctx context.Context, t Target) error
}

// HookFuncs adapts a pair of closures into a Hook.  Either closure may
// be nil, in which case that phase is a no-op.
type HookFuncs struct {
	Start func(ctx context.Context, t Target) error
	Stop  func(ctx context.Context, t Target) error
}

// OnStart implements Hook
func (hf HookFuncs) OnStart(ctx context.Context, t Target) error {
	if hf.Start != nil {
		return hf.Start(ctx, t)
	}

	return nil
}

// OnStop implements Hook
func (hf HookFuncs) OnStop(ctx context.Context, t Target) error {
	if hf.Stop != nil {
		return hf.Stop(ctx, t)
	}

	return nil
}

// Hooks is an ordered sequence of Hook instances.
type Hooks []Hook

// OnStart invokes each hook in order.  The first error short-circuits
// the sequence, since a server must not start when its prerequisites
// failed.
func (hs Hooks) OnStart(ctx context.Context, t Target) error {
	for _, h := range hs {
		if err := h.OnStart(ctx, t); err != nil {
			return err
		}
	}

	return nil
}

// OnStop invokes each hook in reverse order.  Every hook runs even when
// earlier ones fail, and the errors are combined.  Teardown must always
// complete.
func (hs Hooks) OnStop(ctx context.Context, t Target) (err error) {
	for i := len(hs) - 1; i >= 0; i-- {
		err = multierr.Append(err, hs[i].OnStop(ctx, t))
	}

	return
}
