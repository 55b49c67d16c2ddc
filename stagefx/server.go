package stagefx

import (
	"context"

	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/stagekit/stage"
	"github.com/stagekit/stage/stageclient"
	"github.com/stagekit/stage/stagehttp"
)

// ForViper makes the given viper instance available as a
// stage.Unmarshaler component, so that other providers can unmarshal
// their configuration from it
func ForViper(v *viper.Viper, opts ...viper.DecoderConfigOption) fx.Option {
	return fx.Provide(
		func() (stage.Unmarshaler, error) {
			return stage.ForViper(v, opts...)
		},
	)
}

// newServer builds a staged server and ties it to the fx lifecycle.
// The server's OnExit is wired to the app's Shutdowner, so a server
// configured to stop at process shutdown also stops the app.
func newServer(lc fx.Lifecycle, sh fx.Shutdowner, cfg stagehttp.Config, opts ...stagehttp.Option) (stagehttp.Server, error) {
	server, err := stagehttp.NewServer(cfg, opts...)
	if err != nil {
		return nil, err
	}

	server.OnExit(func() {
		sh.Shutdown() // nolint:errcheck
	})

	lc.Append(fx.Hook{
		OnStart: server.Start,
		OnStop:  server.Stop,
	})

	return server, nil
}

// Server provides a stagehttp.Server component built from the given
// configuration.  The server starts and stops with the enclosing app.
func Server(cfg stagehttp.Config, opts ...stagehttp.Option) fx.Option {
	return fx.Provide(
		func(lc fx.Lifecycle, sh fx.Shutdowner) (stagehttp.Server, error) {
			return newServer(lc, sh, cfg, opts...)
		},
	)
}

// ServerFromKey provides a stagehttp.Server whose configuration is
// unmarshaled from the given key of the app's stage.Unmarshaler,
// usually supplied via ForViper
func ServerFromKey(key string, opts ...stagehttp.Option) fx.Option {
	return fx.Provide(
		func(lc fx.Lifecycle, sh fx.Shutdowner, u stage.Unmarshaler) (stagehttp.Server, error) {
			var cfg stagehttp.Config
			if err := u.UnmarshalKey(key, &cfg); err != nil {
				return nil, err
			}

			return newServer(lc, sh, cfg, opts...)
		},
	)
}

// ProvideServer binds an already-built server, such as a stagegin
// server, to the fx lifecycle.  If the server exposes OnExit, its
// accept-loop exit is wired to the app's Shutdowner.
func ProvideServer(server stagehttp.Server) fx.Option {
	return fx.Provide(
		func(lc fx.Lifecycle, sh fx.Shutdowner) stagehttp.Server {
			if oe, ok := server.(interface{ OnExit(func()) }); ok {
				oe.OnExit(func() {
					sh.Shutdown() // nolint:errcheck
				})
			}

			lc.Append(fx.Hook{
				OnStart: server.Start,
				OnStop:  server.Stop,
			})

			return server
		},
	)
}

// Client provides a stageclient.Client bound to the app's
// stagehttp.Server component.  The client resolves the server's URL
// lazily, so it may be injected before the app starts.  It is destroyed
// when the app stops.
func Client(strategy stageclient.Strategy, opts ...stageclient.Option) fx.Option {
	return fx.Provide(
		func(lc fx.Lifecycle, server stagehttp.Server) (stageclient.Client, error) {
			client, err := stageclient.New(strategy, server, opts...)
			if err != nil {
				return nil, err
			}

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					return client.Destroy()
				},
			})

			return client, nil
		},
	)
}
