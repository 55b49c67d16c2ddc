// Package stagefx binds staged servers and clients into a go.uber.org/fx
// application.  Servers start and stop with the enclosing app's
// lifecycle, and clients are destroyed when the app stops.
//
// Typical usage from a test:
//
//	app := fxtest.New(
//		t,
//		stagefx.Server(stagehttp.Config{}),
//		stagefx.Client(stageclient.StrategyAuto),
//		fx.Invoke(func(c stageclient.Client) {
//			// exercise the staged server
//		}),
//	)
//	app.RequireStart()
//	defer app.RequireStop()
package stagefx
