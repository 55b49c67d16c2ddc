package stagetest

import (
	"context"
	"testing"

	"github.com/stagekit/stage"
	"github.com/stagekit/stage/stageclient"
	"github.com/stagekit/stage/stagehttp"
)

// Run starts an already-built server and registers a cleanup that stops
// it when the test finishes.  The test fails immediately if the server
// cannot start.
func Run(t testing.TB, server stagehttp.Server) {
	if err := server.Start(context.Background()); err != nil {
		t.Fatalf("unable to start staged server: %s", err)
	}

	t.Cleanup(func() {
		if !server.Started() {
			// the test stopped it already
			return
		}

		if err := server.Stop(context.Background()); err != nil {
			t.Errorf("unable to stop staged server: %s", err)
		}
	})
}

// StartServer builds a mux-based staged server from the given
// configuration, starts it, and stops it when the test finishes
func StartServer(t testing.TB, cfg stagehttp.Config, opts ...stagehttp.Option) *stagehttp.MuxServer {
	server, err := stagehttp.NewServer(cfg, opts...)
	if err != nil {
		t.Fatalf("unable to create staged server: %s", err)
	}

	Run(t, server)
	return server
}

// NewClient binds a client to the given target, usually a server
// returned by StartServer, and destroys it when the test finishes
func NewClient(t testing.TB, target stage.Target, opts ...stageclient.Option) stageclient.Client {
	client, err := stageclient.NewFor(target, opts...)
	if err != nil {
		t.Fatalf("unable to create client: %s", err)
	}

	t.Cleanup(func() {
		if err := client.Destroy(); err != nil {
			t.Errorf("unable to destroy client: %s", err)
		}
	})

	return client
}
