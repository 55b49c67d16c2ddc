/*
Package stagehttp stages embedded HTTP servers for tests.

A server is described by an immutable Config, normally produced by a
Builder or unmarshaled via the root stage package.  NewServer creates a
gorilla/mux backed server from a Config.  A second engine backed by gin
is available in the stagegin package; both satisfy the Server interface
and are interchangeable from a test's point of view.

Servers bind an ephemeral port by default, so test runs never collide:

	cfg, err := stagehttp.NewBuilder().
		Path("/app").
		Webapp("testdata/webapp").
		Build()

	server, err := stagehttp.NewServer(cfg)
	err = server.Start(context.Background())
	defer server.Stop(context.Background())

	// server.URL() is the resolved base URL, e.g. "http://127.0.0.1:54321/app"
*/
package stagehttp
