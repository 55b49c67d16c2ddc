/*
Package stageclient is a small fluent HTTP client abstraction for tests
running against staged servers.

A Client is bound to a running server's base URL and produces single-use
fluent requests:

	client, err := stageclient.New(stageclient.StrategyAuto, server)
	defer client.Destroy()

	response, err := client.Get("/api/status").
		AsJSON().
		AddQueryParam("verbose", "true").
		Execute(context.Background())

	status := response.JSON("status").String()

Requests execute synchronously through one of several underlying client
libraries; every adapter is behaviorally identical at this contract
level, so tests can switch strategies freely.
*/
package stageclient
