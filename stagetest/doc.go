// Package stagetest provides glue between staged servers, clients, and
// the go testing lifecycle.
//
// The simplest entry points are StartServer and NewClient, which tie a
// server and client to a single test via t.Cleanup.  For suites of
// tests that share one server, embed Suite in a testify suite type.
package stagetest
