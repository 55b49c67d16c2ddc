package stagetest

import (
	"context"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagekit/stage/stagehttp"
)

func pingRouter() stagehttp.Option {
	return stagehttp.WithRouter(func(router *mux.Router) error {
		router.HandleFunc("/ping", func(response http.ResponseWriter, _ *http.Request) {
			response.Write([]byte("pong")) // nolint:errcheck
		}).Methods(http.MethodGet)

		return nil
	})
}

func TestStartServer(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		server = StartServer(t, stagehttp.Config{}, pingRouter())
		client = NewClient(t, server)
	)

	assert.True(server.Started())
	assert.False(client.Destroyed())

	response, err := client.Get("/ping").Execute(context.Background())
	require.NoError(err)
	assert.Equal(http.StatusOK, response.Status())
	assert.Equal("pong", response.Body())
}

func TestRunStoppedByTest(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	server, err := stagehttp.NewServer(stagehttp.Config{}, pingRouter())
	require.NoError(err)

	Run(t, server)
	assert.True(server.Started())

	// stopping early must not trip the cleanup
	require.NoError(server.Stop(context.Background()))
	assert.False(server.Started())
}
