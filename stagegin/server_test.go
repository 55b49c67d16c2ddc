package stagegin

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stagekit/stage/stagehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T, cfg stagehttp.Config, opts ...Option) *Server {
	t.Helper()
	require := require.New(t)

	opts = append(opts, WithEngine(func(e *gin.Engine) error {
		e.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		return nil
	}))

	server, err := NewServer(cfg, opts...)
	require.NoError(err)
	require.NoError(server.Start(context.Background()))

	t.Cleanup(func() {
		if server.Started() {
			server.Stop(context.Background()) // nolint:errcheck
		}
	})

	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	require := require.New(t)

	response, err := http.Get(url) // nolint:gosec,noctx // staged local server
	require.NoError(err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(err)
	return response.StatusCode, string(body)
}

func testServerLifecycle(t *testing.T) {
	var (
		assert = assert.New(t)
		server = startTestServer(t, stagehttp.Default())
	)

	assert.True(server.Started())
	assert.NotZero(server.Port())

	status, body := get(t, server.URL()+"ping")
	assert.Equal(http.StatusOK, status)
	assert.Equal("pong", body)

	assert.NoError(server.Stop(context.Background()))
	assert.False(server.Started())
	assert.ErrorIs(server.Stop(context.Background()), stagehttp.ErrNotStarted)
}

func testServerWebapp(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		webapp = t.TempDir()
	)

	require.NoError(os.WriteFile(filepath.Join(webapp, "index.html"), []byte("<html>gin</html>"), 0o600))

	cfg, err := stagehttp.NewBuilder().Path("/app").Webapp(webapp).Build()
	require.NoError(err)

	server := startTestServer(t, cfg)
	status, body := get(t, server.URL()+"/index.html")
	assert.Equal(http.StatusOK, status)
	assert.Equal("<html>gin</html>", body)
}

func testServerDescriptor(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		descriptor = filepath.Join(t.TempDir(), "routes.yaml")
	)

	require.NoError(os.WriteFile(descriptor, []byte(`
routes:
  - method: GET
    path: /api/status
    status: 200
    body: '{"status":"UP"}'
`), 0o600))

	cfg, err := stagehttp.NewBuilder().Descriptor(descriptor).Build()
	require.NoError(err)

	server := startTestServer(t, cfg)
	status, body := get(t, server.URL()+"api/status")
	assert.Equal(http.StatusOK, status)
	assert.JSONEq(`{"status":"UP"}`, body)
}

func testServerResponseHeaders(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	cfg, err := stagehttp.NewBuilder().Header("X-Served-By", "stage").Build()
	require.NoError(err)

	server := startTestServer(t, cfg)
	response, err := http.Get(server.URL() + "ping") // nolint:gosec,noctx
	require.NoError(err)
	defer response.Body.Close()

	assert.Equal("stage", response.Header.Get("X-Served-By"))
	assert.NotEmpty(response.Header.Get(stagehttp.RequestIDHeader))
}

func TestServer(t *testing.T) {
	t.Run("Lifecycle", testServerLifecycle)
	t.Run("Webapp", testServerWebapp)
	t.Run("Descriptor", testServerDescriptor)
	t.Run("ResponseHeaders", testServerResponseHeaders)
}
