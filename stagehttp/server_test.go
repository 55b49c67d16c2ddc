package stagehttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stagekit/stage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestServer stages a server answering GET /ping, cleaned up with
// the enclosing test
func startTestServer(t *testing.T, cfg Config, opts ...Option) *MuxServer {
	t.Helper()
	require := require.New(t)

	opts = append(opts, WithRouter(func(r *mux.Router) error {
		r.HandleFunc("/ping", func(response http.ResponseWriter, _ *http.Request) {
			response.Write([]byte("pong")) // nolint:errcheck
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
		server = startTestServer(t, Default())
	)

	assert.True(server.Started())
	assert.NotZero(server.Port())

	status, body := get(t, server.URL()+"ping")
	assert.Equal(http.StatusOK, status)
	assert.Equal("pong", body)

	assert.NoError(server.Stop(context.Background()))
	assert.False(server.Started())
}

func testServerRestart(t *testing.T) {
	var (
		assert = assert.New(t)
		server = startTestServer(t, Default())
	)

	assert.NoError(server.Stop(context.Background()))
	assert.NoError(server.Start(context.Background()))
	assert.True(server.Started())

	status, _ := get(t, server.URL()+"ping")
	assert.Equal(http.StatusOK, status)
	assert.NoError(server.Stop(context.Background()))
}

func testServerAlreadyStarted(t *testing.T) {
	var (
		assert = assert.New(t)
		server = startTestServer(t, Default())
	)

	err := server.Start(context.Background())
	assert.ErrorIs(err, ErrAlreadyStarted)

	var se *ServerError
	assert.ErrorAs(err, &se)
	assert.True(server.Started())
}

func testServerNotStarted(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	server, err := NewServer(Default())
	require.NoError(err)

	assert.ErrorIs(server.Stop(context.Background()), ErrNotStarted)
	assert.False(server.Started())
}

func testServerIndependentInstances(t *testing.T) {
	assert := assert.New(t)

	// configurations are shareable: the same Config stages any number
	// of independent servers
	cfg := Default()
	for i := 0; i < 3; i++ {
		server := startTestServer(t, cfg)
		status, _ := get(t, server.URL()+"ping")
		assert.Equal(http.StatusOK, status)
		assert.NoError(server.Stop(context.Background()))
	}
}

func testServerURL(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	cfg, err := NewBuilder().Path("/app").Build()
	require.NoError(err)

	server := startTestServer(t, cfg)
	assert.Equal(
		fmt.Sprintf("http://127.0.0.1:%d/app", server.Port()),
		server.URL(),
	)
}

func TestServer(t *testing.T) {
	t.Run("Lifecycle", testServerLifecycle)
	t.Run("Restart", testServerRestart)
	t.Run("AlreadyStarted", testServerAlreadyStarted)
	t.Run("NotStarted", testServerNotStarted)
	t.Run("IndependentInstances", testServerIndependentInstances)
	t.Run("URL", testServerURL)
}

func testEnvironmentApplied(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	t.Setenv("STAGE_PRESENT", "before")

	cfg, err := NewBuilder().
		Env("STAGE_PRESENT", "during").
		Env("STAGE_ADDED", "during").
		Build()

	require.NoError(err)
	server := startTestServer(t, cfg)

	assert.Equal("during", os.Getenv("STAGE_PRESENT"))
	assert.Equal("during", os.Getenv("STAGE_ADDED"))

	require.NoError(server.Stop(context.Background()))
	assert.Equal("before", os.Getenv("STAGE_PRESENT"))

	_, present := os.LookupEnv("STAGE_ADDED")
	assert.False(present)
}

func testEnvironmentRestoredOnHookFailure(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	t.Setenv("STAGE_PRESENT", "before")

	cfg, err := NewBuilder().
		Env("STAGE_PRESENT", "during").
		Hook(stage.HookFuncs{
			Start: func(context.Context, stage.Target) error {
				return fmt.Errorf("hook refused to start")
			},
		}).
		Build()

	require.NoError(err)

	server, err := NewServer(cfg)
	require.NoError(err)

	assert.Error(server.Start(context.Background()))
	assert.False(server.Started())
	assert.Equal("before", os.Getenv("STAGE_PRESENT"))
}

func TestEnvironment(t *testing.T) {
	t.Run("Applied", testEnvironmentApplied)
	t.Run("RestoredOnHookFailure", testEnvironmentRestoredOnHookFailure)
}

func testHooksInvoked(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		events []string
	)

	record := func(event string) stage.Hook {
		return stage.HookFuncs{
			Start: func(context.Context, stage.Target) error {
				events = append(events, event+".start")
				return nil
			},
			Stop: func(context.Context, stage.Target) error {
				events = append(events, event+".stop")
				return nil
			},
		}
	}

	cfg, err := NewBuilder().
		Hook(record("first")).
		Hook(record("second")).
		Build()

	require.NoError(err)
	server := startTestServer(t, cfg)
	require.NoError(server.Stop(context.Background()))

	assert.Equal(
		[]string{"first.start", "second.start", "second.stop", "first.stop"},
		events,
	)
}

func testHooksStopFailureStillStops(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	cfg, err := NewBuilder().
		Hook(stage.HookFuncs{
			Stop: func(context.Context, stage.Target) error {
				return fmt.Errorf("stop hook failed")
			},
		}).
		StopTimeout(time.Second).
		Build()

	require.NoError(err)
	server := startTestServer(t, cfg)

	assert.Error(server.Stop(context.Background()))
	assert.False(server.Started())
}

func testHooksObserveTarget(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		startURL string
		stopURL  string
		stopPort int
	)

	cfg, err := NewBuilder().
		Hook(stage.HookFuncs{
			Start: func(_ context.Context, target stage.Target) error {
				startURL = target.URL()
				return nil
			},
			Stop: func(_ context.Context, target stage.Target) error {
				stopURL = target.URL()
				stopPort = target.Port()
				return nil
			},
		}).
		Build()

	require.NoError(err)
	server := startTestServer(t, cfg)

	// the start hook ran before the ephemeral port was bound
	assert.Equal("http://127.0.0.1:0/", startURL)

	resolved := server.URL()
	port := server.Port()
	require.NoError(server.Stop(context.Background()))

	// the stop hook still saw the resolved address
	assert.Equal(resolved, stopURL)
	assert.Equal(port, stopPort)
}

func TestServerHooks(t *testing.T) {
	t.Run("Invoked", testHooksInvoked)
	t.Run("StopFailureStillStops", testHooksStopFailureStillStops)
	t.Run("ObserveTarget", testHooksObserveTarget)
}
