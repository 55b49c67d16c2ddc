package stagehttp

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testReadRoutesYAML(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		path = writeFile(t, "routes.yaml", `
routes:
  - method: post
    path: /api/echo
    status: 201
    headers:
      Content-Type: application/json
    body: '{"created":true}'
  - path: /api/status
`)
	)

	routes, err := ReadRoutes(path)
	require.NoError(err)
	require.Len(routes, 2)

	assert.Equal(http.MethodPost, routes[0].Method)
	assert.Equal("/api/echo", routes[0].Path)
	assert.Equal(201, routes[0].Status)
	assert.Equal(`{"created":true}`, routes[0].Body)

	// defaults
	assert.Equal(http.MethodGet, routes[1].Method)
	assert.Equal(http.StatusOK, routes[1].Status)
}

func testReadRoutesValidation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			"RelativePath",
			"routes:\n  - path: api/status\n",
		},
		{
			"BodyAndFile",
			"routes:\n  - path: /x\n    body: b\n    file: f\n",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			path := writeFile(t, "routes.yaml", testCase.content)
			_, err := ReadRoutes(path)
			assert.Error(t, err)
		})
	}
}

func testReadRoutesMissing(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadRoutes("")
	assert.Error(err)

	_, err = ReadRoutes(filepath.Join(t.TempDir(), "nosuch.yaml"))
	assert.Error(err)
}

func TestReadRoutes(t *testing.T) {
	t.Run("YAML", testReadRoutesYAML)
	t.Run("Validation", testReadRoutesValidation)
	t.Run("Missing", testReadRoutesMissing)
}

func testRouteHandlerLiteral(t *testing.T) {
	var (
		assert = assert.New(t)

		route = Route{
			Path:    "/greet",
			Status:  http.StatusTeapot,
			Headers: map[string]string{"X-Greeting": "hello"},
			Body:    "hello",
		}.normalize()

		response = httptest.NewRecorder()
	)

	route.Handler().ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/greet", nil))
	assert.Equal(http.StatusTeapot, response.Code)
	assert.Equal("hello", response.Body.String())
	assert.Equal("hello", response.Header().Get("X-Greeting"))
}

func testRouteHandlerFile(t *testing.T) {
	var (
		assert = assert.New(t)

		route = Route{
			Path: "/doc",
			File: writeFile(t, "doc.txt", "from a file"),
		}.normalize()

		response = httptest.NewRecorder()
	)

	route.Handler().ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/doc", nil))
	assert.Equal(http.StatusOK, response.Code)
	assert.Equal("from a file", response.Body.String())
}

func testRouteHandlerMissingFile(t *testing.T) {
	var (
		assert = assert.New(t)

		route = Route{
			Path: "/doc",
			File: filepath.Join(t.TempDir(), "nosuch.txt"),
		}.normalize()

		response = httptest.NewRecorder()
	)

	route.Handler().ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/doc", nil))
	assert.Equal(http.StatusInternalServerError, response.Code)
}

func TestRouteHandler(t *testing.T) {
	t.Run("Literal", testRouteHandlerLiteral)
	t.Run("File", testRouteHandlerFile)
	t.Run("MissingFile", testRouteHandlerMissingFile)
}
