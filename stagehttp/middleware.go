package stagehttp

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/justinas/alice"
	"github.com/rs/zerolog"
	"github.com/xmidt-org/httpaux"
)

// RequestIDHeader carries the identifier assigned to each request by
// the RequestID middleware
const RequestIDHeader = "X-Request-Id"

// RequestID assigns a fresh uuid to every request that does not already
// carry one, and echoes it on the response.  Useful when correlating a
// failing assertion with the server-side access log.
func RequestID() alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			id := request.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
				request.Header.Set(RequestIDHeader, id)
			}

			response.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(response, request)
		})
	}
}

// ResponseHeaders decorates a handler so the given headers are set on
// every response before the handler runs.  Both server engines use this
// to emit a Config's Header block.
func ResponseHeaders(header httpaux.Header, next http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		header.SetTo(response.Header())
		next.ServeHTTP(response, request)
	})
}

// statusWriter records the response code for the access log
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}

	return sw.ResponseWriter.Write(b)
}

// AccessLog logs one line per request served by the staged server.
// Staged servers default to a nop logger so test output stays quiet;
// pass a real logger via WithLogger when diagnosing a test.
func AccessLog(logger zerolog.Logger) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			sw := &statusWriter{ResponseWriter: response}
			start := time.Now()
			next.ServeHTTP(sw, request)

			logger.Info().
				Str("method", request.Method).
				Str("path", request.URL.Path).
				Str("request_id", request.Header.Get(RequestIDHeader)).
				Int("status", sw.status).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}
