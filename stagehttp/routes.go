package stagehttp

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Route is one canned route from a descriptor file.  A route answers a
// single method and path with a fixed status, headers, and body.
type Route struct {
	// Method is the HTTP method, defaulting to GET
	Method string

	// Path is the route path relative to the server's mount path
	Path string

	// Status is the response code, defaulting to http.StatusOK
	Status int

	// Headers are emitted on the response
	Headers map[string]string

	// Body is the literal response body.  Mutually exclusive with File.
	Body string

	// File reads the response body from a file.  Mutually exclusive
	// with Body.
	File string
}

// normalize fills route defaults
func (r Route) normalize() Route {
	if r.Method == "" {
		r.Method = http.MethodGet
	} else {
		r.Method = strings.ToUpper(r.Method)
	}

	if r.Status == 0 {
		r.Status = http.StatusOK
	}

	return r
}

// validate reports invalid route fields
func (r Route) validate() (err error) {
	if !strings.HasPrefix(r.Path, "/") {
		err = multierr.Append(err, fmt.Errorf("route paths must start with '/': %q", r.Path))
	}

	if r.Body != "" && r.File != "" {
		err = multierr.Append(err, fmt.Errorf("route %s %s: body and file are mutually exclusive", r.Method, r.Path))
	}

	return
}

// Handler produces the http.Handler answering this route
func (r Route) Handler() http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		for name, value := range r.Headers {
			response.Header().Set(name, value)
		}

		body := []byte(r.Body)
		if r.File != "" {
			var err error
			if body, err = os.ReadFile(r.File); err != nil {
				http.Error(response, err.Error(), http.StatusInternalServerError)
				return
			}
		}

		response.WriteHeader(r.Status)
		response.Write(body) // nolint:errcheck // nothing to do about a failed test response write
	})
}

// ReadRoutes loads a route descriptor file.  The descriptor is a YAML
// (or JSON, by extension) document with a top-level "routes" list:
//
//	routes:
//	  - method: GET
//	    path: /api/status
//	    status: 200
//	    headers:
//	      Content-Type: application/json
//	    body: '{"status":"UP"}'
//
// Every route is validated; the combined validation errors are returned.
func ReadRoutes(path string) ([]Route, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("descriptor must not be blank")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var descriptor struct {
		Routes []Route
	}

	if err := v.Unmarshal(&descriptor); err != nil {
		return nil, err
	}

	var err error
	routes := make([]Route, 0, len(descriptor.Routes))
	for _, r := range descriptor.Routes {
		r = r.normalize()
		err = multierr.Append(err, r.validate())
		routes = append(routes, r)
	}

	if err != nil {
		return nil, err
	}

	return routes, nil
}
