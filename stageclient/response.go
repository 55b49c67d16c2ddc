package stageclient

import (
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Response is an immutable snapshot of an HTTP response.  The body is
// fully read and buffered before a Response is returned, so accessors
// never block and never fail.
type Response struct {
	status   int
	header   http.Header
	cookies  []*http.Cookie
	body     []byte
	duration time.Duration
}

// newResponse buffers the interesting parts of a raw response.  The
// header and cookie slices are deep copied so later mutation of the
// underlying client's state cannot leak through.
func newResponse(status int, header http.Header, cookies []*http.Cookie, body []byte) Response {
	cloned := make(http.Header, len(header))
	for key, values := range header {
		cloned[key] = append([]string{}, values...)
	}

	copied := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		clone := *c
		copied = append(copied, &clone)
	}

	return Response{
		status:  status,
		header:  cloned,
		cookies: copied,
		body:    body,
	}
}

// Status returns the HTTP status code
func (r Response) Status() int {
	return r.status
}

// Body returns the response body as a string
func (r Response) Body() string {
	return string(r.body)
}

// Bytes returns a copy of the raw response body
func (r Response) Bytes() []byte {
	return append([]byte{}, r.body...)
}

// Header returns the first value of the given response header, or the
// empty string if absent
func (r Response) Header(name string) string {
	return r.header.Get(name)
}

// ContainsHeader reports whether the response carried the given header
func (r Response) ContainsHeader(name string) bool {
	_, ok := r.header[http.CanonicalHeaderKey(name)]
	return ok
}

// Headers returns a copy of all response headers
func (r Response) Headers() http.Header {
	cloned := make(http.Header, len(r.header))
	for key, values := range r.header {
		cloned[key] = append([]string{}, values...)
	}

	return cloned
}

// Cookie returns the named response cookie, if present
func (r Response) Cookie(name string) (*http.Cookie, bool) {
	for _, c := range r.cookies {
		if c.Name == name {
			clone := *c
			return &clone, true
		}
	}

	return nil, false
}

// Cookies returns copies of all response cookies
func (r Response) Cookies() []*http.Cookie {
	copied := make([]*http.Cookie, 0, len(r.cookies))
	for _, c := range r.cookies {
		clone := *c
		copied = append(copied, &clone)
	}

	return copied
}

// Duration returns the wall time the request took, measured from just
// before the request was sent to just after the body was buffered
func (r Response) Duration() time.Duration {
	return r.duration
}

// JSON extracts a value from a JSON body using a gjson path, e.g.
// "items.0.name".  The zero gjson.Result is returned when the path does
// not match or the body is not JSON.
func (r Response) JSON(path string) gjson.Result {
	return gjson.GetBytes(r.body, path)
}
