package stageclient

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// content type values applied by the AsXxx fluent methods
const (
	ContentTypeJSON          = "application/json"
	ContentTypeXML           = "application/xml"
	ContentTypeFormURLEncode = "application/x-www-form-urlencoded"
	ContentTypeMultipart     = "multipart/form-data"
)

// XMLHTTPRequestHeader identifies a request as originating from a
// scripted browser call
const XMLHTTPRequestHeader = "X-Requested-With"

// Request is a fluent, single-use HTTP request.  Methods record
// configuration errors rather than returning them, so call sites can
// chain freely; any recorded errors surface from Execute.
//
// A Request is created through a Client and is not safe for concurrent
// use.
type Request struct {
	client   *client
	method   string
	endpoint string

	query   []Parameter
	form    []Parameter
	header  http.Header
	cookies []*http.Cookie
	body    string

	basicUser string
	basicPass string
	hasBasic  bool

	executed bool
	errs     []error
}

func newRequest(c *client, method, endpoint string) *Request {
	return &Request{
		client:   c,
		method:   strings.ToUpper(method),
		endpoint: endpoint,
		header:   make(http.Header),
	}
}

// bodyAllowed reports whether this request's method may carry a body or
// form parameters
func (r *Request) bodyAllowed() bool {
	switch r.method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

func (r *Request) record(err error) *Request {
	if err != nil {
		r.errs = append(r.errs, err)
	}

	return r
}

// AddHeader adds a request header.  Blank names are recorded as errors.
func (r *Request) AddHeader(name, value string) *Request {
	if strings.TrimSpace(name) == "" {
		return r.record(fmt.Errorf("header: %w", ErrBlankName))
	}

	r.header.Add(name, value)
	return r
}

// AddQueryParam adds a single query parameter.  Duplicate names are
// allowed and preserved in order.
func (r *Request) AddQueryParam(name, value string) *Request {
	p, err := NewParam(name, value)
	if err != nil {
		return r.record(fmt.Errorf("query: %w", err))
	}

	r.query = append(r.query, p)
	return r
}

// AddQueryParams adds several query parameters at once
func (r *Request) AddQueryParams(params ...Parameter) *Request {
	for _, p := range params {
		r.AddQueryParam(p.Name, p.Value)
	}

	return r
}

// AddFormParam adds a form parameter.  Form parameters are only legal
// on POST, PUT, and PATCH requests; anything else is recorded as an
// error.
func (r *Request) AddFormParam(name, value string) *Request {
	if !r.bodyAllowed() {
		return r.record(fmt.Errorf("form parameters are not allowed on %s requests", r.method))
	}

	p, err := NewParam(name, value)
	if err != nil {
		return r.record(fmt.Errorf("form: %w", err))
	}

	r.form = append(r.form, p)
	return r
}

// AddFormParams adds several form parameters at once
func (r *Request) AddFormParams(params ...Parameter) *Request {
	for _, p := range params {
		r.AddFormParam(p.Name, p.Value)
	}

	return r
}

// SetBody sets the raw request body.  Bodies are only legal on POST,
// PUT, and PATCH requests, and are mutually exclusive with form
// parameters.
func (r *Request) SetBody(body string) *Request {
	if !r.bodyAllowed() {
		return r.record(fmt.Errorf("a body is not allowed on %s requests", r.method))
	}

	r.body = body
	return r
}

// AddCookie attaches a cookie to the request
func (r *Request) AddCookie(name, value string) *Request {
	if strings.TrimSpace(name) == "" {
		return r.record(fmt.Errorf("cookie: %w", ErrBlankName))
	}

	r.cookies = append(r.cookies, &http.Cookie{Name: name, Value: value})
	return r
}

// WithUserAgent overrides the User-Agent for this request, taking
// precedence over any client-level user agent
func (r *Request) WithUserAgent(ua string) *Request {
	r.header.Set("User-Agent", ua)
	return r
}

// WithBasicAuth attaches basic authentication credentials
func (r *Request) WithBasicAuth(user, password string) *Request {
	r.basicUser = user
	r.basicPass = password
	r.hasBasic = true
	return r
}

// AsXMLHTTPRequest marks this request as an XMLHttpRequest, as a
// browser's scripting engine would
func (r *Request) AsXMLHTTPRequest() *Request {
	r.header.Set(XMLHTTPRequestHeader, "XMLHttpRequest")
	return r
}

// AsJSON sets both Content-Type and Accept to application/json
func (r *Request) AsJSON() *Request {
	r.header.Set("Content-Type", ContentTypeJSON)
	r.header.Set("Accept", ContentTypeJSON)
	return r
}

// AsXML sets both Content-Type and Accept to application/xml
func (r *Request) AsXML() *Request {
	r.header.Set("Content-Type", ContentTypeXML)
	r.header.Set("Accept", ContentTypeXML)
	return r
}

// AsFormURLEncoded sets the Content-Type for an urlencoded form
// submission
func (r *Request) AsFormURLEncoded() *Request {
	r.header.Set("Content-Type", ContentTypeFormURLEncode)
	return r
}

// AsMultipartFormData sets the Content-Type for a multipart form
// submission.  The body should be assembled with SetBody.
func (r *Request) AsMultipartFormData() *Request {
	r.header.Set("Content-Type", ContentTypeMultipart)
	return r
}

// url assembles the full request URL, including any query string
func (r *Request) url() string {
	base := strings.TrimSuffix(r.client.target.URL(), "/")
	endpoint := r.endpoint
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	full := base + endpoint
	if len(r.query) > 0 {
		encoded := make([]string, 0, len(r.query))
		for _, p := range r.query {
			encoded = append(encoded, p.Encode())
		}

		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}

		full += sep + strings.Join(encoded, "&")
	}

	return full
}

// payload renders the effective request body.  Form parameters take
// precedence over a raw body.
func (r *Request) payload() string {
	if len(r.form) > 0 {
		encoded := make([]string, 0, len(r.form))
		for _, p := range r.form {
			encoded = append(encoded, p.Encode())
		}

		return strings.Join(encoded, "&")
	}

	return r.body
}

// headers merges the client's default headers with this request's
// headers.  Request headers always win on conflict.
func (r *Request) headers() http.Header {
	merged := make(http.Header, r.client.header.Len()+len(r.header))
	r.client.header.AddTo(merged)
	for key, values := range r.header {
		merged[key] = append([]string{}, values...)
	}

	if r.client.userAgent != "" && merged.Get("User-Agent") == "" {
		merged.Set("User-Agent", r.client.userAgent)
	}

	if len(r.form) > 0 && merged.Get("Content-Type") == "" {
		merged.Set("Content-Type", ContentTypeFormURLEncode)
	}

	return merged
}

// validate surfaces any errors recorded while building this request
func (r *Request) validate() error {
	errs := multierr.Combine(r.errs...)
	if len(r.form) > 0 && r.body != "" {
		errs = multierr.Append(errs, fmt.Errorf("form parameters and a raw body are mutually exclusive"))
	}

	return errs
}

// Execute sends the request and blocks until the response is fully
// read.  A Request may only be executed once; a second call fails with
// ErrExecuted.  Any errors recorded by the fluent methods are returned
// here instead of a response.
func (r *Request) Execute(ctx context.Context) (Response, error) {
	if r.executed {
		return Response{}, clientError("execute", ErrExecuted)
	}

	r.executed = true
	if r.client.destroyed.Load() {
		return Response{}, clientError("execute", ErrDestroyed)
	}

	if err := r.validate(); err != nil {
		return Response{}, clientError("execute", err)
	}

	start := time.Now()
	response, err := r.client.exec.do(ctx, r)
	if err != nil {
		return Response{}, clientError("execute", err)
	}

	response.duration = time.Since(start)
	return response, nil
}

// MultipartBody is a convenience for assembling a multipart/form-data
// body.  It returns the encoded body and the exact Content-Type header
// value, boundary included.
func MultipartBody(fields map[string]string) (body, contentType string, err error) {
	var buf strings.Builder
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return "", "", err
		}
	}

	if err := w.Close(); err != nil {
		return "", "", err
	}

	return buf.String(), w.FormDataContentType(), nil
}
