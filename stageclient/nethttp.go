package stageclient

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"time"
)

// TransportConfig holds the unmarshalable fields of an http.Transport,
// used by the net/http strategy.  Other strategies ignore it.
type TransportConfig struct {
	TLSHandshakeTimeout    time.Duration `json:"tlsHandshakeTimeout" yaml:"tlsHandshakeTimeout"`
	DisableKeepAlives      bool          `json:"disableKeepAlives" yaml:"disableKeepAlives"`
	DisableCompression     bool          `json:"disableCompression" yaml:"disableCompression"`
	MaxIdleConns           int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	MaxIdleConnsPerHost    int           `json:"maxIdleConnsPerHost" yaml:"maxIdleConnsPerHost"`
	MaxConnsPerHost        int           `json:"maxConnsPerHost" yaml:"maxConnsPerHost"`
	IdleConnTimeout        time.Duration `json:"idleConnTimeout" yaml:"idleConnTimeout"`
	ResponseHeaderTimeout  time.Duration `json:"responseHeaderTimeout" yaml:"responseHeaderTimeout"`
	ExpectContinueTimeout  time.Duration `json:"expectContinueTimeout" yaml:"expectContinueTimeout"`
	MaxResponseHeaderBytes int64         `json:"maxResponseHeaderBytes" yaml:"maxResponseHeaderBytes"`
	WriteBufferSize        int           `json:"writeBufferSize" yaml:"writeBufferSize"`
	ReadBufferSize         int           `json:"readBufferSize" yaml:"readBufferSize"`
	ForceAttemptHTTP2      bool          `json:"forceAttemptHTTP2" yaml:"forceAttemptHTTP2"`
}

// NewTransport builds an http.Transport from this configuration
func (tc TransportConfig) NewTransport() *http.Transport {
	return &http.Transport{
		TLSHandshakeTimeout:    tc.TLSHandshakeTimeout,
		DisableKeepAlives:      tc.DisableKeepAlives,
		DisableCompression:     tc.DisableCompression,
		MaxIdleConns:           tc.MaxIdleConns,
		MaxIdleConnsPerHost:    tc.MaxIdleConnsPerHost,
		MaxConnsPerHost:        tc.MaxConnsPerHost,
		IdleConnTimeout:        tc.IdleConnTimeout,
		ResponseHeaderTimeout:  tc.ResponseHeaderTimeout,
		ExpectContinueTimeout:  tc.ExpectContinueTimeout,
		MaxResponseHeaderBytes: tc.MaxResponseHeaderBytes,
		WriteBufferSize:        tc.WriteBufferSize,
		ReadBufferSize:         tc.ReadBufferSize,
		ForceAttemptHTTP2:      tc.ForceAttemptHTTP2,
	}
}

// netExecutor adapts the standard library's http.Client
type netExecutor struct {
	client *http.Client
}

func newNetExecutor(o options) *netExecutor {
	transport := o.transport.NewTransport()
	if o.insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &netExecutor{
		client: &http.Client{
			Timeout:   o.timeout,
			Transport: o.chain.Then(transport),
		},
	}
}

func (ne *netExecutor) do(ctx context.Context, r *Request) (Response, error) {
	var body io.Reader
	if payload := r.payload(); payload != "" {
		body = strings.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, r.method, r.url(), body)
	if err != nil {
		return Response{}, err
	}

	for key, values := range r.headers() {
		request.Header[key] = values
	}

	for _, c := range r.cookies {
		request.AddCookie(c)
	}

	if r.hasBasic {
		request.SetBasicAuth(r.basicUser, r.basicPass)
	}

	response, err := ne.client.Do(request)
	if err != nil {
		return Response{}, err
	}

	defer response.Body.Close()
	buffered, err := io.ReadAll(response.Body)
	if err != nil {
		return Response{}, err
	}

	return newResponse(response.StatusCode, response.Header, response.Cookies(), buffered), nil
}

func (ne *netExecutor) close() error {
	ne.client.CloseIdleConnections()
	return nil
}
