package stageclient

import (
	"context"
	"crypto/tls"

	"github.com/go-resty/resty/v2"
)

// restyExecutor adapts go-resty
type restyExecutor struct {
	client *resty.Client
}

func newRestyExecutor(o options) *restyExecutor {
	c := resty.New()
	if o.timeout > 0 {
		c.SetTimeout(o.timeout)
	}

	if o.insecure {
		c.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	// responses are buffered into the Response type, so resty's own
	// retry and redirect policies are left at their defaults
	return &restyExecutor{client: c}
}

func (re *restyExecutor) do(ctx context.Context, r *Request) (Response, error) {
	request := re.client.R().SetContext(ctx)
	for key, values := range r.headers() {
		request.Header[key] = values
	}

	if len(r.cookies) > 0 {
		request.SetCookies(r.cookies)
	}

	if r.hasBasic {
		request.SetBasicAuth(r.basicUser, r.basicPass)
	}

	if payload := r.payload(); payload != "" {
		request.SetBody(payload)
	}

	response, err := request.Execute(r.method, r.url())
	if err != nil {
		return Response{}, err
	}

	return newResponse(response.StatusCode(), response.Header(), response.Cookies(), response.Body()), nil
}

func (re *restyExecutor) close() error {
	re.client.GetClient().CloseIdleConnections()
	return nil
}

// interface checks
var (
	_ executor = (*restyExecutor)(nil)
	_ executor = (*netExecutor)(nil)
)
