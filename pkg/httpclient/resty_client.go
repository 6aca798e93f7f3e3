package httpclient

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout and retries disabled.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetRetryCount(0)
	return c
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }

// adaptResponse returns nil when no HTTP response was received (setup or transport failure).
func adaptResponse(resp *resty.Response) Response {
	if resp == nil || resp.RawResponse == nil {
		return nil
	}
	return &restyResponseAdapter{resp: resp}
}

// RequestOf reports the method and URL of the request that produced resp, and
// whether it carried a bearer token. It returns zero values for responses not
// created by this package.
func RequestOf(resp Response) (method, url string, authenticated bool) {
	r, ok := resp.(*restyResponseAdapter)
	if !ok || r.resp == nil || r.resp.Request == nil {
		return "", "", false
	}
	req := r.resp.Request
	return req.Method, req.URL, strings.HasPrefix(req.Header.Get(headerAuthorization), "Bearer ")
}
