package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultTimeout bounds every request issued by an AuthClient.
	DefaultTimeout = 10 * time.Second
	// DefaultTokenKey is the credential store key holding the bearer token.
	DefaultTokenKey = "auth_token"

	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
)

// Options configures an AuthClient at construction time.
type Options struct {
	// BaseURL is prepended to every relative request path. Required.
	BaseURL string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// Headers are sent with every request in addition to Content-Type: application/json.
	Headers map[string]string
	// Store supplies the bearer token. A nil store sends every request unauthenticated.
	Store CredentialStore
	// TokenKey defaults to DefaultTokenKey.
	TokenKey string
	// OnAuthExpired is called for every 401 response before the error is returned.
	OnAuthExpired AuthExpiredFunc
	// Transport replaces the underlying round tripper, mainly for tests.
	Transport http.RoundTripper
	Logger    Logger
}

// AuthClient is a resty-backed client that attaches the stored bearer token to
// each request and reports expired credentials. It is safe for concurrent use.
type AuthClient struct {
	client        *resty.Client
	store         CredentialStore
	tokenKey      string
	onAuthExpired AuthExpiredFunc
	log           Logger
}

var _ Client = (*AuthClient)(nil)

// New builds an AuthClient from opts.
func New(opts Options) (*AuthClient, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		return nil, errors.New("base url is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", base)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	tokenKey := strings.TrimSpace(opts.TokenKey)
	if tokenKey == "" {
		tokenKey = DefaultTokenKey
	}

	c := newRestyBaseClient(timeout)
	c.SetBaseURL(strings.TrimRight(base, "/"))
	c.SetHeader(headerContentType, contentTypeJSON)
	for k, v := range opts.Headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		c.SetHeader(k, v)
	}
	if opts.Transport != nil {
		c.SetTransport(opts.Transport)
	}

	a := &AuthClient{
		client:        c,
		store:         opts.Store,
		tokenKey:      tokenKey,
		onAuthExpired: opts.OnAuthExpired,
		log:           ensureLogger(opts.Logger),
	}
	c.OnBeforeRequest(a.attachToken)
	c.OnAfterResponse(a.inspectResponse)
	return a, nil
}

// R returns a request bound to ctx that goes through both interceptors.
func (a *AuthClient) R(ctx context.Context) *resty.Request {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.client.R().SetContext(ctx)
}

// Get performs a GET against path (relative to the base URL).
func (a *AuthClient) Get(ctx context.Context, path string, headers map[string]string) (Response, error) {
	return a.Do(ctx, http.MethodGet, path, nil, headers)
}

// Do performs a request with an optional JSON body. On non-2xx responses both
// the response and an error are returned.
func (a *AuthClient) Do(ctx context.Context, method, path string, body any, headers map[string]string) (Response, error) {
	req := a.R(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Execute(strings.ToUpper(method), path)
	return adaptResponse(resp), err
}

// attachToken runs before dispatch. A failed store read aborts the request.
func (a *AuthClient) attachToken(_ *resty.Client, req *resty.Request) error {
	if a.store == nil {
		return nil
	}

	token, ok, err := a.store.Get(req.Context(), a.tokenKey)
	if err != nil {
		a.log.WarnObj("credential lookup failed", "request_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  err.Error(),
		})
		return fmt.Errorf("%w: %w", ErrCredentialLookup, err)
	}

	authenticated := ok && token != ""
	if authenticated {
		req.SetHeader(headerAuthorization, "Bearer "+token)
	}
	a.log.DebugObj("request prepared", "request_meta", map[string]any{
		"method":        req.Method,
		"url":           req.URL,
		"authenticated": authenticated,
	})
	return nil
}

// inspectResponse turns non-2xx responses into errors and reports 401s.
func (a *AuthClient) inspectResponse(_ *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	rerr := newResponseError(resp)
	if resp.StatusCode() != http.StatusUnauthorized {
		a.log.DebugObj("request failed", "response_error", map[string]any{
			"method": rerr.Method,
			"url":    rerr.URL,
			"status": rerr.StatusCode,
		})
		return rerr
	}

	a.log.WarnObj("credential rejected", "auth_expired", map[string]any{
		"method": rerr.Method,
		"url":    rerr.URL,
	})
	if a.onAuthExpired != nil {
		ctx := context.Background()
		if resp.Request != nil {
			ctx = resp.Request.Context()
		}
		a.onAuthExpired(ctx, &restyResponseAdapter{resp: resp})
	}
	return rerr
}
