package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, path string, headers map[string]string) (Response, error)
	Do(ctx context.Context, method, path string, body any, headers map[string]string) (Response, error)
}

// CredentialStore is the read side of the secure storage holding the auth token.
// ok=false means no credential is stored, which is not an error.
type CredentialStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// AuthExpiredFunc is invoked when a response reports an expired or rejected
// credential (HTTP 401). The failure is still returned to the caller afterwards.
// It runs synchronously on the request goroutine after the response arrived,
// outside the client timeout, so slow work belongs on another goroutine.
type AuthExpiredFunc func(ctx context.Context, resp Response)

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
