package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const maxSnippetBytes = 512

var (
	// ErrUnauthorized matches responses with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrCredentialLookup matches requests aborted because the credential store read failed.
	ErrCredentialLookup = errors.New("credential lookup failed")
)

// ResponseError reports a non-2xx response. It unwraps to ErrUnauthorized for 401.
type ResponseError struct {
	Method     string
	URL        string
	StatusCode int
	Snippet    string
}

func (e *ResponseError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("%s %s: http response status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: http response status %d: %s", e.Method, e.URL, e.StatusCode, e.Snippet)
}

func (e *ResponseError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

func newResponseError(resp *resty.Response) *ResponseError {
	rerr := &ResponseError{
		StatusCode: resp.StatusCode(),
		Snippet:    BodySnippet(resp.Header().Get("Content-Type"), resp.Body()),
	}
	if resp.Request != nil {
		rerr.Method = resp.Request.Method
		rerr.URL = resp.Request.URL
	}
	return rerr
}

// IsTimeout reports whether err is a client timeout or deadline expiry.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// BodySnippet returns a short, readable excerpt of an error body, at most 512
// bytes and never ending in a partial UTF-8 sequence. HTML error pages are
// reduced to their title and first heading.
func BodySnippet(contentType string, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		if text := htmlSnippet(body); text != "" {
			body = []byte(text)
		}
	}
	if len(body) > maxSnippetBytes {
		cut := maxSnippetBytes
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	return strings.TrimSpace(string(body))
}

func htmlSnippet(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	heading := strings.TrimSpace(doc.Find("h1").First().Text())
	switch {
	case title == "":
		return heading
	case heading == "" || heading == title:
		return title
	default:
		return title + ": " + heading
	}
}
