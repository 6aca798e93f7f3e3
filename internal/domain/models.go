package domain

// Domain contains core models shared across packages.

// AuthEvent describes a request whose credential was rejected by the API.
type AuthEvent struct {
	Method     string `json:"method"`
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	// Authenticated reports whether the rejected request carried a bearer token.
	Authenticated bool `json:"authenticated"`
}
