package transport

import (
	"net/http"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {
	// No authentication applied
}

// BearerAuth implements Bearer token authentication. The token is read
// through a function so rotated credentials take effect on the next request.
type BearerAuth struct {
	Token func() string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) {
	if a.Token == nil {
		return
	}
	if token := a.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// HeaderAuth implements custom header authentication.
type HeaderAuth struct {
	Header string
	Value  string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request) {
	if a.Header == "" || a.Value == "" {
		return
	}
	req.Header.Set(a.Header, a.Value)
}

// QueryAuth implements API key as query parameter authentication.
type QueryAuth struct {
	Params map[string]string
}

// Apply implements the Authenticator interface for QueryAuth.
func (a *QueryAuth) Apply(req *http.Request) {
	if req.URL == nil || len(a.Params) == 0 {
		return
	}

	// Parse existing query parameters
	query := req.URL.Query()
	for param, value := range a.Params {
		query.Set(param, value)
	}
	req.URL.RawQuery = query.Encode()
}
