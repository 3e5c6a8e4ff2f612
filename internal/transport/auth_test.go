package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayops/fleetbridge/pkg/errors"
)

func TestNoAuth(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	auth := &NoAuth{}
	auth.Apply(req)

	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestBearerAuth(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	auth := &BearerAuth{Token: func() string { return "token-123" }}
	auth.Apply(req)

	assert.Equal(t, "Bearer token-123", req.Header.Get("Authorization"))
}

func TestBearerAuthEmptyToken(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	auth := &BearerAuth{Token: func() string { return "" }}
	auth.Apply(req)

	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestHeaderAuth(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	auth := &HeaderAuth{Header: "x-api-key", Value: "key-456"}
	auth.Apply(req)

	assert.Equal(t, "key-456", req.Header.Get("x-api-key"))
}

func TestQueryAuth(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com/login/?existing=1", nil)
	require.NoError(t, err)

	auth := &QueryAuth{Params: map[string]string{
		"apiKey":   "k",
		"apiToken": "t",
	}}
	auth.Apply(req)

	query := req.URL.Query()
	assert.Equal(t, "k", query.Get("apiKey"))
	assert.Equal(t, "t", query.Get("apiToken"))
	assert.Equal(t, "1", query.Get("existing"))
}

func TestClientSetsCommonHeaders(t *testing.T) {
	var gotAccept, gotContentType, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := New(&BearerAuth{Token: func() string { return "abc" }})
	resp, err := client.Post(context.Background(), server.URL, map[string]string{"a": "b"})
	require.NoError(t, err)
	Drain(resp)

	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestDecodeResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"name":"printer-01"}`))
	}))
	defer server.Close()

	client := New(&NoAuth{})
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)

	var decoded struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeResponse("source", resp, &decoded))
	assert.Equal(t, "printer-01", decoded.Name)
}

func TestDecodeResponseStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"unauthorized", http.StatusUnauthorized, errors.ErrUnauthenticated},
		{"rate limited", http.StatusForbidden, errors.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := New(&NoAuth{})
			resp, err := client.Get(context.Background(), server.URL)
			require.NoError(t, err)

			err = DecodeResponse("target", resp, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}
