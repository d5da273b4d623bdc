package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient()
	require.Equal(t, DefaultTimeout, c.Timeout())
	require.NotNil(t, c.httpClient)
}

func TestWithTimeout_IgnoresNonPositive(t *testing.T) {
	c := NewClient(WithTimeout(0))
	require.Equal(t, DefaultTimeout, c.Timeout())

	c = NewClient(WithTimeout(5 * time.Second))
	require.Equal(t, 5*time.Second, c.Timeout())
}

func TestPostJSON_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"hello":"world"}`, string(body))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient()
	raw, err := c.PostJSON(context.Background(), srv.URL, "Bearer sk-test", []byte(`{"hello":"world"}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestPostJSON_OmitsEmptyAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient().PostJSON(context.Background(), srv.URL, "", []byte(`{}`))
	require.NoError(t, err)
}

func TestPostJSON_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`model is loading`))
	}))
	defer srv.Close()

	_, err := NewClient().PostJSON(context.Background(), srv.URL, "Bearer sk-test", []byte(`{}`))
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusServiceUnavailable, statusErr.HTTPStatusCode())
	require.Equal(t, srv.URL, statusErr.URL)
	require.Contains(t, statusErr.Body, "model is loading")
}

func TestPostJSON_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(WithTimeout(50 * time.Millisecond))
	_, err := c.PostJSON(context.Background(), srv.URL, "", []byte(`{}`))
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPostJSON_EmptyURL(t *testing.T) {
	_, err := NewClient().PostJSON(context.Background(), "  ", "", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "url")
}

func TestPostJSON_NilHTTPClientFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient()
	c.httpClient = nil
	_, err := c.PostJSON(context.Background(), srv.URL, "", []byte(`{}`))
	require.NoError(t, err)
}
