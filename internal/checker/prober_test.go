package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPProberSetsUserAgentAndMethod(t *testing.T) {
	t.Parallel()

	var gotUA, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewHTTPProber("linkcheck-test/1.0", time.Second, nil)
	resp, err := p.Probe(context.Background(), srv.URL, http.MethodHead)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "linkcheck-test/1.0", gotUA)
	require.Equal(t, http.MethodHead, gotMethod)
}

func TestHTTPProberDoesNotFollowRedirects(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", "/elsewhere")
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer srv.Close()

	p := NewHTTPProber("linkcheck-test/1.0", time.Second, nil)
	resp, err := p.Probe(context.Background(), srv.URL, http.MethodHead)
	require.NoError(t, err)
	require.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	require.Equal(t, "/elsewhere", resp.Header.Get("Location"))
}

func TestHTTPProberTimeout(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(block)

	p := NewHTTPProber("linkcheck-test/1.0", 50*time.Millisecond, nil)
	start := time.Now()
	_, err := p.Probe(context.Background(), srv.URL, http.MethodGet)
	require.Error(t, err)
	require.Contains(t, err.Error(), "timeout")
	require.Less(t, time.Since(start), time.Second)
}

func TestHTTPProberTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close()

	p := NewHTTPProber("linkcheck-test/1.0", time.Second, nil)
	_, err := p.Probe(context.Background(), srv.URL, http.MethodHead)
	require.Error(t, err)
}
