package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestFetcher(timeout time.Duration) *Fetcher {
	return NewFetcher("TestBot/1.0", timeout, nil, zap.NewNop())
}

func TestFetchReturnsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TestBot/1.0", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	res := newTestFetcher(5 * time.Second).Fetch(context.Background(), srv.URL)
	assert.Equal(t, 200, res.StatusCode)
	assert.Contains(t, res.HTML, "hello")
}

func TestFetchNon2xxYieldsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	res := newTestFetcher(5 * time.Second).Fetch(context.Background(), srv.URL)
	assert.Equal(t, 404, res.StatusCode)
	assert.Empty(t, res.HTML)
}

func TestFetchTimeoutReturns408(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	res := newTestFetcher(50 * time.Millisecond).Fetch(context.Background(), srv.URL)
	assert.Equal(t, http.StatusRequestTimeout, res.StatusCode)
	assert.Empty(t, res.HTML)
}

func TestFetchUnreachableReturns500(t *testing.T) {
	res := newTestFetcher(time.Second).Fetch(context.Background(), "http://127.0.0.1:1")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Empty(t, res.HTML)
}

func TestFetchPrefixesScheme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	// Scheme-less input gets https://, which the test server does not
	// speak, so the result degrades to a transport failure rather than a
	// panic or raised error.
	host := strings.TrimPrefix(srv.URL, "http://")
	res := newTestFetcher(time.Second).Fetch(context.Background(), host)
	assert.NotEqual(t, 0, res.StatusCode)
}

func TestLooksLikeScriptShell(t *testing.T) {
	shell := `<html><head></head><body><div id="root"></div><script src="/app.js"></script></body></html>`
	assert.True(t, looksLikeScriptShell(shell))

	full := `<html><body><script>var a=1;</script><p>` + strings.Repeat("real content here ", 30) + `</p></body></html>`
	assert.False(t, looksLikeScriptShell(full))

	assert.False(t, looksLikeScriptShell("<html><body><p>no scripts at all</p></body></html>"))
}
