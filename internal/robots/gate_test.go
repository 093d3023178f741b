package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveRobots(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestGateDisallowsMatchingPaths(t *testing.T) {
	srv := serveRobots(t, "User-agent: *\nDisallow: /private/\nAllow: /private/public\n", http.StatusOK)
	defer srv.Close()

	gate := NewGate("TestBot/1.0")
	require.NoError(t, gate.Load(context.Background(), srv.URL))
	assert.True(t, gate.Found())

	assert.False(t, gate.Allowed("/private/secret"))
	assert.True(t, gate.Allowed("/private/public"))
	assert.True(t, gate.Allowed("/about"))
	assert.True(t, gate.Allowed("/"))
}

func TestGateFailsOpenOnMissingRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	gate := NewGate("TestBot/1.0")
	require.NoError(t, gate.Load(context.Background(), srv.URL))
	assert.False(t, gate.Found())
	assert.True(t, gate.Allowed("/private/anything"))
}

func TestGateFailsOpenOnFetchError(t *testing.T) {
	gate := NewGate("TestBot/1.0")
	err := gate.Load(context.Background(), "http://127.0.0.1:1")
	assert.Error(t, err)
	assert.True(t, gate.Allowed("/anything"))
}

func TestGateFailsOpenWithoutLoad(t *testing.T) {
	gate := NewGate("TestBot/1.0")
	assert.True(t, gate.Allowed("/private/page"))
}

func TestGateNamedAgentRules(t *testing.T) {
	body := "User-agent: TestBot\nDisallow: /admin/\n\nUser-agent: *\nDisallow:\n"
	srv := serveRobots(t, body, http.StatusOK)
	defer srv.Close()

	gate := NewGate("TestBot/1.0")
	require.NoError(t, gate.Load(context.Background(), srv.URL))
	assert.False(t, gate.Allowed("/admin/panel"))
	assert.True(t, gate.Allowed("/shop"))
}

func TestGateSitemapDirectives(t *testing.T) {
	body := "User-agent: *\nDisallow:\nSitemap: https://example.com/sitemap.xml\n"
	srv := serveRobots(t, body, http.StatusOK)
	defer srv.Close()

	gate := NewGate("TestBot/1.0")
	require.NoError(t, gate.Load(context.Background(), srv.URL))
	assert.Equal(t, []string{"https://example.com/sitemap.xml"}, gate.Sitemaps())
}
