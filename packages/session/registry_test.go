package session

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/reqflow/packages/httpclient"
)

func TestGetOrCreate_SameNameSameClient(t *testing.T) {
	registry := NewRegistry()

	first := registry.GetOrCreate("s", "", httpclient.DefaultConfig())
	second := registry.GetOrCreate("s", "", httpclient.DefaultConfig())

	assert.Same(t, first.Client, second.Client)
}

func TestGetOrCreate_DifferentNamesDifferentClients(t *testing.T) {
	registry := NewRegistry()

	a := registry.GetOrCreate("a", "", httpclient.DefaultConfig())
	b := registry.GetOrCreate("b", "", httpclient.DefaultConfig())

	assert.NotSame(t, a.Client, b.Client)
}

func TestClose_MakesNextReferenceFresh(t *testing.T) {
	registry := NewRegistry()

	first := registry.GetOrCreate("s", "", httpclient.DefaultConfig())
	registry.Close("s")
	second := registry.GetOrCreate("s", "", httpclient.DefaultConfig())

	assert.NotSame(t, first.Client, second.Client)
}

func TestClose_AbsentNameIsNoOp(t *testing.T) {
	registry := NewRegistry()
	registry.Close("never-created")
}

func TestCloseAll(t *testing.T) {
	registry := NewRegistry()
	registry.GetOrCreate("a", "", httpclient.DefaultConfig())
	registry.GetOrCreate("b", "", httpclient.DefaultConfig())

	registry.CloseAll()

	assert.Empty(t, registry.Names())
}

func TestGetOrCreate_ReappliedConfigPersistsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	registry := NewRegistry()

	cfg := httpclient.DefaultConfig()
	cfg.DefaultHeaders = map[string]string{"Authorization": "Bearer tok"}
	registry.GetOrCreate("s", "", cfg)

	// A later reference with no headers must not drop the auth header.
	s := registry.GetOrCreate("s", "", httpclient.DefaultConfig())
	resp, err := s.Client.Execute("GET", server.URL, httpclient.Options{})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestGetOrCreate_ConcurrentFirstAccessCreatesOneClient(t *testing.T) {
	registry := NewRegistry()

	const goroutines = 32
	clients := make([]*httpclient.Client, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			clients[i] = registry.GetOrCreate("shared", "", httpclient.DefaultConfig()).Client
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, clients[0], clients[i])
	}
}

func TestResolve(t *testing.T) {
	s := &Session{BaseURL: "https://api.example.com/v1/"}

	assert.Equal(t, "https://api.example.com/v1/users", s.Resolve("users"))
	assert.Equal(t, "https://api.example.com/other", s.Resolve("/other"))
	assert.Equal(t, "https://elsewhere.test/x", s.Resolve("https://elsewhere.test/x"))

	bare := &Session{}
	assert.Equal(t, "relative/path", bare.Resolve("relative/path"))
}

func TestNames(t *testing.T) {
	registry := NewRegistry()
	registry.GetOrCreate("zeta", "", httpclient.DefaultConfig())
	registry.GetOrCreate("alpha", "", httpclient.DefaultConfig())

	assert.Equal(t, []string{"alpha", "zeta"}, registry.Names())
}
