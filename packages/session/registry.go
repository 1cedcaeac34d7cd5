// Package session keeps named, process-lifetime HTTP clients.
//
// A session binds a string name to one persistent request client so that
// cookies, auth headers, and connections are reused across every call made
// over a workflow run. Sessions are created lazily on first reference and
// live until closed.
package session

import (
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/reqflow/packages/httpclient"
)

// Session is a named binding to a persistent client.
type Session struct {
	Name    string
	Client  *httpclient.Client
	BaseURL string
}

// Resolve joins a reference onto the session's base URL. Absolute
// references and sessions without a base URL pass through unchanged.
func (s *Session) Resolve(ref string) string {
	if s.BaseURL == "" {
		return ref
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return ref
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(rel).String()
}

// Registry is the process-wide session store. All access is guarded; the
// registry guarantees at most one client per name even under concurrent
// first access.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. Construct one per process and
// pass it to callers; there is deliberately no package-level instance.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for name, creating it on first
// reference. The supplied configuration is reapplied onto the existing
// client on every call, so the last caller's timeout/SSL/proxy/retry
// settings win while previously applied auth headers persist. The base URL
// is updated when non-empty.
func (r *Registry) GetOrCreate(name, baseURL string, cfg httpclient.Config) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[name]
	if !ok {
		s = &Session{
			Name:   name,
			Client: httpclient.New(cfg),
		}
		r.sessions[name] = s
	} else {
		s.Client.Configure(cfg)
	}
	if baseURL != "" {
		s.BaseURL = baseURL
	}
	return s
}

// Get returns the session for name without creating one.
func (r *Registry) Get(name string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[name]
	return s, ok
}

// Close releases one named session. An absent name is a no-op.
func (r *Registry) Close(name string) {
	r.mu.Lock()
	s, ok := r.sessions[name]
	if ok {
		delete(r.sessions, name)
	}
	r.mu.Unlock()

	if ok {
		s.Client.Close()
	}
}

// CloseAll releases every registered session, for process teardown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	closing := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		closing = append(closing, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range closing {
		s.Client.Close()
	}
}

// Names lists registered session names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
