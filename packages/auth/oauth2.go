package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Token is an OAuth2 access token obtained via the client-credentials flow.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
	ExpiresAt   time.Time
}

// IsExpired reports whether the token is past (or within 30 seconds of)
// its expiry, the buffer covering clock skew.
func (t *Token) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(30 * time.Second).After(t.ExpiresAt)
}

// TokenSource fetches and caches client-credentials tokens. Tokens are
// cached per tokenURL/clientID/scope until they expire.
type TokenSource struct {
	httpClient *http.Client

	mu     sync.RWMutex
	tokens map[string]*Token
}

// DefaultTokenSource is the process-wide token source used by Spec.Apply.
var DefaultTokenSource = NewTokenSource()

// NewTokenSource creates a token source with its own 30-second-timeout
// HTTP client. Token acquisition is a side channel of the main request
// and does not share the caller's retry budget.
func NewTokenSource() *TokenSource {
	return &TokenSource{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     make(map[string]*Token),
	}
}

// Get returns a valid token for the given credentials, fetching a new one
// when the cache has none or the cached token expired.
func (ts *TokenSource) Get(clientID, clientSecret, tokenURL, scope string) (*Token, error) {
	key := cacheKey(clientID, tokenURL, scope)

	ts.mu.RLock()
	token := ts.tokens[key]
	ts.mu.RUnlock()
	if token != nil && !token.IsExpired() {
		return token, nil
	}

	token, err := ts.fetch(clientID, clientSecret, tokenURL, scope)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	ts.tokens[key] = token
	ts.mu.Unlock()

	return token, nil
}

// Clear drops all cached tokens.
func (ts *TokenSource) Clear() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.tokens = make(map[string]*Token)
}

func (ts *TokenSource) fetch(clientID, clientSecret, tokenURL, scope string) (*Token, error) {
	if tokenURL == "" {
		return nil, fmt.Errorf("oauth2: token URL is required")
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", clientID)
	data.Set("client_secret", clientSecret)
	if scope != "" {
		data.Set("scope", scope)
	}

	req, err := http.NewRequest("POST", tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("oauth2: building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth2: token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("oauth2: reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("oauth2: token request failed: %s - %s", errResp.Error, errResp.ErrorDescription)
		}
		return nil, fmt.Errorf("oauth2: token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("oauth2: parsing token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("oauth2: no access_token in response")
	}
	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}

func cacheKey(clientID, tokenURL, scope string) string {
	return fmt.Sprintf("%s:%s:%s", tokenURL, clientID, scope)
}
