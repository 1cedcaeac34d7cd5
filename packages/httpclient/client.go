package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	neturl "net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/reqflow/packages/form"
)

const (
	// DefaultTimeoutSeconds is the default per-call timeout.
	DefaultTimeoutSeconds = 30
	// MaxTimeoutSeconds caps the configurable timeout.
	MaxTimeoutSeconds = 300
	// DefaultMaxRetries is the default total attempt budget.
	DefaultMaxRetries = 3
	// MaxRetriesLimit caps the configurable attempt budget.
	MaxRetriesLimit = 5
	// DefaultRetryDelaySeconds is the default linear backoff factor.
	DefaultRetryDelaySeconds = 1.0
	// MaxRetryDelaySeconds caps the configurable backoff factor.
	MaxRetryDelaySeconds = 30.0
	// DefaultUserAgent identifies reqflow unless a caller overrides it.
	DefaultUserAgent = "reqflow/1.0"
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host.
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool.
	DefaultIdleConnTimeout = 90 * time.Second
)

var allowedMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodHead:    {},
	http.MethodOptions: {},
}

// Config holds the per-client settings applied uniformly to every call made
// through that client. A Config is owned by exactly one Client; sessions
// reapply it on every reference.
type Config struct {
	TimeoutSeconds    int
	VerifySSL         bool
	AllowRedirects    bool
	ProxyURL          string
	MaxRetries        int
	RetryDelaySeconds float64
	DefaultHeaders    map[string]string
	DefaultCookies    map[string]string
	// MaxRPS throttles outgoing attempts; 0 disables throttling.
	MaxRPS float64
}

// DefaultConfig returns the settings a fresh client starts with.
func DefaultConfig() Config {
	return Config{
		TimeoutSeconds:    DefaultTimeoutSeconds,
		VerifySSL:         true,
		AllowRedirects:    true,
		MaxRetries:        DefaultMaxRetries,
		RetryDelaySeconds: DefaultRetryDelaySeconds,
	}
}

// Options carries the per-call parts of a request. Exactly one body
// representation is honored: Form wins over JSONBody, which wins over Body.
type Options struct {
	Params   map[string]string
	Headers  map[string]string
	Body     string
	JSONBody any
	Form     *form.Body
}

// Client executes logical HTTP calls with bounded retry. All mutation of
// shared state (headers, cookies, credentials, configuration) is guarded so
// one client may be shared across goroutines.
type Client struct {
	mu         sync.Mutex
	cfg        Config
	httpClient *http.Client
	jar        http.CookieJar
	headers    map[string]string
	cookies    map[string]string
	basicUser  string
	basicPass  string
	hasBasic   bool
	limiter    *rate.Limiter
	warnings   []string

	// sleep is swapped out in tests to observe backoff behavior.
	sleep func(time.Duration)
}

// New creates a client and applies the given configuration.
func New(cfg Config) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		headers: map[string]string{"User-Agent": DefaultUserAgent},
		cookies: make(map[string]string),
		jar:     jar,
		sleep:   time.Sleep,
	}
	c.Configure(cfg)
	return c
}

// Configure reapplies configuration onto a live client. Headers and cookies
// from the config are merged over the existing ones (last write wins per
// key), matching how a session's settings accumulate across references.
// A malformed proxy URL is skipped with a warning rather than failing.
func (c *Client) Configure(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cfg.TimeoutSeconds < 1 {
		cfg.TimeoutSeconds = 1
	}
	if cfg.TimeoutSeconds > MaxTimeoutSeconds {
		cfg.TimeoutSeconds = MaxTimeoutSeconds
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.MaxRetries > MaxRetriesLimit {
		cfg.MaxRetries = MaxRetriesLimit
	}
	if cfg.RetryDelaySeconds < 0 {
		cfg.RetryDelaySeconds = 0
	}
	if cfg.RetryDelaySeconds > MaxRetryDelaySeconds {
		cfg.RetryDelaySeconds = MaxRetryDelaySeconds
	}

	c.warnings = nil

	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}
	if !cfg.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := neturl.Parse(cfg.ProxyURL)
		if err != nil || proxyURL.Scheme == "" || proxyURL.Host == "" {
			c.warnings = append(c.warnings, fmt.Sprintf("ignoring malformed proxy URL %q", cfg.ProxyURL))
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	httpClient := &http.Client{
		Transport: transport,
		Jar:       c.jar,
		Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if !cfg.AllowRedirects {
		httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	for k, v := range cfg.DefaultHeaders {
		c.headers[k] = v
	}
	for k, v := range cfg.DefaultCookies {
		c.cookies[k] = v
	}

	if cfg.MaxRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MaxRPS), 1)
	} else {
		c.limiter = nil
	}

	c.cfg = cfg
	c.httpClient = httpClient
}

// SetHeaders merges headers into the client's defaults.
func (c *Client) SetHeaders(headers map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range headers {
		c.headers[k] = v
	}
}

// SetCookies merges cookies into the client's defaults.
func (c *Client) SetCookies(cookies map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range cookies {
		c.cookies[k] = v
	}
}

// SetBasicAuth stores credentials in the client's auth slot. They are
// attached to every outgoing request via the transport-level mechanism,
// not as a manually assembled header.
func (c *Client) SetBasicAuth(username, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.basicUser = username
	c.basicPass = password
	c.hasBasic = true
}

// Execute performs one logical HTTP call with retry. Transport failures
// (connection errors, timeouts) are retried up to the configured budget
// with linear backoff; HTTP error statuses are returned as ordinary
// responses. A malformed URL or unsupported method fails immediately with
// a ConfigError without consuming an attempt.
func (c *Client) Execute(method, rawURL string, opts Options) (*Response, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if _, ok := allowedMethods[method]; !ok {
		return nil, &ConfigError{Field: "method", Reason: fmt.Sprintf("unsupported method %q", method)}
	}
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	finalURL := buildURL(rawURL, opts.Params)

	var bodyBytes []byte
	var contentType string
	switch {
	case !opts.Form.Empty():
		buf, ct, err := opts.Form.Encode()
		if err != nil {
			return nil, &ConfigError{Field: "form", Reason: err.Error()}
		}
		bodyBytes = buf.Bytes()
		contentType = ct
	case opts.JSONBody != nil:
		data, err := json.Marshal(opts.JSONBody)
		if err != nil {
			return nil, &ConfigError{Field: "jsonBody", Reason: err.Error()}
		}
		bodyBytes = data
		contentType = "application/json"
	case opts.Body != "":
		bodyBytes = []byte(opts.Body)
	}

	return c.do(method, finalURL, bodyBytes, contentType, opts.Headers, false)
}

// GetBinary fetches a URL and always returns the raw bytes, regardless of
// the response content type. Callers loading images use this to avoid any
// risk of lossy text decoding.
func (c *Client) GetBinary(rawURL string, params map[string]string) (*Response, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}
	return c.do(http.MethodGet, buildURL(rawURL, params), nil, "", nil, true)
}

func (c *Client) do(method, url string, bodyBytes []byte, contentType string, headers map[string]string, forceBinary bool) (*Response, error) {
	// Snapshot shared state so concurrent mutation cannot tear a call.
	c.mu.Lock()
	httpClient := c.httpClient
	maxRetries := c.cfg.MaxRetries
	retryDelay := c.cfg.RetryDelaySeconds
	limiter := c.limiter
	defaultHeaders := copyMap(c.headers)
	cookies := copyMap(c.cookies)
	basicUser, basicPass, hasBasic := c.basicUser, c.basicPass, c.hasBasic
	warnings := append([]string(nil), c.warnings...)
	c.mu.Unlock()

	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if limiter != nil {
			if err := limiter.Wait(context.Background()); err != nil {
				return nil, err
			}
		}

		var body io.Reader
		if len(bodyBytes) > 0 {
			body = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequest(method, url, body)
		if err != nil {
			return nil, &ConfigError{Field: "url", Reason: err.Error()}
		}

		for k, v := range defaultHeaders {
			req.Header.Set(k, v)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		// The body's own content type wins over anything supplied as a
		// header; a multipart boundary cannot be overridden.
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		for name, value := range cookies {
			req.AddCookie(&http.Cookie{Name: name, Value: value})
		}
		if hasBasic {
			req.SetBasicAuth(basicUser, basicPass)
		}

		start := time.Now()
		httpResp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				c.sleep(backoff(retryDelay, attempt))
			}
			continue
		}

		respBody, err := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				c.sleep(backoff(retryDelay, attempt))
			}
			continue
		}

		respHeaders := make(map[string]string, len(httpResp.Header))
		for k, vals := range httpResp.Header {
			// Last value wins on duplicate header names.
			respHeaders[k] = vals[len(vals)-1]
		}

		return &Response{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Headers:    respHeaders,
			Body:       respBody,
			Binary:     forceBinary || isBinaryContentType(httpResp.Header.Get("Content-Type")),
			Duration:   time.Since(start),
			Warnings:   warnings,
		}, nil
	}

	return nil, &TransportError{URL: url, Attempts: maxRetries, Err: lastErr}
}

// backoff is linear: delay * attemptNumber. The original engine behaves
// this way and callers tune retryDelay accordingly.
func backoff(delaySeconds float64, attempt int) time.Duration {
	return time.Duration(delaySeconds * float64(attempt) * float64(time.Second))
}

// Get issues a GET request.
func (c *Client) Get(url string, params map[string]string, headers map[string]string) (*Response, error) {
	return c.Execute(http.MethodGet, url, Options{Params: params, Headers: headers})
}

// Post issues a POST request with the given options.
func (c *Client) Post(url string, opts Options) (*Response, error) {
	return c.Execute(http.MethodPost, url, opts)
}

// Put issues a PUT request with the given options.
func (c *Client) Put(url string, opts Options) (*Response, error) {
	return c.Execute(http.MethodPut, url, opts)
}

// Patch issues a PATCH request with the given options.
func (c *Client) Patch(url string, opts Options) (*Response, error) {
	return c.Execute(http.MethodPatch, url, opts)
}

// Delete issues a DELETE request.
func (c *Client) Delete(url string, headers map[string]string) (*Response, error) {
	return c.Execute(http.MethodDelete, url, Options{Headers: headers})
}

// Head issues a HEAD request.
func (c *Client) Head(url string, headers map[string]string) (*Response, error) {
	return c.Execute(http.MethodHead, url, Options{Headers: headers})
}

// OptionsCall issues an OPTIONS request.
func (c *Client) OptionsCall(url string, headers map[string]string) (*Response, error) {
	return c.Execute(http.MethodOptions, url, Options{Headers: headers})
}

// Close releases idle transport connections. The owning session is
// responsible for making sure no calls are issued after Close.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// validateURL checks that a URL is well-formed, absolute, and uses an
// allowed scheme. Failures are ConfigErrors: immediate, never retried.
func validateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return &ConfigError{Field: "url", Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigError{Field: "url", Reason: fmt.Sprintf("unsupported scheme %q (only http and https are allowed)", u.Scheme)}
	}
	if u.Host == "" {
		return &ConfigError{Field: "url", Reason: "URL must have a host"}
	}
	return nil
}

func buildURL(rawURL string, params map[string]string) string {
	if len(params) == 0 {
		return rawURL
	}
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
