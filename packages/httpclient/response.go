package httpclient

import (
	"encoding/json"
	"strings"
	"time"
)

// Response is the outcome of one executed call. Non-2xx statuses are normal
// responses here; the caller range-checks StatusCode to decide success.
type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	// Binary is set when the response content type marks the body as an
	// image or octet-stream payload that must not be decoded as text.
	Binary   bool
	Duration time.Duration
	// Warnings collects non-fatal configuration problems encountered while
	// preparing the call (skipped malformed headers, proxy URL, params).
	Warnings []string
}

// Text returns the body as a string. For binary responses this is a lossy
// view; callers wanting raw bytes should use Body directly.
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON unmarshals the body into a generic value.
func (r *Response) JSON() (any, error) {
	var result any
	if err := json.Unmarshal(r.Body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Header looks up a header value case-insensitively.
func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

// isBinaryContentType classifies image and octet-stream payloads as binary
// so downstream consumers skip text decoding. This mirrors how the editor's
// display nodes decide whether a body is printable.
func isBinaryContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "image/") || strings.Contains(ct, "application/octet-stream")
}
