// Package util implements the request-preparation helper operations the
// editor exposes alongside the HTTP nodes: URL and base64 encoding, JSON
// escaping, timestamps, UUIDs, HMAC signatures, and auth header
// construction. Every operation returns a result, an informational
// message, and a success flag; failures never panic.
package util

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"html"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Options carries the auxiliary inputs some operations need.
type Options struct {
	SecretKey string
	Algorithm string // sha1, sha256, md5 (signature operations)
	URLBase   string
	URLPath   string
	URLParams string // JSON object of query parameters
}

// Op computes one operation over the input.
type Op func(input string, opts Options) (result, info string, ok bool)

var ops = map[string]Op{
	"url_encode":            opURLEncode,
	"url_decode":            opURLDecode,
	"base64_encode":         opBase64Encode,
	"base64_decode":         opBase64Decode,
	"json_escape":           opJSONEscape,
	"json_unescape":         opJSONUnescape,
	"html_escape":           opHTMLEscape,
	"html_unescape":         opHTMLUnescape,
	"generate_timestamp":    opTimestamp,
	"generate_uuid":         opUUID,
	"generate_signature":    opSignature,
	"parse_url":             opParseURL,
	"build_url":             opBuildURL,
	"extract_domain":        opExtractDomain,
	"validate_email":        opValidateEmail,
	"generate_bearer_token": opBearerToken,
	"create_basic_auth":     opBasicAuth,
}

// Run executes a named operation. Unknown names report failure rather
// than erroring.
func Run(op, input string, opts Options) (string, string, bool) {
	fn, found := ops[op]
	if !found {
		return "", fmt.Sprintf("unknown operation %q", op), false
	}
	return fn(input, opts)
}

// Names lists the available operations in sorted order.
func Names() []string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func opURLEncode(input string, _ Options) (string, string, bool) {
	result := url.QueryEscape(input)
	return result, fmt.Sprintf("URL encoded %d characters", len(input)), true
}

func opURLDecode(input string, _ Options) (string, string, bool) {
	result, err := url.QueryUnescape(input)
	if err != nil {
		return "", fmt.Sprintf("URL decode failed: %v", err), false
	}
	return result, fmt.Sprintf("URL decoded to %d characters", len(result)), true
}

func opBase64Encode(input string, _ Options) (string, string, bool) {
	result := base64.StdEncoding.EncodeToString([]byte(input))
	return result, fmt.Sprintf("base64 encoded %d characters to %d characters", len(input), len(result)), true
}

func opBase64Decode(input string, _ Options) (string, string, bool) {
	decoded, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		return "", fmt.Sprintf("base64 decode failed: %v", err), false
	}
	return string(decoded), fmt.Sprintf("base64 decoded %d characters to %d characters", len(input), len(decoded)), true
}

func opJSONEscape(input string, _ Options) (string, string, bool) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Sprintf("JSON escape failed: %v", err), false
	}
	return string(data), "JSON escaped string", true
}

func opJSONUnescape(input string, _ Options) (string, string, bool) {
	var s string
	if err := json.Unmarshal([]byte(input), &s); err != nil {
		return "", fmt.Sprintf("JSON unescape failed: %v", err), false
	}
	return s, "JSON unescaped string", true
}

func opHTMLEscape(input string, _ Options) (string, string, bool) {
	return html.EscapeString(input), fmt.Sprintf("HTML escaped %d characters", len(input)), true
}

func opHTMLUnescape(input string, _ Options) (string, string, bool) {
	return html.UnescapeString(input), fmt.Sprintf("HTML unescaped %d characters", len(input)), true
}

func opTimestamp(_ string, _ Options) (string, string, bool) {
	now := time.Now().UTC()
	return fmt.Sprintf("%d", now.Unix()), fmt.Sprintf("generated timestamp: %s", now.Format(time.RFC3339)), true
}

func opUUID(_ string, _ Options) (string, string, bool) {
	return uuid.NewString(), "generated UUID v4", true
}

func opSignature(input string, opts Options) (string, string, bool) {
	if opts.SecretKey == "" {
		return "", "secret key required", false
	}

	var newHash func() hash.Hash
	switch opts.Algorithm {
	case "sha1":
		newHash = sha1.New
	case "", "sha256":
		newHash = sha256.New
	case "md5":
		newHash = md5.New
	default:
		return "", fmt.Sprintf("unsupported algorithm %q", opts.Algorithm), false
	}

	mac := hmac.New(newHash, []byte(opts.SecretKey))
	mac.Write([]byte(input))
	signature := hex.EncodeToString(mac.Sum(nil))
	algo := opts.Algorithm
	if algo == "" {
		algo = "sha256"
	}
	return signature, fmt.Sprintf("generated HMAC-%s signature", strings.ToUpper(algo)), true
}

func opParseURL(input string, _ Options) (string, string, bool) {
	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Sprintf("URL parse failed: %v", err), false
	}
	parts := map[string]string{
		"scheme":   u.Scheme,
		"host":     u.Host,
		"path":     u.Path,
		"query":    u.RawQuery,
		"fragment": u.Fragment,
	}
	data, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Sprintf("URL parse failed: %v", err), false
	}
	return string(data), fmt.Sprintf("parsed URL with host %s", u.Host), true
}

func opBuildURL(_ string, opts Options) (string, string, bool) {
	base, err := url.Parse(opts.URLBase)
	if err != nil {
		return "", fmt.Sprintf("invalid base URL: %v", err), false
	}
	base.Path = opts.URLPath

	if opts.URLParams != "" && opts.URLParams != "{}" {
		var params map[string]string
		if err := json.Unmarshal([]byte(opts.URLParams), &params); err != nil {
			return "", fmt.Sprintf("invalid URL params: %v", err), false
		}
		q := base.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		base.RawQuery = q.Encode()
	}

	result := base.String()
	return result, fmt.Sprintf("built URL with %d characters", len(result)), true
}

func opExtractDomain(input string, _ Options) (string, string, bool) {
	u, err := url.Parse(input)
	if err != nil || u.Hostname() == "" {
		return "", "no domain found in input", false
	}
	return u.Hostname(), fmt.Sprintf("extracted domain from %s", u.Scheme), true
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func opValidateEmail(input string, _ Options) (string, string, bool) {
	if emailPattern.MatchString(input) {
		return "true", "valid email address", true
	}
	return "false", "invalid email address", false
}

func opBearerToken(input string, _ Options) (string, string, bool) {
	if input == "" {
		return "", "token required", false
	}
	return "Bearer " + input, "generated bearer authorization value", true
}

// opBasicAuth expects "username:password" input.
func opBasicAuth(input string, _ Options) (string, string, bool) {
	if !strings.Contains(input, ":") {
		return "", "input must be username:password", false
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(input))
	return "Basic " + encoded, "generated basic authorization value", true
}
