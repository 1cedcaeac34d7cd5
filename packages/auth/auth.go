// Package auth applies credential material onto request clients.
//
// A Spec is a tagged description of a credential scheme: basic, bearer,
// API key, token, or OAuth2 client-credentials. Applying a spec copies its
// effect onto a client's headers or credential slot; the spec itself is
// never retained by the client.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/abdul-hamid-achik/reqflow/packages/httpclient"
)

// Type selects the credential scheme.
type Type string

const (
	TypeNone   Type = "none"
	TypeBasic  Type = "basic"
	TypeBearer Type = "bearer"
	TypeAPIKey Type = "api_key"
	TypeToken  Type = "token"
	TypeOAuth2 Type = "oauth2"
)

// DefaultAPIKeyHeader is used when an API key spec names no header.
const DefaultAPIKeyHeader = "X-API-Key"

// Spec describes which credential scheme to apply and with what material.
// It is immutable once constructed. CustomHeaders is an optional JSON
// object merged onto the client regardless of the variant.
type Spec struct {
	Type          Type
	Username      string
	Password      string
	Token         string
	APIKey        string
	APIKeyHeader  string
	ClientID      string
	ClientSecret  string
	TokenURL      string
	Scope         string
	CustomHeaders string
}

// Apply copies the spec's effect onto the client. It returns non-fatal
// warnings (a malformed CustomHeaders object is skipped, never fatal) and
// an error only for the OAuth2 variant, whose token acquisition has its
// own network round-trip and failure mode. On error the client is left
// untouched.
func (s Spec) Apply(c *httpclient.Client) ([]string, error) {
	var warnings []string

	switch s.Type {
	case TypeNone, "":
		// Nothing to apply; custom headers below still count.

	case TypeBasic:
		if s.Username != "" && s.Password != "" {
			c.SetBasicAuth(s.Username, s.Password)
		}

	case TypeBearer:
		if s.Token != "" {
			c.SetHeaders(map[string]string{"Authorization": "Bearer " + s.Token})
		}

	case TypeToken:
		if s.Token != "" {
			c.SetHeaders(map[string]string{"Authorization": "Token " + s.Token})
		}

	case TypeAPIKey:
		if s.APIKey != "" {
			header := s.APIKeyHeader
			if header == "" {
				header = DefaultAPIKeyHeader
			}
			c.SetHeaders(map[string]string{header: s.APIKey})
		}

	case TypeOAuth2:
		token, err := DefaultTokenSource.Get(s.ClientID, s.ClientSecret, s.TokenURL, s.Scope)
		if err != nil {
			return warnings, fmt.Errorf("oauth2 token acquisition failed: %w", err)
		}
		c.SetHeaders(map[string]string{"Authorization": "Bearer " + token.AccessToken})

	default:
		return warnings, fmt.Errorf("unsupported auth type %q", s.Type)
	}

	if w := applyCustomHeaders(c, s.CustomHeaders); w != "" {
		warnings = append(warnings, w)
	}

	return warnings, nil
}

// ApplyToOptions copies the spec's effect onto one request's options
// instead of the client, for callers that want transient credentials. With
// no client auth slot available, the basic variant becomes an Authorization
// header on this request only.
func (s Spec) ApplyToOptions(opts *httpclient.Options) ([]string, error) {
	var warnings []string

	setHeader := func(key, value string) {
		if opts.Headers == nil {
			opts.Headers = make(map[string]string)
		}
		opts.Headers[key] = value
	}

	switch s.Type {
	case TypeNone, "":

	case TypeBasic:
		if s.Username != "" && s.Password != "" {
			creds := base64.StdEncoding.EncodeToString([]byte(s.Username + ":" + s.Password))
			setHeader("Authorization", "Basic "+creds)
		}

	case TypeBearer:
		if s.Token != "" {
			setHeader("Authorization", "Bearer "+s.Token)
		}

	case TypeToken:
		if s.Token != "" {
			setHeader("Authorization", "Token "+s.Token)
		}

	case TypeAPIKey:
		if s.APIKey != "" {
			header := s.APIKeyHeader
			if header == "" {
				header = DefaultAPIKeyHeader
			}
			setHeader(header, s.APIKey)
		}

	case TypeOAuth2:
		token, err := DefaultTokenSource.Get(s.ClientID, s.ClientSecret, s.TokenURL, s.Scope)
		if err != nil {
			return warnings, fmt.Errorf("oauth2 token acquisition failed: %w", err)
		}
		setHeader("Authorization", "Bearer "+token.AccessToken)

	default:
		return warnings, fmt.Errorf("unsupported auth type %q", s.Type)
	}

	if s.CustomHeaders != "" && s.CustomHeaders != "{}" {
		var headers map[string]string
		if err := json.Unmarshal([]byte(s.CustomHeaders), &headers); err != nil {
			warnings = append(warnings, fmt.Sprintf("ignoring malformed custom headers: %v", err))
		} else {
			for k, v := range headers {
				setHeader(k, v)
			}
		}
	}

	return warnings, nil
}

// applyCustomHeaders merges a JSON object of headers onto the client.
// Malformed input is skipped with a warning: auth application must never
// abort the primary request over a header-parsing mistake.
func applyCustomHeaders(c *httpclient.Client, raw string) string {
	if raw == "" || raw == "{}" {
		return ""
	}
	var headers map[string]string
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		return fmt.Sprintf("ignoring malformed custom headers: %v", err)
	}
	if len(headers) > 0 {
		c.SetHeaders(headers)
	}
	return ""
}
