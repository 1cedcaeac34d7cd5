package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_URLEncodeRoundTrip(t *testing.T) {
	encoded, _, ok := Run("url_encode", "a b&c", Options{})
	require.True(t, ok)
	assert.Equal(t, "a+b%26c", encoded)

	decoded, _, ok := Run("url_decode", encoded, Options{})
	require.True(t, ok)
	assert.Equal(t, "a b&c", decoded)
}

func TestRun_Base64RoundTrip(t *testing.T) {
	encoded, _, ok := Run("base64_encode", "hello world", Options{})
	require.True(t, ok)
	assert.Equal(t, "aGVsbG8gd29ybGQ=", encoded)

	decoded, _, ok := Run("base64_decode", encoded, Options{})
	require.True(t, ok)
	assert.Equal(t, "hello world", decoded)
}

func TestRun_Base64DecodeFailure(t *testing.T) {
	_, info, ok := Run("base64_decode", "!!!not base64!!!", Options{})
	assert.False(t, ok)
	assert.Contains(t, info, "decode failed")
}

func TestRun_JSONEscapeRoundTrip(t *testing.T) {
	escaped, _, ok := Run("json_escape", `say "hi"`, Options{})
	require.True(t, ok)
	assert.Equal(t, `"say \"hi\""`, escaped)

	unescaped, _, ok := Run("json_unescape", escaped, Options{})
	require.True(t, ok)
	assert.Equal(t, `say "hi"`, unescaped)
}

func TestRun_Timestamp(t *testing.T) {
	value, info, ok := Run("generate_timestamp", "", Options{})
	require.True(t, ok)

	ts, err := strconv.ParseInt(value, 10, 64)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Unix(), ts, 5)
	assert.Contains(t, info, "T")
}

func TestRun_UUID(t *testing.T) {
	value, _, ok := Run("generate_uuid", "", Options{})
	require.True(t, ok)

	_, err := uuid.Parse(value)
	assert.NoError(t, err)
}

func TestRun_Signature(t *testing.T) {
	// echo -n "payload" | openssl dgst -sha256 -hmac "key"
	value, _, ok := Run("generate_signature", "payload", Options{SecretKey: "key", Algorithm: "sha256"})
	require.True(t, ok)
	assert.Equal(t, "5d98b45c90a207fa998ce639fea6f02ecc8cc3f36fef81d694fb856b4d0a28ca", value)

	_, info, ok := Run("generate_signature", "payload", Options{})
	assert.False(t, ok)
	assert.Contains(t, info, "secret key")
}

func TestRun_BuildURL(t *testing.T) {
	value, _, ok := Run("build_url", "", Options{
		URLBase:   "https://api.example.com",
		URLPath:   "/v1/search",
		URLParams: `{"q": "widgets", "page": "2"}`,
	})
	require.True(t, ok)
	assert.Equal(t, "https://api.example.com/v1/search?page=2&q=widgets", value)
}

func TestRun_ParseURLAndDomain(t *testing.T) {
	value, _, ok := Run("parse_url", "https://api.example.com/v1?x=1", Options{})
	require.True(t, ok)
	assert.Contains(t, value, `"host":"api.example.com"`)

	domain, _, ok := Run("extract_domain", "https://api.example.com:8443/v1", Options{})
	require.True(t, ok)
	assert.Equal(t, "api.example.com", domain)
}

func TestRun_ValidateEmail(t *testing.T) {
	value, _, ok := Run("validate_email", "dev@example.com", Options{})
	assert.True(t, ok)
	assert.Equal(t, "true", value)

	value, _, ok = Run("validate_email", "not-an-email", Options{})
	assert.False(t, ok)
	assert.Equal(t, "false", value)
}

func TestRun_AuthHeaders(t *testing.T) {
	value, _, ok := Run("generate_bearer_token", "tok", Options{})
	require.True(t, ok)
	assert.Equal(t, "Bearer tok", value)

	value, _, ok = Run("create_basic_auth", "user:pass", Options{})
	require.True(t, ok)
	assert.Equal(t, "Basic dXNlcjpwYXNz", value)

	_, _, ok = Run("create_basic_auth", "missing-separator", Options{})
	assert.False(t, ok)
}

func TestRun_UnknownOperation(t *testing.T) {
	_, info, ok := Run("teleport", "x", Options{})
	assert.False(t, ok)
	assert.Contains(t, info, "unknown operation")
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "url_encode")
	assert.Contains(t, names, "generate_uuid")
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}
