// Package httpclient executes declarative HTTP requests with bounded retry.
//
// It wraps the standard library's http package with the orchestration the
// workflow editor needs:
//   - Per-client configuration: timeout, SSL verification, redirects, proxy
//   - Linear-backoff retry over transport failures only
//   - Body precedence: multipart form > JSON > raw
//   - Binary vs text response classification
//   - Typed configuration and transport errors
package httpclient
