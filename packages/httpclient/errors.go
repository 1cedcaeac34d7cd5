package httpclient

import "fmt"

// ConfigError reports a malformed request description: a bad URL, an
// unsupported method, or invalid per-call options. It is never retried and
// consumes no retry attempt.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransportError is raised after the retry budget is exhausted. It carries
// the number of attempts made and the last underlying transport failure.
type TransportError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
