// Package auth verifies bearer tokens presented on the notify endpoint.
//
// Valid tokens come from a TokenSource. The environment source accepts
// every variable whose key equals the configured prefix or starts with
// "<prefix>_", so several tokens can be valid at once during rotation.
package auth

import (
	"os"
	"strings"
)

// TokenSource yields the currently valid authorization tokens.
type TokenSource interface {
	Tokens() []string
}

// EnvTokenSource reads tokens from environment variables by key prefix.
type EnvTokenSource struct {
	prefix string
}

// NewEnvTokenSource creates an environment-backed token source.
// An empty prefix falls back to "AUTHORIZATION_TOKEN".
func NewEnvTokenSource(prefix string) *EnvTokenSource {
	if prefix == "" {
		prefix = "AUTHORIZATION_TOKEN"
	}
	return &EnvTokenSource{prefix: prefix}
}

// Tokens returns the value of every environment variable whose key is
// exactly the prefix or starts with "<prefix>_". Empty values are skipped.
func (s *EnvTokenSource) Tokens() []string {
	var tokens []string
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		if key == s.prefix || strings.HasPrefix(key, s.prefix+"_") {
			tokens = append(tokens, value)
		}
	}
	return tokens
}

// StaticTokenSource holds a fixed token list, used by tests and the CLI.
type StaticTokenSource []string

// Tokens returns the configured tokens.
func (s StaticTokenSource) Tokens() []string {
	return s
}

// Verifier checks candidate tokens against a TokenSource.
type Verifier struct {
	source TokenSource
}

// NewVerifier creates a Verifier over the given source.
func NewVerifier(source TokenSource) *Verifier {
	return &Verifier{source: source}
}

// CheckToken returns true iff candidate is non-empty and exactly matches
// one of the configured tokens. An empty candidate is always rejected,
// even when no tokens are configured.
func (v *Verifier) CheckToken(candidate string) bool {
	if candidate == "" {
		return false
	}
	for _, token := range v.source.Tokens() {
		if candidate == token {
			return true
		}
	}
	return false
}

// BearerToken extracts the token from an Authorization header value of
// the form "Bearer <token>". The scheme prefix is case-sensitive and
// split on its first occurrence. Returns "" when absent.
func BearerToken(header string) string {
	_, token, ok := strings.Cut(header, "Bearer ")
	if !ok {
		return ""
	}
	return token
}
