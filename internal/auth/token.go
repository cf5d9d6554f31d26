package auth

import "strings"

// tokenScheme is the authorization scheme producers use: "Token <value>".
const tokenScheme = "Token "

// ParseAuthorizationHeader extracts the credential from an Authorization
// header value. Only the "Token <value>" scheme is recognized; a missing
// header, a different scheme, or an empty value all count as absent.
func ParseAuthorizationHeader(header string) (string, bool) {
	if !strings.HasPrefix(header, tokenScheme) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, tokenScheme))
	if token == "" {
		return "", false
	}
	return token, true
}

// TokenStore resolves bearer credentials into service identities.
type TokenStore interface {
	// Resolve returns the service a token belongs to, or ok=false for an
	// unknown token. Resolution never fails with an error: an unknown
	// credential is a normal outcome, not an exceptional one.
	Resolve(token string) (service string, ok bool)
}

// StaticTokenStore is an immutable in-memory credential table. It is built
// once at startup from configuration and never mutated, so it needs no
// locking.
type StaticTokenStore struct {
	tokens map[string]string
}

// NewStaticTokenStore copies the given mapping so later changes to the
// caller's map cannot leak into the store.
func NewStaticTokenStore(tokens map[string]string) *StaticTokenStore {
	owned := make(map[string]string, len(tokens))
	for token, service := range tokens {
		owned[token] = service
	}
	return &StaticTokenStore{tokens: owned}
}

// Resolve implements TokenStore.
func (s *StaticTokenStore) Resolve(token string) (string, bool) {
	service, ok := s.tokens[token]
	return service, ok
}
