package middleware

import (
	"context"
	"net/http"

	"log_collector/internal/auth"
	"log_collector/internal/utils"
)

// ContextKey defines the type for context keys to avoid conflicts
type ContextKey string

const (
	// CredentialKey is the context key for the raw bearer token presented
	// on the request.
	CredentialKey ContextKey = "credential"

	// ServiceIdentityKey is the context key for the service identity the
	// credential resolved to.
	ServiceIdentityKey ContextKey = "serviceIdentity"
)

// TokenMiddleware resolves the request credential against the token store and
// places (token, service) into the request context. A missing, malformed, or
// unknown credential rejects the whole request before any record is examined.
func TokenMiddleware(store auth.TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.ParseAuthorizationHeader(r.Header.Get("Authorization"))
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			service, ok := store.Resolve(token)
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), CredentialKey, token)
			ctx = context.WithValue(ctx, ServiceIdentityKey, service)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCredential retrieves the raw bearer token from the request context.
func GetCredential(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(CredentialKey).(string)
	return token, ok
}

// GetServiceIdentity retrieves the resolved service identity from the request
// context.
func GetServiceIdentity(ctx context.Context) (string, bool) {
	service, ok := ctx.Value(ServiceIdentityKey).(string)
	return service, ok
}
