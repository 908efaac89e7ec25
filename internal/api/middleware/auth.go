package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rrens/agent-relay/internal/api/response"
	"github.com/Rrens/agent-relay/internal/security"
)

type contextKey string

const ServiceNameKey contextKey = "serviceName"

// AuthMiddleware handles service-token authentication
type AuthMiddleware struct {
	tokenManager *security.TokenManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokenManager *security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tokenManager}
}

// Authenticate validates the bearer service token
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		claims, err := m.tokenManager.Validate(parts[1])
		if err != nil {
			response.Unauthorized(w, "invalid or expired token: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ServiceNameKey, claims.ServiceName)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetServiceName extracts the authenticated service name from context
func GetServiceName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ServiceNameKey).(string)
	return name, ok
}
