package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"robinhoodarmy/internal/security"
	"robinhoodarmy/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserIDContextKey ContextKey = "user_id"
	RoleContextKey   ContextKey = "role"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	limiter     *security.RateLimiter
}

// NewMiddleware creates a new middleware instance. A nil limiter disables rate limiting.
func NewMiddleware(authService *service.AuthService, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		limiter:     limiter,
	}
}

// RequireAuth is middleware that requires a valid bearer token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.authService.VerifyToken(bearerToken(r))
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or missing access token", "", nil)
			return
		}

		// Add user to context
		ctx := context.WithValue(r.Context(), UserIDContextKey, claims.UserID())
		ctx = context.WithValue(ctx, RoleContextKey, claims.Role)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit throttles requests per authenticated user, or per client IP
// when no user is known
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next(w, r)
			return
		}

		key := GetUserIDFromContext(r.Context())
		if key == "" {
			key = security.ClientIP(r)
		}
		if !m.limiter.Allow(key) {
			log.Printf("Rate limit exceeded for %s on %s", key, r.URL.Path)
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Call next handler
		next.ServeHTTP(w, r)

		// Log request
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetUserIDFromContext retrieves the authenticated user id from the request context
func GetUserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDContextKey).(string)
	return userID
}

// GetRoleFromContext retrieves the caller's role claim, empty for ordinary users
func GetRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(RoleContextKey).(string)
	return role
}
