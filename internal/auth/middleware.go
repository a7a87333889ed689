package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/mymath-exams/internal/auth/jwt"
	httperrors "github.com/gokatarajesh/mymath-exams/pkg/http/errors"
)

type claimsKey struct{}

// TokenValidator checks bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

// AuthMiddleware validates bearer tokens and injects claims into the request
// context. Requests without a token pass through anonymously.
func AuthMiddleware(validator TokenValidator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid authorization header")
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				logger.Warn().Err(err).Msg("token validation failed")
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAuth ensures the request is authenticated.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r.Context()) {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithClaims attaches validated claims to ctx.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims attached by AuthMiddleware.
func ClaimsFrom(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*jwt.Claims)
	return claims, ok && claims != nil
}

// IsAuthenticated reports whether the request carried a valid token.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := ClaimsFrom(ctx)
	return ok
}

// CurrentUserID returns the authenticated user, or uuid.Nil.
func CurrentUserID(ctx context.Context) uuid.UUID {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return uuid.Nil
	}
	return claims.UserID
}

// ContextIdentity answers identity questions from the request context.
type ContextIdentity struct{}

func (ContextIdentity) IsAuthenticated(ctx context.Context) bool    { return IsAuthenticated(ctx) }
func (ContextIdentity) CurrentUserID(ctx context.Context) uuid.UUID { return CurrentUserID(ctx) }
