package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type visitKey struct{}

// CookieOptions controls the visit cookie.
type CookieOptions struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// VisitID returns the visit id attached by Middleware, or "".
func VisitID(ctx context.Context) string {
	id, _ := ctx.Value(visitKey{}).(string)
	return id
}

// WithVisitID attaches a visit id to the context.
func WithVisitID(ctx context.Context, visitID string) context.Context {
	return context.WithValue(ctx, visitKey{}, visitID)
}

// Middleware makes sure every request carries a visit id, issuing a cookie
// for first-time visitors.
func Middleware(opts CookieOptions) func(http.Handler) http.Handler {
	if opts.Name == "" {
		opts.Name = "mymath_visit"
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultVisitTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visitID := ""
			if c, err := r.Cookie(opts.Name); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					visitID = c.Value
				}
			}
			if visitID == "" {
				visitID = uuid.New().String()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     opts.Name,
				Value:    visitID,
				Path:     "/",
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(opts.TTL.Seconds()),
			})

			next.ServeHTTP(w, r.WithContext(WithVisitID(r.Context(), visitID)))
		})
	}
}
