package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const DefaultCartCookie = "coldfront_cart"

type CartCookieOptions struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// CartID identifies the anonymous cart of the caller through a cookie. A
// missing or malformed cookie gets a fresh uuid, which is set on the response.
func CartID(opts CartCookieOptions) func(http.Handler) http.Handler {
	name := opts.Name
	if name == "" {
		name = DefaultCartCookie
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 90 * 24 * time.Hour
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(name); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    id,
				Path:     "/",
				MaxAge:   int(maxAge.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), ctxCartID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetCartID(ctx context.Context) string {
	if v := ctx.Value(ctxCartID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
