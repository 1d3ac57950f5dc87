package middleware

import (
	"net/http"

	"github.com/Settj76/ecom/internal/auth"
	"github.com/Settj76/ecom/internal/pocketbase"

	"go.uber.org/zap"
)

type Middleware struct {
	Sessions *auth.Sessions
	Logger   *zap.Logger
	// Forbidden renders the page shown to signed-in users lacking the admin role.
	Forbidden http.Handler
}

func NewMiddleware(sessions *auth.Sessions, logger *zap.Logger) *Middleware {
	return &Middleware{
		Sessions: sessions,
		Logger:   logger,
		Forbidden: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Forbidden", http.StatusForbidden)
		}),
	}
}

// Identify loads the session user into the request context and forwards its
// backend token on every backend call made with that context.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := m.Sessions.Identity(r); id != nil {
			ctx := auth.WithIdentity(r.Context(), id)
			ctx = pocketbase.WithToken(ctx, id.Token)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin lets only users with the admin role through.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := auth.FromContext(r.Context())
		if id == nil {
			redirectToLogin(w, r)
			return
		}
		if !id.IsAdmin() {
			m.Logger.Warn("admin access denied", zap.String("user_id", id.UserID), zap.String("path", r.URL.Path))
			m.Forbidden.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		// For HTMX requests, return a redirect header instead of HTTP redirect
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
