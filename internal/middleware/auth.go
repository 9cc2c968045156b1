package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/homedash/internal/auth"
	"github.com/dukerupert/homedash/internal/model"
)

// SessionSource reports the logged in user. *home.Home satisfies it.
type SessionSource interface {
	ActiveUser() (model.User, bool)
}

// RequireSession rejects requests while nobody is logged in and populates
// the request context with the session otherwise. API callers get a JSON 401, browsers are sent back
// to the dashboard page, which shows the login form.
func RequireSession(src SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := src.ActiveUser()
			if !ok {
				rejectNoSession(w, r)
				return
			}

			ctx := auth.NewContext(r.Context(), auth.SessionFor(u))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectNoSession(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not logged in.", "kind": "no_session"})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
