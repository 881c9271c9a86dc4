package httpx

import (
	"context"
	"net/http"
)

// Identity is the verified caller forwarded by the auth gateway. The
// service trusts these headers; token verification happens upstream.
type Identity struct {
	UserID string
	Admin  bool
}

type identityKey struct{}

const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

func Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(headerUserID)
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		id := Identity{UserID: userID, Admin: r.Header.Get(headerUserRole) == "admin"}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok || !id.Admin {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
