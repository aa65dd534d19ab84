package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shubham-1706-g/Class2Canteen/internal/entities"
	"github.com/shubham-1706-g/Class2Canteen/pkg/utils"
)

type userKey struct{}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (entities.User, error)
}

// Auth requires a valid bearer token and puts the resolved user into the
// request context.
func Auth(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				utils.WriteError(w, "authorization required", http.StatusUnauthorized)
				return
			}

			user, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				utils.WriteError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOwner rejects requests whose authenticated user is not a shop
// owner. Must run after Auth.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || user.Role != entities.RoleOwner {
			utils.WriteError(w, "owner access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserFromContext(ctx context.Context) (entities.User, bool) {
	user, ok := ctx.Value(userKey{}).(entities.User)
	return user, ok
}
