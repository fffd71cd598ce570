package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"go-api-template/internal/model"
	"go-api-template/internal/token"
)

type accessVerifier interface {
	VerifyAccess(tokenString string) *token.Claims
}

type profileLoader interface {
	Profile(ctx context.Context, userID int64) (model.PublicUser, error)
}

type contextKey string

const authUserContextKey contextKey = "auth_user"

// AuthMiddleware gates routes behind a bearer access token. Every failure
// mode (missing header, malformed header, bad token, vanished user) yields
// the same 401 so callers cannot probe which check failed.
type AuthMiddleware struct {
	codec accessVerifier
	users profileLoader
}

func NewAuthMiddleware(codec accessVerifier, users profileLoader) *AuthMiddleware {
	return &AuthMiddleware{codec: codec, users: users}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeUnauthorized(w)
			return
		}

		raw, ok := token.ExtractBearer(header)
		if !ok {
			writeUnauthorized(w)
			return
		}

		claims := m.codec.VerifyAccess(raw)
		if claims == nil {
			writeUnauthorized(w)
			return
		}

		user, err := m.users.Profile(r.Context(), claims.ID)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), authUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated, password-stripped user attached
// by RequireAuth.
func UserFromContext(ctx context.Context) (model.PublicUser, bool) {
	user, ok := ctx.Value(authUserContextKey).(model.PublicUser)
	return user, ok
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Message: "Unauthorized"})
}
