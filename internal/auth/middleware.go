package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type userKey struct{}

func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func UserFrom(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey{}).(domain.User)
	return user, ok
}

// Authenticator resolves the bearer token to a stored user. A token for a
// user that no longer exists is rejected like a bad token.
func Authenticator(issuer *TokenIssuer, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w)
				return
			}
			email, err := issuer.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				unauthorized(w)
				return
			}
			user, err := users.GetUserByEmail(r.Context(), email)
			if err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRoles must run after Authenticator.
func RequireRoles(roles ...domain.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				writeDetail(w, http.StatusForbidden, "The user does not have enough privileges for this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var (
	AllAuthenticated  = []domain.UserRole{domain.RoleAdmin, domain.RoleManager, domain.RoleMember}
	ManagersAndAdmins = []domain.UserRole{domain.RoleAdmin, domain.RoleManager}
	AdminsOnly        = []domain.UserRole{domain.RoleAdmin}
)

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, ErrInvalidToken.Error())
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"detail": detail})
}
