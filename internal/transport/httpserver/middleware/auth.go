package middleware

import (
	"context"
	"net/http"
	"strings"

	"reserva-go/internal/domain/staff"
	"reserva-go/pkg/logger"
)

type contextKey int

const actorKey contextKey = iota

// Actor is the authenticated staff member attached to the request context.
type Actor struct {
	ID   string
	Role staff.Role
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	ParseToken(token string) (*staff.Claims, error)
}

type StaffAuth struct {
	parser TokenParser
	log    logger.Logger
}

func NewStaffAuth(parser TokenParser, log logger.Logger) *StaffAuth {
	return &StaffAuth{parser: parser, log: log}
}

func (a *StaffAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "missing_token", "authorization bearer token required")
			return
		}

		claims, err := a.parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token", "token is invalid or expired")
			return
		}

		actor := Actor{ID: claims.Subject, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireRole gates a subtree to one or more staff roles. It assumes the
// auth middleware already ran.
func RequireRole(roles ...staff.Role) func(http.Handler) http.Handler {
	allowed := make(map[staff.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing_token", "authorization bearer token required")
				return
			}
			if _, ok := allowed[actor.Role]; !ok {
				writeError(w, http.StatusForbidden, "forbidden", "insufficient role for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
