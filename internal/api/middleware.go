package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Actor пользователь, от имени которого выполняется запрос
type Actor struct {
	ID   int64
	Role model.ActorRole
}

type actorKey struct{}

// Auth читает пользователя из заголовков X-User-ID и X-User-Role.
// Аутентификация выполняется снаружи (бот или шлюз).
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		role, err := model.ParseActorRole(r.Header.Get(HeaderUserRole))
		if err != nil {
			respondError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey{}, Actor{ID: id, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFrom достаёт пользователя, положенного Auth
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
