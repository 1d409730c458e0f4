package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/userservice"
)

const (
	msgMissingToken = "отсутствует токен авторизации"
	msgInvalidToken = "недействительный токен авторизации"
	msgAuthFailed   = "сервис авторизации недоступен"
)

type actorKey struct{}

// Authenticator проверка bearer токена
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*userservice.Identity, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth проверяет Authorization: Bearer <token> и кладёт инициатора в контекст.
// Роль system через токен получить нельзя.
func Auth(auth Authenticator, log Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				log.Warn("%s %s - Missing bearer token", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}

			identity, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, userservice.ErrUnauthorized) {
					log.Warn("%s %s - Invalid token", r.Method, r.URL.Path)
					handlers.RespondUnauthorized(w, msgInvalidToken)
					return
				}
				log.Error("%s %s - Authentication failed: %v", r.Method, r.URL.Path, err)
				handlers.RespondError(w, http.StatusInternalServerError, handlers.CodeInternal, msgAuthFailed)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), toActor(identity))))
		})
	}
}

// WithActor кладёт инициатора в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor инициатор запроса, установленный Auth
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

func toActor(identity *userservice.Identity) domain.Actor {
	role := domain.RoleClient
	if strings.EqualFold(identity.Role, string(domain.RoleAdmin)) {
		role = domain.RoleAdmin
	}
	return domain.Actor{UserID: identity.UserID, Role: role}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
