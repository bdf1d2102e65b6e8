// Package middlewarectx содержит HTTP middleware для проверки JWT токенов
// и ограничения частоты запросов.
//
// AuthMiddleware проверяет наличие и валидность токена в заголовке
// Authorization и в случае успеха добавляет в контекст данные пользователя
// для дальнейшего использования в обработчиках.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/somlabs/agentstore/internal/http/response"
	"github.com/somlabs/agentstore/internal/lib/sl"
	"github.com/somlabs/agentstore/internal/models"
	"github.com/somlabs/agentstore/internal/services/auth"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// AuthUserKey — ключ для аутентифицированного пользователя в контексте.
const AuthUserKey Key = "auth_user"

// Authenticator проверяет токен и возвращает его владельца.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AuthUser, error)
}

// AuthMiddleware возвращает HTTP middleware, который проверяет JWT в
// заголовке Authorization.
//
// Отсутствие токена — 401, невалидный или просроченный токен — 403,
// валидный токен удалённого пользователя — снова 401. Клиент по статусу
// различает "войдите" и "ваш токен испорчен".
func AuthMiddleware(authService Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("access token required"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == "" {
				log.Warn("empty bearer token")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("access token required"))
				return
			}

			user, err := authService.Authenticate(r.Context(), tokenStr)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrInvalidToken):
					log.Warn("invalid or expired token", sl.Err(err))
					render.Status(r, http.StatusForbidden)
					render.JSON(w, r, response.Error("invalid or expired token"))
				case errors.Is(err, auth.ErrUserNotFound):
					log.Warn("token subject no longer exists", sl.Err(err))
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("user not found"))
				default:
					log.Error("failed to authenticate token", sl.Err(err))
					render.Status(r, http.StatusInternalServerError)
					render.JSON(w, r, response.Error("internal error"))
				}
				return
			}

			ctx := context.WithValue(r.Context(), AuthUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext извлекает аутентифицированного пользователя из контекста.
func UserFromContext(ctx context.Context) (*models.AuthUser, bool) {
	user, ok := ctx.Value(AuthUserKey).(*models.AuthUser)
	return user, ok
}
