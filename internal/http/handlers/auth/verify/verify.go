// Package verify реализует HTTP-обработчик проверки действующего токена.
//
// Сам разбор токена выполняет middleware: сюда запрос доходит уже
// с пользователем в контексте, обработчик лишь возвращает его клиенту.
package verify

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/somlabs/agentstore/internal/http/middlewarectx"
	"github.com/somlabs/agentstore/internal/http/response"
)

// Handler обрабатывает HTTP-запросы проверки токена.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Проверка токена
// @Description Возвращает пользователя, которому принадлежит предъявленный токен.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Владелец токена"
// @Failure 401 {object} response.ErrorResponse "Токен отсутствует или пользователь удалён"
// @Failure 403 {object} response.ErrorResponse "Невалидный или просроченный токен"
// @Router /auth/verify [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
	}))
}
