// Package agentread реализует HTTP-обработчик чтения одного агента каталога.
package agentread

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/somlabs/agentstore/internal/http/response"
	"github.com/somlabs/agentstore/internal/lib/sl"
	"github.com/somlabs/agentstore/internal/models"
	"github.com/somlabs/agentstore/internal/storage/repository"
)

// Service описывает интерфейс чтения одного агента.
type Service interface {
	GetAgent(ctx context.Context, id string) (*models.Agent, error)
}

// Handler обрабатывает HTTP-запросы чтения агента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Карточка агента
// @Description Возвращает одного агента каталога по идентификатору.
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Идентификатор агента"
// @Success 200 {object} map[string]any "Агент"
// @Failure 404 {object} response.ErrorResponse "Агент не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /agents/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.agentread"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("agent id is required"))
		return
	}

	agent, err := h.service.GetAgent(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("agent not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("agent not found"))
			return
		}
		log.Error("failed to read agent", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read agent"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"agent": agent,
	}))
}
