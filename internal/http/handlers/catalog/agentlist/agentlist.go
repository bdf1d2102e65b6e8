// Package agentlist реализует HTTP-обработчик списка агентов каталога.
package agentlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/somlabs/agentstore/internal/http/response"
	"github.com/somlabs/agentstore/internal/lib/sl"
	"github.com/somlabs/agentstore/internal/models"
)

// Service описывает интерфейс чтения каталога агентов.
type Service interface {
	ListAgents(ctx context.Context) ([]*models.Agent, error)
	ListAgentsByCategory(ctx context.Context, category string) ([]*models.Agent, error)
}

// Handler обрабатывает HTTP-запросы списка агентов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список агентов
// @Description Возвращает каталог агентов, опционально отфильтрованный по категории.
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param category path string false "Категория агентов"
// @Success 200 {object} map[string]any "Список агентов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /agents [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.agentlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var (
		agents []*models.Agent
		err    error
	)
	if category := chi.URLParam(r, "category"); category != "" {
		agents, err = h.service.ListAgentsByCategory(r.Context(), category)
	} else {
		agents, err = h.service.ListAgents(r.Context())
	}
	if err != nil {
		log.Error("failed to list agents", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list agents"))
		return
	}

	log.Info("agents listed", slog.Int("count", len(agents)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":  len(agents),
		"agents": agents,
	}))
}
