// Package paymentcreate реализует HTTP-обработчик проведения покупки.
//
// Запрос повторяет форму клиента витрины: список агентов, тариф,
// заявленная сумма и данные карты. Ответ — теговый результат попытки:
// completed с идентификатором транзакции либо failed с причиной отказа.
package paymentcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/somlabs/agentstore/internal/gateway"
	"github.com/somlabs/agentstore/internal/http/middlewarectx"
	"github.com/somlabs/agentstore/internal/http/response"
	"github.com/somlabs/agentstore/internal/lib/money"
	"github.com/somlabs/agentstore/internal/lib/sl"
	"github.com/somlabs/agentstore/internal/models"
	"github.com/somlabs/agentstore/internal/services/payment"
)

// Request — входные данные покупки.
//
// Идентификаторы агентов и тарифа проверяются на формат uuid прямо
// на границе: некорректный идентификатор отклоняется валидацией,
// а не запросом к базе. Нулевая сумма проходит валидацию и
// отклоняется дальше как расхождение суммы.
type Request struct {
	AgentIDs []string           `json:"agents" validate:"required,min=1,dive,uuid"`
	PlanID   string             `json:"plan" validate:"required,uuid"`
	Total    money.Cents        `json:"total" validate:"min=0"`
	Card     models.CardDetails `json:"card_details" validate:"required"`
}

// Result — исход попытки покупки.
type Result struct {
	Status        string      `json:"status"`
	TransactionID string      `json:"transaction_id,omitempty"`
	Amount        money.Cents `json:"amount,omitempty"`
	Reason        string      `json:"reason,omitempty"`
}

// Service описывает интерфейс проведения платежа.
type Service interface {
	Authorize(ctx context.Context, user *models.AuthUser, req payment.PurchaseRequest) (*payment.Receipt, error)
}

// Handler обрабатывает HTTP-запросы проведения покупки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Проведение покупки
// @Description Пересчитывает сумму по каталогу, проводит списание и записывает платёж.
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Состав покупки и данные карты"
// @Success 200 {object} Result "Платёж проведён"
// @Failure 400 {object} Result "Покупка отклонена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} Result "Платёж прошёл, но запись не сохранена"
// @Router /payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentcreate"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	receipt, err := h.service.Authorize(r.Context(), user, payment.PurchaseRequest{
		AgentIDs: req.AgentIDs,
		PlanID:   req.PlanID,
		Total:    req.Total,
		Card:     req.Card,
	})
	if err != nil {
		h.renderFailure(w, r, log, err)
		return
	}

	log.Info("payment completed",
		slog.String("uid", user.UID),
		slog.String("transaction_id", receipt.TransactionID))
	render.JSON(w, r, Result{
		Status:        "completed",
		TransactionID: receipt.TransactionID,
		Amount:        receipt.Amount,
	})
}

func (h *Handler) renderFailure(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, payment.ErrUnknownAgent):
		log.Warn("purchase rejected", slog.String("reason", "unknown_agent"))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Result{Status: "failed", Reason: "unknown_agent"})
	case errors.Is(err, payment.ErrUnknownPlan):
		log.Warn("purchase rejected", slog.String("reason", "unknown_plan"))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Result{Status: "failed", Reason: "unknown_plan"})
	case errors.Is(err, payment.ErrAmountMismatch):
		log.Warn("purchase rejected", slog.String("reason", "amount_mismatch"))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Result{Status: "failed", Reason: "amount_mismatch"})
	case errors.Is(err, gateway.ErrInvalidInstrument):
		log.Warn("purchase rejected", slog.String("reason", "invalid_instrument"))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Result{Status: "failed", Reason: "invalid_instrument"})
	case errors.Is(err, payment.ErrLedgerWriteFailed):
		// Деньги списаны, записи нет: случай для сверки, не для ретрая.
		log.Error("ledger write failed after successful charge", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, Result{Status: "failed", Reason: "ledger_write_failed"})
	default:
		log.Error("payment failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, Result{Status: "failed", Reason: "internal_error"})
	}
}
