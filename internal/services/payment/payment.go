// Package payment реализует серверную авторизацию платежа.
//
// Сервис не доверяет присланной клиентом сумме: истинная цена покупки
// пересчитывается из каталога, расхождение отклоняет платёж. Запись
// в журнал появляется только для разрешённой попытки — либо completed
// после успешного списания, либо вообще ничего.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/somlabs/agentstore/internal/gateway"
	"github.com/somlabs/agentstore/internal/lib/money"
	"github.com/somlabs/agentstore/internal/lib/sl"
	"github.com/somlabs/agentstore/internal/models"
	"github.com/somlabs/agentstore/internal/storage/repository"
)

// Ошибки авторизации платежа. Первые четыре — отклонение без записи
// в журнал; ErrLedgerWriteFailed означает, что списание прошло,
// а запись не легла — это сигнал для сверки, не обычный отказ.
var (
	ErrUnknownAgent      = errors.New("one or more agents not found")
	ErrUnknownPlan       = errors.New("pricing plan not found")
	ErrAmountMismatch    = errors.New("payment amount mismatch")
	ErrLedgerWriteFailed = errors.New("payment record write failed after charge")
)

// Допустимое расхождение присланной и вычисленной суммы: один цент,
// чтобы поглотить разницу округления на стороне клиента.
const amountTolerance money.Cents = 1

// PurchaseRequest — одна попытка покупки. Живёт только в рамках запроса.
type PurchaseRequest struct {
	AgentIDs []string
	PlanID   string
	Total    money.Cents // Сумма, заявленная клиентом
	Card     models.CardDetails
}

// Receipt — результат разрешённого платежа.
type Receipt struct {
	Amount        money.Cents
	TransactionID string
}

// CatalogReader описывает чтение цен из каталога.
type CatalogReader interface {
	FindAgentsByIDs(ctx context.Context, ids []string) ([]*models.Agent, error)
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
}

// PaymentLedger описывает журнал платежей.
type PaymentLedger interface {
	InsertPayment(ctx context.Context, payment models.Payment) (string, error)
	ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.PaymentHistoryItem, error)
}

// Notifier отправляет административное уведомление о платеже.
/// Вызов строго best-effort: его ошибка никогда не меняет исход платежа.
type Notifier interface {
	NotifyPaymentCompleted(notification models.PaymentNotification) error
}

// Service проводит и записывает платежи.
type Service struct {
	catalog  CatalogReader
	ledger   PaymentLedger
	gateway  gateway.Charger
	notifier Notifier
	log      *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(catalog CatalogReader, ledger PaymentLedger, gw gateway.Charger, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		catalog:  catalog,
		ledger:   ledger,
		gateway:  gw,
		notifier: notifier,
		log:      log,
	}
}

// Authorize проверяет и проводит одну попытку покупки.
//
// Идентификатор пользователя берётся только из разрешённого токена,
// никогда из тела запроса. Повторная отправка того же запроса проводит
// второй платёж: ключа идемпотентности в контракте нет.
func (s *Service) Authorize(ctx context.Context, user *models.AuthUser, req PurchaseRequest) (*Receipt, error) {
	const op = "payment.Authorize"

	distinctIDs := dedupe(req.AgentIDs)

	agents, err := s.catalog.FindAgentsByIDs(ctx, distinctIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(agents) != len(distinctIDs) {
		return nil, ErrUnknownAgent
	}

	plan, err := s.catalog.GetPlan(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownPlan
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverTotal := plan.Price
	for _, agent := range agents {
		serverTotal += agent.Price
	}

	if money.Diff(serverTotal, req.Total) > amountTolerance {
		s.log.Warn("payment amount mismatch",
			slog.String("user_uid", user.UID),
			slog.String("server_total", serverTotal.String()),
			slog.String("client_total", req.Total.String()))
		return nil, ErrAmountMismatch
	}

	txnID, err := s.gateway.Charge(ctx, req.Card, serverTotal)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidInstrument) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.ledger.InsertPayment(ctx, models.Payment{
		UserUID:       user.UID,
		PlanID:        plan.ID,
		AgentIDs:      distinctIDs,
		Amount:        serverTotal,
		Status:        models.PaymentStatusCompleted,
		PaymentMethod: "card",
		TransactionID: txnID,
	})
	if err != nil {
		// Деньги списаны, записи нет: отдаём различимую ошибку для сверки.
		s.log.Error("ledger write failed after successful charge",
			slog.String("user_uid", user.UID),
			slog.String("transaction_id", txnID),
			sl.Err(err))
		return nil, fmt.Errorf("%s: transaction %s: %w", op, txnID, ErrLedgerWriteFailed)
	}

	s.notify(user, agents, plan, serverTotal, txnID)

	return &Receipt{Amount: serverTotal, TransactionID: txnID}, nil
}

// History возвращает платежи пользователя, новые сверху.
func (s *Service) History(ctx context.Context, userUID string) ([]*models.PaymentHistoryItem, error) {
	const op = "payment.History"
	items, err := s.ledger.ListPaymentsByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func (s *Service) notify(user *models.AuthUser, agents []*models.Agent, plan *models.Plan, amount money.Cents, txnID string) {
	if s.notifier == nil {
		return
	}
	agentNames := make([]string, 0, len(agents))
	for _, agent := range agents {
		agentNames = append(agentNames, agent.Name)
	}
	err := s.notifier.NotifyPaymentCompleted(models.PaymentNotification{
		UserName:      user.Name,
		UserEmail:     user.Email,
		AgentNames:    agentNames,
		PlanName:      plan.Name,
		Amount:        amount,
		TransactionID: txnID,
	})
	if err != nil {
		s.log.Error("failed to dispatch payment notification",
			slog.String("transaction_id", txnID), sl.Err(err))
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
