package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/somlabs/agentstore/internal/gateway"
	"github.com/somlabs/agentstore/internal/lib/money"
	"github.com/somlabs/agentstore/internal/models"
	"github.com/somlabs/agentstore/internal/storage/repository"
)

type CatalogReaderMock struct {
	mock.Mock
}

func (m *CatalogReaderMock) FindAgentsByIDs(ctx context.Context, ids []string) ([]*models.Agent, error) {
	args := m.Called(ctx, ids)
	agents, _ := args.Get(0).([]*models.Agent)
	return agents, args.Error(1)
}

func (m *CatalogReaderMock) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	args := m.Called(ctx, id)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

type PaymentLedgerMock struct {
	mock.Mock
}

func (m *PaymentLedgerMock) InsertPayment(ctx context.Context, payment models.Payment) (string, error) {
	args := m.Called(ctx, payment)
	return args.String(0), args.Error(1)
}

func (m *PaymentLedgerMock) ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.PaymentHistoryItem, error) {
	args := m.Called(ctx, userUID)
	items, _ := args.Get(0).([]*models.PaymentHistoryItem)
	return items, args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) NotifyPaymentCompleted(n models.PaymentNotification) error {
	args := m.Called(n)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var testUser = &models.AuthUser{
	UID:   "uid-1",
	Name:  "Test User",
	Email: "user@example.com",
}

func stockAgents() []*models.Agent {
	return []*models.Agent{
		{ID: "a1", Name: "Email Marketing Agent", Price: 2900},
		{ID: "a2", Name: "Social Media Agent", Price: 3900},
	}
}

func monthlyPlan() *models.Plan {
	return &models.Plan{ID: "p1", Name: "Monthly", Price: 9900, Period: "per month"}
}

func validRequest() PurchaseRequest {
	return PurchaseRequest{
		AgentIDs: []string{"a1", "a2"},
		PlanID:   "p1",
		Total:    16700, // 29.00 + 39.00 + 99.00
		Card: models.CardDetails{
			CardNumber:     "4242424242424242",
			ExpiryDate:     "12/30",
			CVV:            "123",
			CardholderName: "Test User",
		},
	}
}

func TestService_Authorize_Success(t *testing.T) {
	catalog := new(CatalogReaderMock)
	catalog.On("FindAgentsByIDs", mock.Anything, []string{"a1", "a2"}).
		Return(stockAgents(), nil).Once()
	catalog.On("GetPlan", mock.Anything, "p1").Return(monthlyPlan(), nil).Once()

	ledger := new(PaymentLedgerMock)
	ledger.On("InsertPayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return p.UserUID == "uid-1" &&
			p.PlanID == "p1" &&
			p.Amount == 16700 &&
			p.Status == models.PaymentStatusCompleted &&
			p.PaymentMethod == "card" &&
			p.TransactionID != ""
	})).Return("payment-1", nil).Once()

	notifier := new(NotifierMock)
	notifier.On("NotifyPaymentCompleted", mock.MatchedBy(func(n models.PaymentNotification) bool {
		return n.UserEmail == "user@example.com" &&
			n.PlanName == "Monthly" &&
			n.Amount == 16700 &&
			len(n.AgentNames) == 2
	})).Return(nil).Once()

	svc := NewService(catalog, ledger, gateway.NewSimulated(0), notifier, newNoopLogger())

	receipt, err := svc.Authorize(context.Background(), testUser, validRequest())

	require.NoError(t, err)
	assert.Equal(t, "167.00", receipt.Amount.String())
	assert.NotEmpty(t, receipt.TransactionID)
	catalog.AssertExpectations(t)
	ledger.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestService_Authorize_DuplicateAgentIDsCollapse(t *testing.T) {
	catalog := new(CatalogReaderMock)
	// Дубликаты схлопываются до похода в каталог.
	catalog.On("FindAgentsByIDs", mock.Anything, []string{"a1", "a2"}).
		Return(stockAgents(), nil).Once()
	catalog.On("GetPlan", mock.Anything, "p1").Return(monthlyPlan(), nil).Once()

	ledger := new(PaymentLedgerMock)
	ledger.On("InsertPayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return len(p.AgentIDs) == 2 && p.Amount == 16700
	})).Return("payment-1", nil).Once()

	svc := NewService(catalog, ledger, gateway.NewSimulated(0), nil, newNoopLogger())

	req := validRequest()
	req.AgentIDs = []string{"a1", "a2", "a1", "a2", "a1"}

	receipt, err := svc.Authorize(context.Background(), testUser, req)
	require.NoError(t, err)
	assert.Equal(t, "167.00", receipt.Amount.String())
}

func TestService_Authorize_UnknownAgent(t *testing.T) {
	catalog := new(CatalogReaderMock)
	// Каталог вернул одного агента из двух запрошенных: частичная покупка
	// запрещена даже при валидных остальных идентификаторах.
	catalog.On("FindAgentsByIDs", mock.Anything, []string{"a1", "ghost"}).
		Return([]*models.Agent{stockAgents()[0]}, nil).Once()

	ledger := new(PaymentLedgerMock)
	svc := NewService(catalog, ledger, gateway.NewSimulated(0), nil, newNoopLogger())

	req := validRequest()
	req.AgentIDs = []string{"a1", "ghost"}

	_, err := svc.Authorize(context.Background(), testUser, req)

	assert.ErrorIs(t, err, ErrUnknownAgent)
	ledger.AssertNotCalled(t, "InsertPayment", mock.Anything, mock.Anything)
}

func TestService_Authorize_UnknownPlan(t *testing.T) {
	catalog := new(CatalogReaderMock)
	catalog.On("FindAgentsByIDs", mock.Anything, mock.Anything).
		Return(stockAgents(), nil).Once()
	catalog.On("GetPlan", mock.Anything, "p1").
		Return(nil, repository.ErrNotFound).Once()

	ledger := new(PaymentLedgerMock)
	svc := NewService(catalog, ledger, gateway.NewSimulated(0), nil, newNoopLogger())

	_, err := svc.Authorize(context.Background(), testUser, validRequest())

	assert.ErrorIs(t, err, ErrUnknownPlan)
	ledger.AssertNotCalled(t, "InsertPayment", mock.Anything, mock.Anything)
}

func TestService_Authorize_AmountMismatch(t *testing.T) {
	tests := []struct {
		name         string
		clientCents  int64
		wantMismatch bool
	}{
		{name: "exact", clientCents: 16700, wantMismatch: false},
		{name: "one cent under is tolerated", clientCents: 16699, wantMismatch: false},
		{name: "one cent over is tolerated", clientCents: 16701, wantMismatch: false},
		{name: "two cents under", clientCents: 16698, wantMismatch: true},
		{name: "underreported", clientCents: 9900, wantMismatch: true},
		{name: "zero", clientCents: 0, wantMismatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(CatalogReaderMock)
			catalog.On("FindAgentsByIDs", mock.Anything, mock.Anything).
				Return(stockAgents(), nil).Once()
			catalog.On("GetPlan", mock.Anything, "p1").Return(monthlyPlan(), nil).Once()

			ledger := new(PaymentLedgerMock)
			if !tt.wantMismatch {
				ledger.On("InsertPayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
					// В журнал попадает серверная сумма, не клиентская.
					return p.Amount == 16700
				})).Return("payment-1", nil).Once()
			}

			svc := NewService(catalog, ledger, gateway.NewSimulated(0), nil, newNoopLogger())

			req := validRequest()
			req.Total = money.Cents(tt.clientCents)

			_, err := svc.Authorize(context.Background(), testUser, req)

			if tt.wantMismatch {
				assert.ErrorIs(t, err, ErrAmountMismatch)
				ledger.AssertNotCalled(t, "InsertPayment", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				ledger.AssertExpectations(t)
			}
		})
	}
}

func TestService_Authorize_InvalidInstrument(t *testing.T) {
	catalog := new(CatalogReaderMock)
	catalog.On("FindAgentsByIDs", mock.Anything, mock.Anything).
		Return(stockAgents(), nil).Once()
	catalog.On("GetPlan", mock.Anything, "p1").Return(monthlyPlan(), nil).Once()

	ledger := new(PaymentLedgerMock)
	svc := NewService(catalog, ledger, gateway.NewSimulated(0), nil, newNoopLogger())

	req := validRequest()
	req.Card.CardNumber = "1234"

	_, err := svc.Authorize(context.Background(), testUser, req)

	assert.ErrorIs(t, err, gateway.ErrInvalidInstrument)
	ledger.AssertNotCalled(t, "InsertPayment", mock.Anything, mock.Anything)
}

func TestService_Authorize_LedgerWriteFailed(t *testing.T) {
	catalog := new(CatalogReaderMock)
	catalog.On("FindAgentsByIDs", mock.Anything, mock.Anything).
		Return(stockAgents(), nil).Once()
	catalog.On("GetPlan", mock.Anything, "p1").Return(monthlyPlan(), nil).Once()

	ledger := new(PaymentLedgerMock)
	ledger.On("InsertPayment", mock.Anything, mock.Anything).
		Return("", errors.New("connection reset")).Once()

	notifier := new(NotifierMock)
	svc := NewService(catalog, ledger, gateway.NewSimulated(0), notifier, newNoopLogger())

	_, err := svc.Authorize(context.Background(), testUser, validRequest())

	// Списание прошло, записи нет: различимая ошибка, уведомление не шлём.
	assert.ErrorIs(t, err, ErrLedgerWriteFailed)
	notifier.AssertNotCalled(t, "NotifyPaymentCompleted", mock.Anything)
}

func TestService_Authorize_NotifierFailureDoesNotAffectOutcome(t *testing.T) {
	catalog := new(CatalogReaderMock)
	catalog.On("FindAgentsByIDs", mock.Anything, mock.Anything).
		Return(stockAgents(), nil).Once()
	catalog.On("GetPlan", mock.Anything, "p1").Return(monthlyPlan(), nil).Once()

	ledger := new(PaymentLedgerMock)
	ledger.On("InsertPayment", mock.Anything, mock.Anything).
		Return("payment-1", nil).Once()

	notifier := new(NotifierMock)
	notifier.On("NotifyPaymentCompleted", mock.Anything).
		Return(errors.New("broker unavailable")).Once()

	svc := NewService(catalog, ledger, gateway.NewSimulated(0), notifier, newNoopLogger())

	receipt, err := svc.Authorize(context.Background(), testUser, validRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, receipt.TransactionID)
}

func TestService_Authorize_RepeatedPurchasesAreIndependent(t *testing.T) {
	catalog := new(CatalogReaderMock)
	catalog.On("FindAgentsByIDs", mock.Anything, mock.Anything).
		Return(stockAgents(), nil).Twice()
	catalog.On("GetPlan", mock.Anything, "p1").Return(monthlyPlan(), nil).Twice()

	var txnIDs []string
	ledger := new(PaymentLedgerMock)
	ledger.On("InsertPayment", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(models.Payment)
			txnIDs = append(txnIDs, p.TransactionID)
		}).
		Return("payment-x", nil).Twice()

	svc := NewService(catalog, ledger, gateway.NewSimulated(0), nil, newNoopLogger())

	first, err := svc.Authorize(context.Background(), testUser, validRequest())
	require.NoError(t, err)
	second, err := svc.Authorize(context.Background(), testUser, validRequest())
	require.NoError(t, err)

	// Дедупликации нет: два независимых платежа с разными транзакциями.
	assert.NotEqual(t, first.TransactionID, second.TransactionID)
	require.Len(t, txnIDs, 2)
	assert.NotEqual(t, txnIDs[0], txnIDs[1])
}

func TestService_History(t *testing.T) {
	items := []*models.PaymentHistoryItem{
		{ID: "pay-2", Amount: 16700, Status: "completed", PlanName: "Monthly"},
		{ID: "pay-1", Amount: 9900, Status: "completed", PlanName: "Monthly"},
	}

	ledger := new(PaymentLedgerMock)
	ledger.On("ListPaymentsByUser", mock.Anything, "uid-1").Return(items, nil).Once()

	svc := NewService(new(CatalogReaderMock), ledger, gateway.NewSimulated(0), nil, newNoopLogger())

	got, err := svc.History(context.Background(), "uid-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "pay-2", got[0].ID)
}
