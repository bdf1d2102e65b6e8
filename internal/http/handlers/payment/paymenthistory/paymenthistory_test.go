package paymenthistory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/somlabs/agentstore/internal/http/middlewarectx"
	"github.com/somlabs/agentstore/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) History(ctx context.Context, userUID string) ([]*models.PaymentHistoryItem, error) {
	args := m.Called(ctx, userUID)
	items, _ := args.Get(0).([]*models.PaymentHistoryItem)
	return items, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestPaymentHistoryHandler_ServeHTTP(t *testing.T) {
	user := &models.AuthUser{UID: "uid-1", Name: "Test User", Email: "user@example.com"}

	t.Run("returns user payments", func(t *testing.T) {
		items := []*models.PaymentHistoryItem{
			{ID: "pay-2", Amount: 16700, Status: "completed", PlanName: "Monthly", TransactionID: "txn_2"},
			{ID: "pay-1", Amount: 9900, Status: "completed", PlanName: "Monthly", TransactionID: "txn_1"},
		}
		service := new(MockService)
		service.On("History", mock.Anything, "uid-1").Return(items, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.AuthUserKey, user))
		w := httptest.NewRecorder()

		New(newNoopLogger(), service).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":2`)
		assert.Contains(t, w.Body.String(), "txn_2")
		service.AssertExpectations(t)
	})

	t.Run("missing user in context", func(t *testing.T) {
		service := new(MockService)

		w := httptest.NewRecorder()
		New(newNoopLogger(), service).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		service.AssertNotCalled(t, "History", mock.Anything, mock.Anything)
	})

	t.Run("storage error", func(t *testing.T) {
		service := new(MockService)
		service.On("History", mock.Anything, "uid-1").
			Return(nil, errors.New("database is down")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.AuthUserKey, user))
		w := httptest.NewRecorder()

		New(newNoopLogger(), service).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"status":"Error","error":"failed to list payments"}`, w.Body.String())
	})
}
