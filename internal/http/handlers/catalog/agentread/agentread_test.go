package agentread

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/somlabs/agentstore/internal/models"
	"github.com/somlabs/agentstore/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	args := m.Called(ctx, id)
	agent, _ := args.Get(0).(*models.Agent)
	return agent, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAgentReadHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		agentID        string
		setupMocks     func(*MockService)
		expectedStatus int
		contains       string
	}{
		{
			name:    "success",
			agentID: "a1",
			setupMocks: func(s *MockService) {
				s.On("GetAgent", mock.Anything, "a1").
					Return(&models.Agent{ID: "a1", Name: "Email Marketing Agent", Price: 2900}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			contains:       "Email Marketing Agent",
		},
		{
			name:    "not found",
			agentID: "ghost",
			setupMocks: func(s *MockService) {
				s.On("GetAgent", mock.Anything, "ghost").
					Return(nil, repository.ErrNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			contains:       "agent not found",
		},
		{
			name:    "storage error",
			agentID: "a1",
			setupMocks: func(s *MockService) {
				s.On("GetAgent", mock.Anything, "a1").
					Return(nil, errors.New("database is down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			contains:       "failed to read agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.setupMocks(service)

			r := chi.NewRouter()
			r.Get("/api/v1/agents/{id}", New(newNoopLogger(), service).ServeHTTP)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/agents/"+tt.agentID, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
			service.AssertExpectations(t)
		})
	}
}
