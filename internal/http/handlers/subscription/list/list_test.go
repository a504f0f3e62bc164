package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// MockService реализует интерфейс list.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ListAll(ctx context.Context) (*models.AllSubscriptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AllSubscriptions), args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "обе коллекции без обёртки",
			setupMock: func(m *MockService) {
				m.On("ListAll", mock.Anything).Return(&models.AllSubscriptions{
					Single: []models.SubscriptionView{
						{
							Subscription: models.Subscription{ID: "1", Email: "a@example.com"},
							Status:       "Active",
							Remaining:    "29d 0h 0m 0s",
						},
					},
					Family: []models.FamilyGroupView{},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"single":[{"id":"1"`,
		},
		{
			name: "пустые коллекции сериализуются как пустые массивы",
			setupMock: func(m *MockService) {
				m.On("ListAll", mock.Anything).Return(&models.AllSubscriptions{
					Single: []models.SubscriptionView{},
					Family: []models.FamilyGroupView{},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"single":[],"family":[]`,
		},
		{
			name: "ошибка сервиса",
			setupMock: func(m *MockService) {
				m.On("ListAll", mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not list subscriptions"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/all-subscriptions", nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
