package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// MockService реализует интерфейс remove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Remove(ctx context.Context, kind models.Kind, rawID string) (int, error) {
	args := m.Called(ctx, kind, rawID)
	return args.Int(0), args.Error(1)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	const id = "8b7d2e9a-3f7b-4c7a-9a3e-2f1d8c6b5a40"

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное удаление",
			url:  "/delete-sub/" + id,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, models.KindSingle, id).Return(1, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"deleted":1`,
		},
		{
			name: "удаление семейной группы",
			url:  "/delete-sub/" + id + "?type=family",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, models.KindFamily, id).Return(1, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"deleted":1`,
		},
		{
			name: "несуществующий id даёт ноль удалённых",
			url:  "/delete-sub/" + id,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, models.KindSingle, id).Return(0, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"deleted":0`,
		},
		{
			name: "ошибка сервиса",
			url:  "/delete-sub/" + id,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, models.KindSingle, id).Return(0, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not delete subscription"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
