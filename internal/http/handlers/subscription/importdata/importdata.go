// Package importdata реализует HTTP-обработчик пакетного импорта записей.
//
// Тело запроса принимается как сырой JSON: поддерживаются и плоский
// массив со смешанными записями, и объект с раздельными списками.
// Разбор и нормализация происходят в сервисе импорта.
package importdata

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/importer"
)

// Handler управляет HTTP-запросами пакетного импорта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики импорта.
type Service interface {
	Import(ctx context.Context, payload []byte) (*importer.Result, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// importResponse — форма ответа, которую ожидает дашборд.
type importResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	SingleCount int    `json:"singleCount"`
	FamilyCount int    `json:"familyCount"`
}

// ServeHTTP godoc
// @Summary Импортировать записи
// @Description Принимает массив или объект с записями, классифицирует и сохраняет их пакетно.
// @Tags Import
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object true "Массив записей или объект со списками single/family"
// @Success 200 {object} importResponse "Количество импортированных записей"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ни одной валидной записи"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /import-data [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.importdata"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	result, err := h.service.Import(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrNoValidRecords):
			log.Error("no valid records in payload", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("No valid records found in import data"))
		case errors.Is(err, importer.ErrInvalidPayload):
			log.Error("failed to parse import payload", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid import payload"))
		default:
			log.Error("failed to import records", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Import Failed"))
		}
		return
	}

	log.Info("imported records",
		slog.Int("single", result.SingleCount), slog.Int("family", result.FamilyCount))
	render.JSON(w, r, importResponse{
		Success:     true,
		Message:     "Import Successful",
		SingleCount: result.SingleCount,
		FamilyCount: result.FamilyCount,
	})
}
