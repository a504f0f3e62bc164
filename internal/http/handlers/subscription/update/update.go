// Package update реализует HTTP-обработчик частичного обновления записи.
//
// Коллекция выбирается query-параметром type, идентификатор приходит в пути.
// Обновление идемпотентно: несуществующий или невалидный идентификатор
// даёт нулевой результат с HTTP 200, а не ошибку.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Handler управляет HTTP-запросами на частичное обновление записей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики частичного обновления.
type Service interface {
	Update(ctx context.Context, kind models.Kind, rawID string, req models.DummyUpdate) (*models.UpdateResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить запись
// @Description Частично обновляет запись выбранной коллекции. При изменении временных полей endDate пересчитывается.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Идентификатор записи"
// @Param type query string false "Коллекция: single или family" default(single)
// @Param request body models.DummyUpdate true "Изменяемые поля"
// @Success 200 {object} response.Response "Количество совпавших и изменённых строк"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /update-sub/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	rawID := chi.URLParam(r, "id")
	kind := models.KindFromQuery(r.URL.Query().Get("type"))

	var req models.DummyUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
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

	result, err := h.service.Update(r.Context(), kind, rawID, req)
	if err != nil {
		log.Error("failed to update subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Update Failed"))
		return
	}

	log.Info("updated subscription",
		slog.String("id", rawID), sl.Kind(string(kind)), slog.Int("matched", result.Matched))
	render.JSON(w, r, response.OKWithData(result))
}
