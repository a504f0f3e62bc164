// Package renew реализует HTTP-обработчик продления записи.
//
// Продление безусловно перезаписывает временные поля независимо от
// текущего статуса записи: срок по умолчанию 30 дней, endDate
// пересчитывается, проставляется renewedAt.
package renew

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

// Handler управляет HTTP-запросами на продление записей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики продления.
type Service interface {
	Renew(ctx context.Context, kind models.Kind, rawID string, req models.DummyRenew) (*models.UpdateResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// renewResponse — форма ответа, которую ожидает дашборд.
type renewResponse struct {
	Success bool                 `json:"success"`
	Result  *models.UpdateResult `json:"result"`
}

// ServeHTTP godoc
// @Summary Продлить запись
// @Description Перезаписывает временные поля записи и проставляет renewedAt.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Идентификатор записи"
// @Param type query string false "Коллекция: single или family" default(single)
// @Param request body models.DummyRenew true "Новые временные поля"
// @Success 200 {object} renewResponse "Результат продления"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /renew-sub/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.renew"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	rawID := chi.URLParam(r, "id")
	kind := models.KindFromQuery(r.URL.Query().Get("type"))

	var req models.DummyRenew
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

	result, err := h.service.Renew(r.Context(), kind, rawID, req)
	if err != nil {
		log.Error("failed to renew subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Renew Failed"))
		return
	}

	log.Info("renewed subscription",
		slog.String("id", rawID), sl.Kind(string(kind)), slog.Int("matched", result.Matched))
	render.JSON(w, r, renewResponse{Success: true, Result: result})
}
