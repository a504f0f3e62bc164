// Package remove реализует HTTP-обработчик удаления записи.
//
// Удаление немедленное и окончательное, без мягкого удаления.
// Несуществующий идентификатор даёт нулевой результат с HTTP 200.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Handler управляет HTTP-запросами на удаление записей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления.
type Service interface {
	Remove(ctx context.Context, kind models.Kind, rawID string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить запись
// @Description Удаляет запись выбранной коллекции по идентификатору.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Идентификатор записи"
// @Param type query string false "Коллекция: single или family" default(single)
// @Success 200 {object} response.Response "Количество удалённых строк"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /delete-sub/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	rawID := chi.URLParam(r, "id")
	kind := models.KindFromQuery(r.URL.Query().Get("type"))

	deleted, err := h.service.Remove(r.Context(), kind, rawID)
	if err != nil {
		log.Error("failed to delete subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete subscription"))
		return
	}

	log.Info("deleted subscription",
		slog.String("id", rawID), sl.Kind(string(kind)), slog.Int("deleted", deleted))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted": deleted,
	}))
}
