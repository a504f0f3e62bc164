// Package list реализует HTTP-обработчик агрегированного списка подписок.
//
// Handler возвращает обе коллекции с производными полями статуса и
// оставшегося времени, вычисленными на момент запроса. Тело ответа —
// объект {single: [...], family: [...]} без обёртки, его форму ожидает дашборд.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Handler управляет HTTP-запросами на чтение агрегированного списка.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения обеих коллекций.
type Service interface {
	ListAll(ctx context.Context) (*models.AllSubscriptions, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить все подписки
// @Description Возвращает обе коллекции подписок со статусами на момент запроса.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AllSubscriptions "Обе коллекции подписок"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /all-subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscriptions"))
		return
	}

	log.Info("listed subscriptions",
		slog.Int("single", len(result.Single)),
		slog.Int("family", len(result.Family)))
	render.JSON(w, r, result)
}
