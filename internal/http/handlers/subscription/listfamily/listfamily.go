// Package listfamily реализует HTTP-обработчик списка семейных групп.
package listfamily

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

// Handler управляет HTTP-запросами на чтение семейных групп.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения семейных групп.
type Service interface {
	ListFamily(ctx context.Context) ([]models.FamilyGroupView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить семейные группы
// @Description Возвращает список семейных групп со статусами на момент запроса.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.FamilyGroupView "Список семейных групп"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /family-subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.listfamily"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.ListFamily(r.Context())
	if err != nil {
		log.Error("failed to list family groups", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list family groups"))
		return
	}

	log.Info("listed family groups", slog.Int("count", len(result)))
	render.JSON(w, r, result)
}
