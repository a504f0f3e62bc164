// Package health реализует проверку живости сервера.
package health

import (
	"log/slog"
	"net/http"
)

// Handler отвечает строкой статуса без аутентификации.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler проверки живости.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Description Возвращает строку статуса сервера.
// @Tags Health
// @Produce plain
// @Success 200 {string} string "Subscription Server is running..."
// @Router / [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Subscription Server is running..."))
}
