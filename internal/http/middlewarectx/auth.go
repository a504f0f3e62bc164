// Package middlewarectx содержит HTTP middleware приложения.
//
// AuthMiddleware сравнивает заголовок Authorization со статическим общим
// секретом. Это не токен и не учётные данные: нет срока действия, нет
// идентичности пользователя, нет подписи. Любое несовпадение даёт
// HTTP 401 Unauthorized, и обработчик запроса не вызывается.
package middlewarectx

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
)

// AuthMiddleware возвращает HTTP middleware, который проверяет общий секрет
// в заголовке Authorization. Сравнение выполняется за постоянное время.
func AuthMiddleware(secret string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthMiddleware"

			authHeader := r.Header.Get("Authorization")
			if subtle.ConstantTimeCompare([]byte(authHeader), []byte(secret)) != 1 {
				log.Error("unauthorized request",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("Unauthorized access! Link knowing is not enough."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
