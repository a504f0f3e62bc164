// Package subscriptiontracker предоставляет маршруты для основного приложения.
package subscriptiontracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/addfamily"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/addsingle"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/importdata"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/listfamily"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/renew"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/importer"
	subservice "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, subscriptionService *subservice.SubscriptionService, importService *importer.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Открытая конечная точка проверки живости
	r.Get("/", health.New(logger).ServeHTTP)

	// Группа с проверкой общего секрета
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.AuthMiddleware(cfg.SecretToken, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Get("/all-subscriptions", list.New(logger, subscriptionService).ServeHTTP)
		r.Get("/family-subscriptions", listfamily.New(logger, subscriptionService).ServeHTTP)
		r.Post("/add-single", addsingle.New(logger, subscriptionService).ServeHTTP)
		r.Post("/add-family", addfamily.New(logger, subscriptionService).ServeHTTP)
		r.Put("/update-sub/{id}", update.New(logger, subscriptionService).ServeHTTP)
		r.Put("/renew-sub/{id}", renew.New(logger, subscriptionService).ServeHTTP)
		r.Delete("/delete-sub/{id}", remove.New(logger, subscriptionService).ServeHTTP)
		r.Post("/import-data", importdata.New(logger, importService).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
