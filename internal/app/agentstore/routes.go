package agentstore

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/somlabs/agentstore/internal/http/handlers/auth/login"
	"github.com/somlabs/agentstore/internal/http/handlers/auth/register"
	"github.com/somlabs/agentstore/internal/http/handlers/auth/verify"
	"github.com/somlabs/agentstore/internal/http/handlers/catalog/agentlist"
	"github.com/somlabs/agentstore/internal/http/handlers/catalog/agentread"
	"github.com/somlabs/agentstore/internal/http/handlers/catalog/planlist"
	"github.com/somlabs/agentstore/internal/http/handlers/catalog/planread"
	"github.com/somlabs/agentstore/internal/http/handlers/health"
	"github.com/somlabs/agentstore/internal/http/handlers/payment/paymentcreate"
	"github.com/somlabs/agentstore/internal/http/handlers/payment/paymenthistory"
	"github.com/somlabs/agentstore/internal/http/middlewarectx"
	authservice "github.com/somlabs/agentstore/internal/services/auth"
	catalogservice "github.com/somlabs/agentstore/internal/services/catalog"
	paymentservice "github.com/somlabs/agentstore/internal/services/payment"
	"github.com/somlabs/agentstore/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *repository.Storage,
	authService *authservice.Service, catalogService *catalogservice.Service,
	paymentService *paymentservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, 50, 100))
			r.Get("/auth/verify", verify.New(logger).ServeHTTP)
			r.Get("/agents", agentlist.New(logger, catalogService).ServeHTTP)
			r.Get("/agents/category/{category}", agentlist.New(logger, catalogService).ServeHTTP)
			r.Get("/agents/{id}", agentread.New(logger, catalogService).ServeHTTP)
			r.Get("/plans", planlist.New(logger, catalogService).ServeHTTP)
			r.Get("/plans/{id}", planread.New(logger, catalogService).ServeHTTP)
			r.Post("/payments", paymentcreate.New(logger, paymentService).ServeHTTP)
			r.Get("/payments", paymenthistory.New(logger, paymentService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
