// Package agentstore собирает HTTP-приложение витрины: хранилище,
// миграции, кэш, брокер уведомлений, сервисы и маршруты.
package agentstore

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/somlabs/agentstore/internal/cache"
	"github.com/somlabs/agentstore/internal/config"
	"github.com/somlabs/agentstore/internal/gateway"
	"github.com/somlabs/agentstore/internal/lib/jwt"
	"github.com/somlabs/agentstore/internal/lib/sl"
	"github.com/somlabs/agentstore/internal/migrations"
	"github.com/somlabs/agentstore/internal/notifier"
	"github.com/somlabs/agentstore/internal/rabbitmq"
	authservice "github.com/somlabs/agentstore/internal/services/auth"
	catalogservice "github.com/somlabs/agentstore/internal/services/catalog"
	paymentservice "github.com/somlabs/agentstore/internal/services/payment"
	"github.com/somlabs/agentstore/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер витрины и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New собирает приложение: подключает PostgreSQL, применяет миграции,
// поднимает Redis и RabbitMQ и регистрирует маршруты.
//
// Брокер уведомлений необязателен: без него платежи проводятся,
// а административные письма не отправляются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var (
		amqpConn     *amqp.Connection
		paymentsSink paymentservice.Notifier
	)
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.ConnectionString, cfg.RabbitMQ.ConnectRetries, cfg.RabbitMQ.ConnectDelay)
	if err != nil {
		logger.Warn("rabbitmq unavailable, payment notifications disabled", sl.Err(err))
	} else {
		ch, chErr := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if chErr != nil {
			conn.Close()
			return nil, chErr
		}
		amqpConn = conn
		paymentsSink = notifier.New(ch)
	}

	jwtMaker := jwt.NewMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	charger := gateway.NewSimulated(cfg.Gateway.ChargeDelay)

	authService := authservice.NewService(db, jwtMaker)
	catalogService := catalogservice.NewService(db, cacheRedis, logger)
	paymentService := paymentservice.NewService(catalogService, db, charger, paymentsSink, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db, authService, catalogService, paymentService)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.amqp != nil {
			if closeErr := a.amqp.Close(); closeErr != nil {
				a.logger.Error("failed to close rabbitmq connection", sl.Err(closeErr))
			}
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		return err
	}
}
