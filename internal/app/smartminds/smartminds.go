// Package smartminds собирает и запускает HTTP-приложение: подключение
// к базе данных и Redis, миграции, сборка сервисов и маршрутов,
// graceful shutdown.
package smartminds

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/tsmartminds/smartminds/internal/cache"
	"github.com/tsmartminds/smartminds/internal/config"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
	"github.com/tsmartminds/smartminds/internal/migrations"
	"github.com/tsmartminds/smartminds/internal/paymentprovider"
	"github.com/tsmartminds/smartminds/internal/rabbitmq"
	authservice "github.com/tsmartminds/smartminds/internal/services/auth"
	billingservice "github.com/tsmartminds/smartminds/internal/services/billing"
	quizservice "github.com/tsmartminds/smartminds/internal/services/quiz"
	"github.com/tsmartminds/smartminds/internal/session"
	"github.com/tsmartminds/smartminds/internal/storage/repository"
)

// App — собранное HTTP-приложение со всеми зависимостями.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
	rabbitCh   *amqp.Channel
}

// New собирает приложение из конфигурации: хранилище, миграции, кэш,
// сессии, платёжный провайдер и очередь уведомлений. Stripe и RabbitMQ
// опциональны: без них приложение работает с урезанным биллингом.
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

	sessions := session.New(cacheRedis, cfg.Session.SessionTTL)

	var providerClient *paymentprovider.Client
	if cfg.BillingConfigured() {
		providerClient = paymentprovider.New(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, logger)
	} else {
		logger.Warn("stripe secret key is not set, billing endpoints are disabled")
	}

	app := &App{
		logger: logger,
		db:     db,
	}

	var publisher *rabbitmq.Publisher
	if cfg.RabbitMQ.AddressRabbit != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.AddressRabbit, cfg.RabbitMQ.ConnectRetries, cfg.RabbitMQ.ConnectDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		app.rabbitConn = conn
		app.rabbitCh = ch
		publisher = rabbitmq.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq url is not set, notifications are disabled")
	}

	authService := authservice.New(db, sessions, logger)
	quizService := quizservice.New(db, logger)

	// Publisher и providerClient передаются интерфейсами: типизированный
	// nil указателя не должен стать не-nil интерфейсом.
	var provider billingservice.ProviderClient
	if providerClient != nil {
		provider = providerClient
	}
	var billingPublisher billingservice.Publisher
	if publisher != nil {
		billingPublisher = publisher
	}
	billingService := billingservice.New(db, provider, billingPublisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db, sessions, authService, quizService, billingService, providerClient)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return app, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста либо
// ошибки сервера. При отмене выполняется graceful shutdown.
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
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.rabbitCh != nil {
		if err := a.rabbitCh.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq channel", sl.Err(err))
		}
	}
	if a.rabbitConn != nil {
		if err := a.rabbitConn.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
