// Package smartminds предоставляет маршруты для основного приложения.
package smartminds

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tsmartminds/smartminds/internal/config"
	"github.com/tsmartminds/smartminds/internal/http/handlers/auth/login"
	"github.com/tsmartminds/smartminds/internal/http/handlers/auth/logout"
	"github.com/tsmartminds/smartminds/internal/http/handlers/auth/me"
	"github.com/tsmartminds/smartminds/internal/http/handlers/auth/register"
	"github.com/tsmartminds/smartminds/internal/http/handlers/billing/checkout"
	"github.com/tsmartminds/smartminds/internal/http/handlers/billing/subscription"
	"github.com/tsmartminds/smartminds/internal/http/handlers/billing/webhook"
	"github.com/tsmartminds/smartminds/internal/http/handlers/health"
	quizattempts "github.com/tsmartminds/smartminds/internal/http/handlers/quiz/attempts"
	quizlist "github.com/tsmartminds/smartminds/internal/http/handlers/quiz/list"
	quizread "github.com/tsmartminds/smartminds/internal/http/handlers/quiz/read"
	quizsubmit "github.com/tsmartminds/smartminds/internal/http/handlers/quiz/submit"
	"github.com/tsmartminds/smartminds/internal/http/middlewarectx"
	"github.com/tsmartminds/smartminds/internal/paymentprovider"
	authservice "github.com/tsmartminds/smartminds/internal/services/auth"
	billingservice "github.com/tsmartminds/smartminds/internal/services/billing"
	quizservice "github.com/tsmartminds/smartminds/internal/services/quiz"
	"github.com/tsmartminds/smartminds/internal/session"
	"github.com/tsmartminds/smartminds/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	cfg *config.Config,
	db *repository.Storage,
	sessions *session.Store,
	authService *authservice.Service,
	quizService *quizservice.Service,
	billingService *billingservice.Service,
	providerClient *paymentprovider.Client,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	cookieName := cfg.Session.CookieName
	secure := cfg.IsProd()

	r.Route("/api", func(r chi.Router) {
		// Аутентификация, с ограничением частоты запросов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
			r.Post("/auth/login", login.New(logger, authService, cookieName, sessions.TTL(), secure).ServeHTTP)
		})
		r.Post("/auth/logout", logout.New(logger, authService, cookieName, secure).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(sessions, cookieName, logger))
			r.Get("/auth/me", me.New(logger, authService).ServeHTTP)
			r.Get("/quiz/attempts", quizattempts.New(logger, quizService).ServeHTTP)
			r.Get("/subscription", subscription.New(logger, billingService).ServeHTTP)
		})

		// Открытые конечные точки тестов. Сессия учитывается, если есть.
		// Checkout тоже открыт: неоплаченный пользователь сессии не имеет.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalSessionMiddleware(sessions, cookieName, logger))
			r.Get("/quizzes/{subjectId}", quizlist.New(logger, quizService).ServeHTTP)
			r.Get("/quiz/{quizId}", quizread.New(logger, quizService).ServeHTTP)
			r.Post("/quiz/{quizId}/submit", quizsubmit.New(logger, quizService).ServeHTTP)
			r.Post("/create-checkout-session", checkout.New(logger, billingService).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации, подпись проверяется в обработчике)
		var verifier webhook.EventVerifier
		if providerClient != nil {
			verifier = providerClient
		}
		r.Post("/webhooks/stripe", webhook.New(logger, verifier, billingService).ServeHTTP)
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
