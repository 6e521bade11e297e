// Package webhook реализует HTTP-обработчик вебхуков Stripe.
//
// Тело запроса ограничено по размеру и проверяется по подписи из заголовка
// Stripe-Signature до какой-либо обработки. Проверенное событие передаётся
// сервису биллинга.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/stripe/stripe-go/v78"

	"github.com/tsmartminds/smartminds/internal/http/response"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
)

// Лимит размера тела вебхука, рекомендованный Stripe.
const maxBodyBytes = int64(65536)

// EventVerifier проверяет подпись вебхука и восстанавливает событие.
type EventVerifier interface {
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

// Service описывает интерфейс обработки проверенных событий.
type Service interface {
	ProcessEvent(ctx context.Context, event stripe.Event) error
}

// Handler обрабатывает HTTP-запросы вебхуков Stripe.
// verifier равен nil, когда платёжный провайдер не сконфигурирован.
type Handler struct {
	log      *slog.Logger
	verifier EventVerifier
	service  Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, verifier EventVerifier, service Service) *Handler {
	return &Handler{
		log:      log,
		verifier: verifier,
		service:  service,
	}
}

// ServeHTTP godoc
// @Summary Вебхук Stripe
// @Description Принимает события Stripe, проверяет подпись и обновляет статус подписки.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]bool "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело запроса"
// @Failure 503 {object} response.ErrorResponse "Платёжная система не настроена"
// @Router /api/webhooks/stripe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if h.verifier == nil {
		log.Error("payment provider is not configured")
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("payment system is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read request body"))
		return
	}

	event, err := h.verifier.ConstructEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Error("invalid webhook signature", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid webhook signature"))
		return
	}
	log.Info("webhook event verified", slog.String("event", string(event.Type)))

	if err := h.service.ProcessEvent(r.Context(), event); err != nil {
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process event"))
		return
	}

	render.JSON(w, r, map[string]bool{"received": true})
}
