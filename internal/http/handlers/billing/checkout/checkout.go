// Package checkout реализует HTTP-обработчик создания checkout-сессии
// платёжного провайдера для оформления подписки.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/http/middlewarectx"
	"github.com/tsmartminds/smartminds/internal/http/response"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
)

// Request — входные данные для оформления подписки.
// Стоимость определяется числом выбранных предметов.
// UserID передаётся в теле: неоплаченный пользователь ещё не имеет
// сессии и попадает сюда сразу после отказа при входе.
type Request struct {
	UserID   string   `json:"userId" validate:"required"`
	Subjects []string `json:"subjects" validate:"required,min=1,dive,required"`
}

// Service описывает интерфейс бизнес-логики биллинга.
type Service interface {
	CreateCheckoutSession(ctx context.Context, userUID string, subjects []string, origin string) (string, error)
}

// Handler обрабатывает HTTP-запросы создания checkout-сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создание checkout-сессии
// @Description Создаёт платёжную сессию подписки на выбранные предметы и возвращает URL оплаты.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body Request true "Пользователь и выбранные предметы"
// @Success 200 {object} map[string]any "URL платёжной страницы"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или пустой список предметов"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 503 {object} response.ErrorResponse "Платёжная система не настроена"
// @Router /api/create-checkout-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("subjects", req.Subjects))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	// Активная сессия важнее идентификатора из тела: оплатить можно
	// только собственную подписку.
	userUID := req.UserID
	if data, ok := middlewarectx.SessionFromContext(r.Context()); ok {
		userUID = data.UserUID
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = fmt.Sprintf("https://%s", r.Host)
	}

	url, err := h.service.CreateCheckoutSession(r.Context(), userUID, req.Subjects, origin)
	if err != nil {
		if errors.Is(err, errs.ErrBillingUnavailable) {
			log.Error("payment provider is not configured")
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("payment system is not configured"))
			return
		}
		if errors.Is(err, errs.ErrNotFound) {
			log.Error("user not found", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create checkout session"))
		return
	}

	log.Info("checkout session created", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"url": url,
	}))
}
