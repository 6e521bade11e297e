// Package login реализует HTTP-обработчик входа пользователей.
//
// Обработчик декодирует учётные данные, валидирует их и делегирует проверку
// сервису аутентификации. При успехе выдаёт сессионную куку. Пользователь
// без платного доступа получает 403 с подсказкой о необходимости оплаты.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/http/response"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
	"github.com/tsmartminds/smartminds/internal/models"
)

// Request — структура входных данных для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	Login(ctx context.Context, email, rawPassword string) (*models.User, string, error)
}

// Handler обрабатывает HTTP-запросы входа.
type Handler struct {
	log        *slog.Logger
	service    Service
	validate   *validator.Validate
	cookieName string
	sessionTTL time.Duration
	secure     bool
}

// New создает новый экземпляр Handler. secure управляет флагом Secure
// сессионной куки и включается в продакшене.
func New(log *slog.Logger, service Service, cookieName string, sessionTTL time.Duration, secure bool) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		validate:   validator.New(),
		cookieName: cookieName,
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет учётные данные и выдаёт сессионную куку. Без активной подписки вход запрещён.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} map[string]any "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 403 {object} response.ErrorResponse "Подписка не активна"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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
	log.Info("request body decoded", slog.String("email", req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			log.Error("invalid credentials", slog.String("email", req.Email))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid email or password"))
			return
		}
		if paymentErr, ok := errs.AsPaymentRequired(err); ok {
			log.Info("login blocked, subscription is not active",
				slog.String("user_uid", paymentErr.UserUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.ErrorWithData("subscription is not active", map[string]any{
				"requiresPayment": true,
				"userId":          paymentErr.UserUID,
			}))
			return
		}
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to log in"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("login success", slog.String("user_uid", user.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user.Public(),
	}))
}
