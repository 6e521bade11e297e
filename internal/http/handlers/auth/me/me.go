// Package me реализует HTTP-обработчик получения текущего пользователя
// по сессионной куке.
package me

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/http/middlewarectx"
	"github.com/tsmartminds/smartminds/internal/http/response"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
	"github.com/tsmartminds/smartminds/internal/models"
)

// Service описывает интерфейс бизнес-логики получения пользователя.
type Service interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы текущего пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Description Возвращает профиль пользователя по сессионной куке.
// @Tags Auth
// @Produce  json
// @Success 200 {object} map[string]any "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Сессия отсутствует или истекла"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := middlewarectx.TokenFromContext(r.Context())

	user, err := h.service.CurrentUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, errs.ErrNoSession) {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("not authenticated"))
			return
		}
		log.Error("failed to load current user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load user"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user.Public(),
	}))
}
