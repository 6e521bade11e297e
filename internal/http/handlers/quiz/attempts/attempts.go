// Package attempts реализует HTTP-обработчик истории попыток
// прохождения викторин текущего пользователя.
package attempts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tsmartminds/smartminds/internal/http/middlewarectx"
	"github.com/tsmartminds/smartminds/internal/http/response"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
	"github.com/tsmartminds/smartminds/internal/models"
)

// Service описывает интерфейс бизнес-логики истории попыток.
type Service interface {
	ListAttempts(ctx context.Context, userUID string) ([]models.Attempt, error)
}

// Handler обрабатывает HTTP-запросы истории попыток.
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
// @Summary История попыток
// @Description Возвращает попытки прохождения викторин текущего пользователя, новые первыми.
// @Tags Quiz
// @Produce  json
// @Success 200 {object} map[string]any "Список попыток"
// @Failure 401 {object} response.ErrorResponse "Сессия отсутствует или истекла"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/quiz/attempts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quiz.attempts"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	data, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("not authenticated"))
		return
	}

	attempts, err := h.service.ListAttempts(r.Context(), data.UserUID)
	if err != nil {
		log.Error("failed to list attempts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list attempts"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"attempts": attempts,
	}))
}
