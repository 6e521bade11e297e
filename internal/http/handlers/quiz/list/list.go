// Package list реализует HTTP-обработчик списка тестов по предмету.
// Список доступен без аутентификации.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tsmartminds/smartminds/internal/http/response"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
	"github.com/tsmartminds/smartminds/internal/models"
)

// Service описывает интерфейс бизнес-логики списка тестов.
type Service interface {
	ListQuizzes(ctx context.Context, subjectID string) ([]models.Quiz, error)
}

// Handler обрабатывает HTTP-запросы списка тестов.
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
// @Summary Список тестов предмета
// @Description Возвращает все тесты указанного предмета. Для предмета без тестов возвращается пустой список.
// @Tags Quiz
// @Produce  json
// @Param subjectId path string true "Идентификатор предмета"
// @Success 200 {object} map[string]any "Список тестов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/quizzes/{subjectId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quiz.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subjectID := chi.URLParam(r, "subjectId")

	quizzes, err := h.service.ListQuizzes(r.Context(), subjectID)
	if err != nil {
		log.Error("failed to list quizzes", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list quizzes"))
		return
	}

	log.Info("quizzes listed",
		slog.String("subject_id", subjectID),
		slog.Int("count", len(quizzes)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"quizzes": quizzes,
	}))
}
