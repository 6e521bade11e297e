// Package read реализует HTTP-обработчик получения теста с вопросами.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/http/response"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
	"github.com/tsmartminds/smartminds/internal/models"
)

// Service описывает интерфейс бизнес-логики чтения теста.
type Service interface {
	GetQuiz(ctx context.Context, quizUID string) (*models.Quiz, []models.Question, error)
}

// Handler обрабатывает HTTP-запросы чтения теста.
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
// @Summary Тест с вопросами
// @Description Возвращает тест и его вопросы в порядке добавления.
// @Tags Quiz
// @Produce  json
// @Param quizId path string true "Идентификатор теста"
// @Success 200 {object} map[string]any "Тест и вопросы"
// @Failure 404 {object} response.ErrorResponse "Тест не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/quiz/{quizId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quiz.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	quizUID := chi.URLParam(r, "quizId")

	quiz, questions, err := h.service.GetQuiz(r.Context(), quizUID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("quiz not found"))
			return
		}
		log.Error("failed to read quiz", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read quiz"))
		return
	}

	log.Info("quiz read",
		slog.String("quiz_uid", quizUID),
		slog.Int("questions", len(questions)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"quiz":      quiz,
		"questions": questions,
	}))
}
