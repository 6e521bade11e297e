// Package submit реализует HTTP-обработчик отправки ответов на тест.
//
// Отправка доступна и анонимно: результат подсчитывается всегда, но попытка
// сохраняется только для аутентифицированного пользователя.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/http/middlewarectx"
	"github.com/tsmartminds/smartminds/internal/http/response"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
	"github.com/tsmartminds/smartminds/internal/services/quiz"
)

// Request — входные данные отправки теста. Ключи Answers — идентификаторы
// вопросов, значения — выбранные варианты A-D.
type Request struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

// Service описывает интерфейс бизнес-логики проверки теста.
type Service interface {
	SubmitAttempt(ctx context.Context, quizUID string, answers map[string]string, userUID string) (*quiz.SubmissionResult, error)
}

// Handler обрабатывает HTTP-запросы отправки теста.
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
// @Summary Отправка ответов на тест
// @Description Подсчитывает результат и возвращает разбор по каждому вопросу.
// @Tags Quiz
// @Accept  json
// @Produce  json
// @Param quizId path string true "Идентификатор теста"
// @Param request body Request true "Ответы на вопросы"
// @Success 200 {object} map[string]any "Результат теста"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 404 {object} response.ErrorResponse "Тест не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/quiz/{quizId}/submit [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quiz.submit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	quizUID := chi.URLParam(r, "quizId")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	var userUID string
	if data, ok := middlewarectx.SessionFromContext(r.Context()); ok {
		userUID = data.UserUID
	}

	result, err := h.service.SubmitAttempt(r.Context(), quizUID, req.Answers, userUID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("quiz not found"))
			return
		}
		log.Error("failed to submit attempt", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to submit attempt"))
		return
	}

	log.Info("attempt submitted",
		slog.String("quiz_uid", quizUID),
		slog.Int("score", result.Score),
		slog.Int("total", result.TotalQuestions))
	render.JSON(w, r, response.StatusOKWithData(result))
}
