// Package quiz содержит бизнес-логику викторин: выдачу списков,
// чтение вопросов и подсчёт результата прохождения.
package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/models"
)

// Текст, подставляемый вместо отсутствующего объяснения.
const noExplanation = "No explanation available."

// Repository описывает контракт хранилища викторин.
type Repository interface {
	ListQuizzesBySubject(ctx context.Context, subjectID string) ([]models.Quiz, error)
	GetQuiz(ctx context.Context, quizUID string) (*models.Quiz, error)
	ListQuestionsByQuiz(ctx context.Context, quizUID string) ([]models.Question, error)
	CreateAttempt(ctx context.Context, attempt models.Attempt) (string, error)
	ListAttemptsByUser(ctx context.Context, userUID string) ([]models.Attempt, error)
}

// Service реализует операции над викторинами.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// QuestionResult — разбор одного вопроса после отправки ответов.
type QuestionResult struct {
	QuestionUID   string `json:"questionId"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

// SubmissionResult — итог прохождения викторины.
type SubmissionResult struct {
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Percentage     int              `json:"percentage"`
	Results        []QuestionResult `json:"results"`
}

// ListQuizzes возвращает викторины по предмету. Пустой список — не ошибка.
func (s *Service) ListQuizzes(ctx context.Context, subjectID string) ([]models.Quiz, error) {
	const op = "quiz.ListQuizzes"
	quizzes, err := s.repo.ListQuizzesBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return quizzes, nil
}

// GetQuiz возвращает викторину и её вопросы в порядке добавления.
func (s *Service) GetQuiz(ctx context.Context, quizUID string) (*models.Quiz, []models.Question, error) {
	const op = "quiz.GetQuiz"

	q, err := s.repo.GetQuiz(ctx, quizUID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	questions, err := s.repo.ListQuestionsByQuiz(ctx, quizUID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return q, questions, nil
}

// ListAttempts возвращает историю попыток пользователя, новые первыми.
func (s *Service) ListAttempts(ctx context.Context, userUID string) ([]models.Attempt, error) {
	const op = "quiz.ListAttempts"
	attempts, err := s.repo.ListAttemptsByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return attempts, nil
}

// SubmitAttempt сверяет ответы с правильными и считает результат.
//
// Ответ засчитывается, только если метка совпадает с правильной;
// отсутствующий ответ всегда неверен. Процент — округлённое
// значение 100*score/total. Попытка сохраняется только для
// аутентифицированного пользователя (userUID не пустой); анонимные
// прохождения оцениваются, но не записываются.
func (s *Service) SubmitAttempt(ctx context.Context, quizUID string, answers map[string]string, userUID string) (*SubmissionResult, error) {
	const op = "quiz.SubmitAttempt"

	questions, err := s.repo.ListQuestionsByQuiz(ctx, quizUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}

	score := 0
	results := make([]QuestionResult, 0, len(questions))
	for _, q := range questions {
		userAnswer := answers[q.UID]
		isCorrect := userAnswer == q.CorrectAnswer
		if isCorrect {
			score++
		}
		explanation := noExplanation
		if q.Explanation != nil && *q.Explanation != "" {
			explanation = *q.Explanation
		}
		results = append(results, QuestionResult{
			QuestionUID:   q.UID,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   explanation,
		})
	}

	total := len(questions)
	submission := &SubmissionResult{
		Score:          score,
		TotalQuestions: total,
		Percentage:     int(math.Round(float64(score) / float64(total) * 100)),
		Results:        results,
	}

	if userUID != "" {
		if _, err := s.repo.CreateAttempt(ctx, models.Attempt{
			UserUID:        userUID,
			QuizUID:        quizUID,
			Score:          score,
			TotalQuestions: total,
		}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("quiz attempt saved",
			slog.String("user_uid", userUID),
			slog.String("quiz_uid", quizUID),
			slog.Int("score", score))
	}

	return submission, nil
}
