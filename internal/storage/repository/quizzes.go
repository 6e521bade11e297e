package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/models"
)

// ListQuizzesBySubject возвращает все викторины по предмету.
// Отсутствие викторин — не ошибка, возвращается пустой список.
func (s *Storage) ListQuizzesBySubject(ctx context.Context, subjectID string) ([]models.Quiz, error) {
	const op = "storage.ListQuizzesBySubject"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, subject_id, title, topic, created_at
			  FROM quizzes
			  WHERE subject_id = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Quiz{}
	for rows.Next() {
		var q models.Quiz
		if err = rows.Scan(&q.UID, &q.SubjectID, &q.Title, &q.Topic, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetQuiz возвращает викторину по UID или errs.ErrNotFound.
func (s *Storage) GetQuiz(ctx context.Context, quizUID string) (*models.Quiz, error) {
	const op = "storage.GetQuiz"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, subject_id, title, topic, created_at
			  FROM quizzes
			  WHERE uid = $1`
	q := &models.Quiz{}
	row := s.DB.QueryRowContext(ctx, query, quizUID)
	if err := row.Scan(&q.UID, &q.SubjectID, &q.Title, &q.Topic, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return q, nil
}

// ListQuestionsByQuiz возвращает вопросы викторины в порядке добавления.
func (s *Storage) ListQuestionsByQuiz(ctx context.Context, quizUID string) ([]models.Question, error) {
	const op = "storage.ListQuestionsByQuiz"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, quiz_uid, question, option_a, option_b, option_c, option_d,
			      correct_answer, explanation
			  FROM quiz_questions
			  WHERE quiz_uid = $1
			  ORDER BY seq`
	rows, err := s.DB.QueryContext(ctx, query, quizUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Question
	for rows.Next() {
		var q models.Question
		var explanation sql.NullString
		if err = rows.Scan(&q.UID, &q.QuizUID, &q.Question, &q.OptionA, &q.OptionB,
			&q.OptionC, &q.OptionD, &q.CorrectAnswer, &explanation); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if explanation.Valid {
			q.Explanation = &explanation.String
		}
		result = append(result, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateAttempt сохраняет результат прохождения викторины и возвращает UID записи.
// Запись неизменяема, обновлений к ней нет.
func (s *Storage) CreateAttempt(ctx context.Context, attempt models.Attempt) (string, error) {
	const op = "storage.CreateAttempt"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO quiz_attempts (user_uid, quiz_uid, score, total_questions)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid`
	var newUID string
	err := s.DB.QueryRowContext(ctx, query,
		attempt.UserUID, attempt.QuizUID, attempt.Score, attempt.TotalQuestions).Scan(&newUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// ListAttemptsByUser возвращает попытки пользователя, новые первыми.
func (s *Storage) ListAttemptsByUser(ctx context.Context, userUID string) ([]models.Attempt, error) {
	const op = "storage.ListAttemptsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, user_uid, quiz_uid, score, total_questions, completed_at
			  FROM quiz_attempts
			  WHERE user_uid = $1
			  ORDER BY completed_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Attempt
	for rows.Next() {
		var a models.Attempt
		if err = rows.Scan(&a.UID, &a.UserUID, &a.QuizUID, &a.Score,
			&a.TotalQuestions, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
