package quiz

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/models"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) ListQuizzesBySubject(ctx context.Context, subjectID string) ([]models.Quiz, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Quiz), args.Error(1)
}

func (m *RepositoryMock) GetQuiz(ctx context.Context, quizUID string) (*models.Quiz, error) {
	args := m.Called(ctx, quizUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *RepositoryMock) ListQuestionsByQuiz(ctx context.Context, quizUID string) ([]models.Question, error) {
	args := m.Called(ctx, quizUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *RepositoryMock) CreateAttempt(ctx context.Context, attempt models.Attempt) (string, error) {
	args := m.Called(ctx, attempt)
	return args.String(0), args.Error(1)
}

func (m *RepositoryMock) ListAttemptsByUser(ctx context.Context, userUID string) ([]models.Attempt, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attempt), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func strPtr(s string) *string { return &s }

func fiveQuestions() []models.Question {
	return []models.Question{
		{UID: "q1", CorrectAnswer: "A", Explanation: strPtr("Explanation one")},
		{UID: "q2", CorrectAnswer: "B", Explanation: strPtr("Explanation two")},
		{UID: "q3", CorrectAnswer: "C"},
		{UID: "q4", CorrectAnswer: "D", Explanation: strPtr("")},
		{UID: "q5", CorrectAnswer: "A"},
	}
}

func TestSubmitAttempt_ScoringAndPercentage(t *testing.T) {
	tests := []struct {
		name           string
		answers        map[string]string
		wantScore      int
		wantPercentage int
	}{
		{
			name: "all correct",
			answers: map[string]string{
				"q1": "A", "q2": "B", "q3": "C", "q4": "D", "q5": "A",
			},
			wantScore:      5,
			wantPercentage: 100,
		},
		{
			name: "three of five",
			answers: map[string]string{
				"q1": "A", "q2": "B", "q3": "C", "q4": "A", "q5": "B",
			},
			wantScore:      3,
			wantPercentage: 60,
		},
		{
			name:           "empty answers",
			answers:        map[string]string{},
			wantScore:      0,
			wantPercentage: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepositoryMock)
			service := New(repo, newNoopLogger())

			repo.On("ListQuestionsByQuiz", mock.Anything, "quiz-1").
				Return(fiveQuestions(), nil).Once()

			result, err := service.SubmitAttempt(context.Background(), "quiz-1", tt.answers, "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, 5, result.TotalQuestions)
			assert.Equal(t, tt.wantPercentage, result.Percentage)
			assert.Len(t, result.Results, 5)
			repo.AssertNotCalled(t, "CreateAttempt", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitAttempt_PercentageIsRounded(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, newNoopLogger())

	questions := []models.Question{
		{UID: "q1", CorrectAnswer: "A"},
		{UID: "q2", CorrectAnswer: "B"},
		{UID: "q3", CorrectAnswer: "C"},
	}
	repo.On("ListQuestionsByQuiz", mock.Anything, "quiz-1").
		Return(questions, nil).Once()

	// 1/3 = 33.33 -> 33
	result, err := service.SubmitAttempt(context.Background(), "quiz-1", map[string]string{"q1": "A"}, "")
	require.NoError(t, err)
	assert.Equal(t, 33, result.Percentage)

	// 2/3 = 66.67 -> 67
	repo.On("ListQuestionsByQuiz", mock.Anything, "quiz-1").
		Return(questions, nil).Once()
	result, err = service.SubmitAttempt(context.Background(), "quiz-1", map[string]string{"q1": "A", "q2": "B"}, "")
	require.NoError(t, err)
	assert.Equal(t, 67, result.Percentage)
}

func TestSubmitAttempt_ExplanationFallback(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, newNoopLogger())

	repo.On("ListQuestionsByQuiz", mock.Anything, "quiz-1").
		Return(fiveQuestions(), nil).Once()

	result, err := service.SubmitAttempt(context.Background(), "quiz-1", map[string]string{}, "")
	require.NoError(t, err)

	assert.Equal(t, "Explanation one", result.Results[0].Explanation)
	assert.Equal(t, "No explanation available.", result.Results[2].Explanation)
	assert.Equal(t, "No explanation available.", result.Results[3].Explanation)
}

func TestSubmitAttempt_UnknownQuiz(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, newNoopLogger())

	repo.On("ListQuestionsByQuiz", mock.Anything, "missing").
		Return([]models.Question{}, nil).Once()

	_, err := service.SubmitAttempt(context.Background(), "missing", map[string]string{}, "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSubmitAttempt_SavesAttemptForAuthenticatedUser(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, newNoopLogger())

	repo.On("ListQuestionsByQuiz", mock.Anything, "quiz-1").
		Return(fiveQuestions(), nil).Once()
	repo.On("CreateAttempt", mock.Anything, models.Attempt{
		UserUID:        "uid-7",
		QuizUID:        "quiz-1",
		Score:          5,
		TotalQuestions: 5,
	}).Return("attempt-1", nil).Once()

	_, err := service.SubmitAttempt(context.Background(), "quiz-1", map[string]string{
		"q1": "A", "q2": "B", "q3": "C", "q4": "D", "q5": "A",
	}, "uid-7")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetQuiz(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, newNoopLogger())

	repo.On("GetQuiz", mock.Anything, "quiz-1").
		Return(&models.Quiz{UID: "quiz-1", Title: "Introduction to DNA"}, nil).Once()
	repo.On("ListQuestionsByQuiz", mock.Anything, "quiz-1").
		Return(fiveQuestions(), nil).Once()

	quiz, questions, err := service.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, "Introduction to DNA", quiz.Title)
	assert.Len(t, questions, 5)
}

func TestGetQuiz_NotFound(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, newNoopLogger())

	repo.On("GetQuiz", mock.Anything, "missing").
		Return(nil, errs.ErrNotFound).Once()

	_, _, err := service.GetQuiz(context.Background(), "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListQuizzes(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, newNoopLogger())

	repo.On("ListQuizzesBySubject", mock.Anything, "biology").
		Return([]models.Quiz{{UID: "quiz-1", SubjectID: "biology"}}, nil).Once()

	quizzes, err := service.ListQuizzes(context.Background(), "biology")
	require.NoError(t, err)
	assert.Len(t, quizzes, 1)
}

func TestListAttempts(t *testing.T) {
	repo := new(RepositoryMock)
	service := New(repo, newNoopLogger())

	repo.On("ListAttemptsByUser", mock.Anything, "uid-7").
		Return([]models.Attempt{
			{UID: "attempt-2", QuizUID: "quiz-1", Score: 5, TotalQuestions: 5},
			{UID: "attempt-1", QuizUID: "quiz-1", Score: 3, TotalQuestions: 5},
		}, nil).Once()

	attempts, err := service.ListAttempts(context.Background(), "uid-7")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "attempt-2", attempts[0].UID)
}
