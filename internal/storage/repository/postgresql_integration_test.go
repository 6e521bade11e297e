package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	uid, err := storage.CreateUser(ctx, models.User{
		Email:        "student@example.com",
		PasswordHash: "hashedpassword",
		Name:         "Thabo",
		Role:         models.RoleStudent,
	})
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	got, err := storage.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", got.Email)
	assert.Equal(t, models.RoleStudent, got.Role)
	assert.False(t, got.IsPaid)
	assert.Nil(t, got.Phone)
	assert.Nil(t, got.StripeCustomerID)
}

func TestStorage_CreateUser_DuplicateEmail(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	user := models.User{
		Email:        "taken@example.com",
		PasswordHash: "hashedpassword",
		Name:         "Thabo",
		Role:         models.RoleStudent,
	}

	_, err := storage.CreateUser(ctx, user)
	require.NoError(t, err)

	_, err = storage.CreateUser(ctx, user)
	assert.ErrorIs(t, err, errs.ErrEmailTaken)
}

func TestStorage_GetUserByEmail(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "student@example.com", "hashedpassword", "Thabo", models.RoleStudent, false)

	ctx := context.Background()
	got, err := storage.GetUserByEmail(ctx, "student@example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)

	_, err = storage.GetUserByEmail(ctx, "unknown@example.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStorage_UpdateUserPaidStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)
	uid := factory.CreateUser(t, "student@example.com", "hashedpassword", "Thabo", models.RoleStudent, false)

	ctx := context.Background()
	require.NoError(t, storage.UpdateUserPaidStatus(ctx, uid, true))
	verification.VerifyUserPaidStatus(t, uid, true)

	require.NoError(t, storage.UpdateUserPaidStatus(ctx, uid, false))
	verification.VerifyUserPaidStatus(t, uid, false)

	err := storage.UpdateUserPaidStatus(ctx, "00000000-0000-0000-0000-000000000000", true)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStorage_StripeCustomerLookup(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "student@example.com", "hashedpassword", "Thabo", models.RoleStudent, true)

	ctx := context.Background()
	require.NoError(t, storage.UpdateUserStripeCustomerID(ctx, uid, "cus_123"))

	got, err := storage.GetUserByStripeCustomerID(ctx, "cus_123")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)
	require.NotNil(t, got.StripeCustomerID)
	assert.Equal(t, "cus_123", *got.StripeCustomerID)

	_, err = storage.GetUserByStripeCustomerID(ctx, "cus_unknown")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStorage_SubscriptionLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)
	uid := factory.CreateUser(t, "student@example.com", "hashedpassword", "Thabo", models.RoleStudent, false)

	ctx := context.Background()

	_, err := storage.GetSubscriptionByUser(ctx, uid)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	stripeSubID := "sub_1"
	subUID, err := storage.CreateSubscription(ctx, models.Subscription{
		UserUID:              uid,
		StripeSubscriptionID: &stripeSubID,
		Status:               models.SubscriptionActive,
		Subjects:             []string{"biology", "economics"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, subUID)

	got, err := storage.GetSubscriptionByUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, subUID, got.UID)
	assert.Equal(t, models.SubscriptionActive, got.Status)
	assert.Equal(t, []string{"biology", "economics"}, got.Subjects)
	require.NotNil(t, got.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *got.StripeSubscriptionID)

	count, err := storage.CountActiveSubscriptions(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	affected, err := storage.UpdateSubscriptionStatusByUser(ctx, uid, models.SubscriptionInactive)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)
	verification.VerifySubscriptionStatus(t, uid, models.SubscriptionInactive)

	count, err = storage.CountActiveSubscriptions(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStorage_ListQuizzesBySubject(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateQuiz(t, "biology", "Introduction to DNA", "Molecular Biology")
	factory.CreateQuiz(t, "biology", "Human Evolution", "Evolution")
	factory.CreateQuiz(t, "economics", "Inflation Basics", "Macroeconomics")

	ctx := context.Background()
	quizzes, err := storage.ListQuizzesBySubject(ctx, "biology")
	require.NoError(t, err)
	assert.Len(t, quizzes, 2)

	quizzes, err = storage.ListQuizzesBySubject(ctx, "history")
	require.NoError(t, err)
	require.NotNil(t, quizzes)
	assert.Empty(t, quizzes)
}

func TestStorage_ListQuestionsByQuiz_PreservesOrder(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	quizUID := factory.CreateQuiz(t, "biology", "Introduction to DNA", "Molecular Biology")

	explanation := "DNA stands for deoxyribonucleic acid."
	q1 := factory.CreateQuestion(t, quizUID, "What does DNA stand for?", "A", &explanation)
	q2 := factory.CreateQuestion(t, quizUID, "Where is DNA found?", "B", nil)
	q3 := factory.CreateQuestion(t, quizUID, "What is a gene?", "C", nil)

	ctx := context.Background()
	questions, err := storage.ListQuestionsByQuiz(ctx, quizUID)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	assert.Equal(t, q1, questions[0].UID)
	assert.Equal(t, q2, questions[1].UID)
	assert.Equal(t, q3, questions[2].UID)

	require.NotNil(t, questions[0].Explanation)
	assert.Equal(t, explanation, *questions[0].Explanation)
	assert.Nil(t, questions[1].Explanation)
}

func TestStorage_GetQuiz_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.GetQuiz(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStorage_AttemptHistory(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "student@example.com", "hashedpassword", "Thabo", models.RoleStudent, true)
	quizUID := factory.CreateQuiz(t, "biology", "Introduction to DNA", "Molecular Biology")

	ctx := context.Background()
	attemptUID, err := storage.CreateAttempt(ctx, models.Attempt{
		UserUID:        userUID,
		QuizUID:        quizUID,
		Score:          3,
		TotalQuestions: 5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, attemptUID)

	attempts, err := storage.ListAttemptsByUser(ctx, userUID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 3, attempts[0].Score)
	assert.Equal(t, 5, attempts[0].TotalQuestions)
	assert.Equal(t, quizUID, attempts[0].QuizUID)
}
