package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID
func (f *TestDataFactory) CreateUser(t *testing.T, email, passwordHash, name, role string, isPaid bool) string {
	t.Helper()
	uid := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, email, password_hash, name, role, is_paid)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uid, email, passwordHash, name, role, isPaid)
	require.NoError(t, err)
	return uid
}

// CreateQuiz создает тестовый тест и возвращает его UID
func (f *TestDataFactory) CreateQuiz(t *testing.T, subjectID, title, topic string) string {
	t.Helper()
	uid := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO quizzes (uid, subject_id, title, topic)
		VALUES ($1, $2, $3, $4)`,
		uid, subjectID, title, topic)
	require.NoError(t, err)
	return uid
}

// CreateQuestion создает тестовый вопрос и возвращает его UID
func (f *TestDataFactory) CreateQuestion(t *testing.T, quizUID, question, correctAnswer string, explanation *string) string {
	t.Helper()
	uid := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO quiz_questions
		(uid, quiz_uid, question, option_a, option_b, option_c, option_d, correct_answer, explanation)
		VALUES ($1, $2, $3, 'Option A', 'Option B', 'Option C', 'Option D', $4, $5)`,
		uid, quizUID, question, correctAnswer, explanation)
	require.NoError(t, err)
	return uid
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyUserPaidStatus проверяет флаг платного доступа пользователя
func (v *TestVerification) VerifyUserPaidStatus(t *testing.T, userUID string, expected bool) {
	t.Helper()
	var isPaid bool
	err := v.storage.DB.QueryRow("SELECT is_paid FROM users WHERE uid = $1", userUID).Scan(&isPaid)
	require.NoError(t, err)
	require.Equal(t, expected, isPaid)
}

// VerifySubscriptionStatus проверяет статус последней подписки пользователя
func (v *TestVerification) VerifySubscriptionStatus(t *testing.T, userUID, expectedStatus string) {
	t.Helper()
	var status string
	err := v.storage.DB.QueryRow(`SELECT status FROM subscriptions
		WHERE user_uid = $1 ORDER BY created_at DESC LIMIT 1`, userUID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute)),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	_, err = storage.DB.Exec(`
        DROP TABLE IF EXISTS quiz_attempts CASCADE;
        DROP TABLE IF EXISTS quiz_questions CASCADE;
        DROP TABLE IF EXISTS quizzes CASCADE;
        DROP TABLE IF EXISTS subscriptions CASCADE;
        DROP TABLE IF EXISTS users CASCADE;

        CREATE EXTENSION IF NOT EXISTS "pgcrypto";

        CREATE TABLE users (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            name TEXT NOT NULL,
            phone TEXT,
            role TEXT NOT NULL DEFAULT 'student',
            stripe_customer_id TEXT,
            is_paid BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE subscriptions (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_uid UUID NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
            stripe_subscription_id TEXT,
            status TEXT NOT NULL DEFAULT 'inactive',
            subjects JSONB,
            current_period_start TIMESTAMPTZ,
            current_period_end TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE quizzes (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            subject_id TEXT NOT NULL,
            title TEXT NOT NULL,
            topic TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE quiz_questions (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            quiz_uid UUID NOT NULL REFERENCES quizzes(uid) ON DELETE CASCADE,
            seq BIGSERIAL,
            question TEXT NOT NULL,
            option_a TEXT NOT NULL,
            option_b TEXT NOT NULL,
            option_c TEXT NOT NULL,
            option_d TEXT NOT NULL,
            correct_answer TEXT NOT NULL CHECK (correct_answer IN ('A', 'B', 'C', 'D')),
            explanation TEXT
        );

        CREATE TABLE quiz_attempts (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_uid UUID NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
            quiz_uid UUID NOT NULL REFERENCES quizzes(uid) ON DELETE CASCADE,
            score INT NOT NULL CHECK (score >= 0),
            total_questions INT NOT NULL,
            completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE INDEX idx_users_stripe_customer_id ON users(stripe_customer_id);
        CREATE INDEX idx_subscriptions_user_uid ON subscriptions(user_uid);
        CREATE INDEX idx_quizzes_subject_id ON quizzes(subject_id);
        CREATE INDEX idx_quiz_questions_quiz_uid ON quiz_questions(quiz_uid);
        CREATE INDEX idx_quiz_attempts_user_uid ON quiz_attempts(user_uid);
    `)
	require.NoError(t, err, "Failed to create tables")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if postgresContainer != nil {
			_ = postgresContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}
