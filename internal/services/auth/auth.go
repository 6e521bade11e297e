// Package auth содержит бизнес-логику регистрации, входа и выхода
// пользователей, включая проверку оплаченного доступа.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/lib/password"
	"github.com/tsmartminds/smartminds/internal/models"
	"github.com/tsmartminds/smartminds/internal/session"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или errs.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUser возвращает пользователя по UID или errs.ErrNotFound.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// SessionStore описывает контракт хранилища сессий.
type SessionStore interface {
	Create(ctx context.Context, data session.Data) (string, error)
	Get(ctx context.Context, token string) (*session.Data, bool, error)
	Destroy(ctx context.Context, token string) error
}

// Service отвечает за регистрацию, вход, выход и определение
// текущего пользователя.
type Service struct {
	users    UserRepository
	sessions SessionStore
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, sessions SessionStore, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		log:      log,
	}
}

// Register создаёт нового пользователя с ролью student и закрытым
// платным доступом. Пароль хэшируется до записи, открытый текст
// нигде не сохраняется. Возвращает UID нового пользователя.
func (s *Service) Register(ctx context.Context, email, rawPassword, name string, phone *string) (string, error) {
	const op = "auth.Register"

	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		Name:         name,
		Phone:        phone,
		Role:         models.RoleStudent,
		IsPaid:       false,
	}
	newUID, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// Login проверяет учётные данные и платный доступ.
//
// Неизвестный email и неверный пароль дают одну и ту же ошибку
// errs.ErrInvalidCredentials, чтобы нельзя было перебором выяснить,
// зарегистрирован ли адрес. Верные учётные данные без оплаченного
// доступа (и не у преподавателя) дают errs.PaymentRequiredError
// с UID пользователя. При полном успехе создаётся сессия и
// возвращается её токен вместе с пользователем.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, "", errs.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.Compare(user.PasswordHash, rawPassword); err != nil {
		return nil, "", errs.ErrInvalidCredentials
	}

	if !user.HasPaidAccess() {
		return nil, "", &errs.PaymentRequiredError{UserUID: user.UID}
	}

	token, err := s.sessions.Create(ctx, session.Data{
		UserUID: user.UID,
		Role:    user.Role,
		IsPaid:  user.IsPaid,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.String("user_uid", user.UID))
	return user, token, nil
}

// Logout уничтожает сессию по токену. Отсутствие сессии не ошибка.
func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "auth.Logout"
	if token == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CurrentUser возвращает пользователя по токену сессии.
// Без действующей сессии возвращает errs.ErrNoSession.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.CurrentUser"

	if token == "" {
		return nil, errs.ErrNoSession
	}
	data, found, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, errs.ErrNoSession
	}

	user, err := s.users.GetUser(ctx, data.UserUID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrNoSession
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
