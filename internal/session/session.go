// Package session реализует серверные сессии поверх Redis.
//
// Сессия создаётся при успешном входе и живёт фиксированные семь дней
// с момента выдачи: TTL не продлевается при обращениях. Ключом служит
// случайный токен, который уходит клиенту в HTTP-only куке. Выход из
// системы удаляет запись, после чего токен бесполезен.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Data — полезная нагрузка сессии: кто вошёл и с какими правами.
type Data struct {
	UserUID string `json:"user_uid"`
	Role    string `json:"role"`
	IsPaid  bool   `json:"is_paid"`
}

// Backend описывает контракт хранилища сессий.
type Backend interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Store выдаёт, находит и уничтожает сессии.
type Store struct {
	backend Backend
	ttl     time.Duration
}

// New создаёт Store с фиксированным временем жизни сессий.
func New(backend Backend, ttl time.Duration) *Store {
	return &Store{
		backend: backend,
		ttl:     ttl,
	}
}

const keyPrefix = "session:"

// Create выпускает новую сессию и возвращает её токен.
func (s *Store) Create(ctx context.Context, data Data) (string, error) {
	const op = "session.Create"

	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.backend.Set(ctx, keyPrefix+token, data, s.ttl); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Get возвращает данные сессии по токену. Второе значение — false,
// если сессии нет или она истекла.
func (s *Store) Get(ctx context.Context, token string) (*Data, bool, error) {
	const op = "session.Get"

	var data Data
	found, err := s.backend.Get(ctx, keyPrefix+token, &data)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, false, nil
	}
	return &data, true, nil
}

// Destroy удаляет сессию. Удаление несуществующего токена не ошибка.
func (s *Store) Destroy(ctx context.Context, token string) error {
	const op = "session.Destroy"
	if err := s.backend.Invalidate(ctx, keyPrefix+token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// TTL возвращает срок жизни выдаваемых сессий.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Токен — 32 случайных байта в hex: непредсказуемый bearer-секрет,
// а не идентификатор, поэтому не uuid.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
