// Package models содержит доменные структуры платформы: пользователей,
// подписки, викторины и попытки их прохождения. Структуры используются
// в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID              string     // Уникальный идентификатор пользователя
	Email            string     // Электронная почта (уникальная)
	PasswordHash     string     // Хэш пароля пользователя
	Name             string     // Отображаемое имя
	Phone            *string    // Телефон (необязательный)
	Role             string     // Роль пользователя: student или teacher
	StripeCustomerID *string    // Идентификатор клиента в Stripe
	IsPaid           bool       // Флаг оплаченного доступа
	CreatedAt        time.Time  // Дата регистрации
}

// PublicUser — представление пользователя, отдаваемое клиенту.
// Хэш пароля наружу не выходит никогда.
type PublicUser struct {
	UID    string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	IsPaid bool   `json:"isPaid"`
}

// Public возвращает публичное представление пользователя.
func (u *User) Public() PublicUser {
	return PublicUser{
		UID:    u.UID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
		IsPaid: u.IsPaid,
	}
}

// HasPaidAccess сообщает, открыт ли пользователю платный раздел.
// Преподаватели проходят без подписки.
func (u *User) HasPaidAccess() bool {
	return u.IsPaid || u.Role == RoleTeacher
}
