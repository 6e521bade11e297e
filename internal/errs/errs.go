// Package errs определяет доменные ошибки сервиса. Обработчики HTTP
// переводят их в коды ответов, бизнес-логика оперирует только ими.
package errs

import "errors"

var (
	// ErrEmailTaken — на этот email уже зарегистрирован аккаунт.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials — неизвестный email или неверный пароль.
	// Текст намеренно общий, чтобы не раскрывать существование аккаунта.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNoSession — запрос без действующей сессии.
	ErrNoSession = errors.New("not authenticated")

	// ErrNotFound — запрошенная сущность отсутствует.
	ErrNotFound = errors.New("not found")

	// ErrBillingUnavailable — платёжный провайдер не сконфигурирован.
	ErrBillingUnavailable = errors.New("payment system is not configured")
)

// PaymentRequiredError возвращается при верных учётных данных,
// но неоплаченном доступе. Несёт идентификатор пользователя,
// чтобы клиент мог направить его на оплату.
type PaymentRequiredError struct {
	UserUID string
}

func (e *PaymentRequiredError) Error() string {
	return "subscription is not active"
}

// AsPaymentRequired проверяет, является ли err ошибкой неоплаченного доступа.
func AsPaymentRequired(err error) (*PaymentRequiredError, bool) {
	var pre *PaymentRequiredError
	if errors.As(err, &pre) {
		return pre, true
	}
	return nil, false
}
