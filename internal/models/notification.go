package models

// SubscriptionActivatedEvent — событие для очереди уведомлений,
// публикуется после успешной оплаты подписки.
type SubscriptionActivatedEvent struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Subjects []string `json:"subjects"`
}
