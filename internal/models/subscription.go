package models

import "time"

// Статусы подписки. Провайдер может присылать и другие значения,
// они сохраняются как есть.
const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
)

// Subscription представляет подписку пользователя на набор предметов.
type Subscription struct {
	UID                  string     `json:"id"`
	UserUID              string     `json:"userId"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId,omitempty"`
	Status               string     `json:"status"`
	Subjects             []string   `json:"subjects"`
	CurrentPeriodStart   *time.Time `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}
