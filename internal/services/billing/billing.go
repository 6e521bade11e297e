// Package billing содержит бизнес-логику оплаты подписок: создание
// checkout-сессий Stripe и обработку событий вебхуков провайдера.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v78"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
	"github.com/tsmartminds/smartminds/internal/models"
	"github.com/tsmartminds/smartminds/internal/rabbitmq"
)

// Обрабатываемые типы событий Stripe. Остальные подтверждаются
// и игнорируются.
const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventSubscriptionCanceled = "customer.subscription.deleted"
)

// Repository описывает операции хранилища, нужные биллингу.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	UpdateUserPaidStatus(ctx context.Context, userUID string, isPaid bool) error
	UpdateUserStripeCustomerID(ctx context.Context, userUID, customerID string) error
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
	GetSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error)
	CountActiveSubscriptions(ctx context.Context, userUID string) (int, error)
	UpdateSubscriptionStatusByUser(ctx context.Context, userUID, status string) (int, error)
}

// ProviderClient описывает операции платёжного провайдера.
type ProviderClient interface {
	CreateCustomer(ctx context.Context, userUID, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, userUID string, subjects []string, origin string) (string, error)
}

// Publisher публикует события в очередь уведомлений.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service реализует операции биллинга. Publisher может быть nil —
// тогда уведомления не отправляются.
type Service struct {
	repo      Repository
	provider  ProviderClient
	publisher Publisher
	log       *slog.Logger
}

// New создает новый экземпляр Service. provider равен nil, когда
// платёжный провайдер не сконфигурирован.
func New(repo Repository, provider ProviderClient, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		log:       log,
	}
}

// Configured сообщает, настроен ли платёжный провайдер.
func (s *Service) Configured() bool {
	return s.provider != nil
}

// CreateCheckoutSession создаёт checkout-сессию подписки для пользователя
// и возвращает URL платёжной страницы. При отсутствии у пользователя
// клиента Stripe он создаётся и сохраняется.
func (s *Service) CreateCheckoutSession(ctx context.Context, userUID string, subjects []string, origin string) (string, error) {
	const op = "billing.CreateCheckoutSession"

	if s.provider == nil {
		return "", errs.ErrBillingUnavailable
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var customerID string
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	} else {
		customerID, err = s.provider.CreateCustomer(ctx, user.UID, user.Email, user.Name)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if err = s.repo.UpdateUserStripeCustomerID(ctx, user.UID, customerID); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	url, err := s.provider.CreateCheckoutSession(ctx, customerID, user.UID, subjects, origin)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}

// GetSubscription возвращает последнюю подписку пользователя
// или errs.ErrNotFound, если подписок ещё не было.
func (s *Service) GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "billing.GetSubscription"

	sub, err := s.repo.GetSubscriptionByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ProcessEvent обрабатывает проверенное событие вебхука Stripe.
// Вызывающий обязан убедиться в подлинности события до вызова.
func (s *Service) ProcessEvent(ctx context.Context, event stripe.Event) error {
	const op = "billing.ProcessEvent"

	switch string(event.Type) {
	case EventCheckoutCompleted:
		var checkoutSession stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.handleCheckoutCompleted(ctx, &checkoutSession)
	case EventSubscriptionCanceled:
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.handleSubscriptionCanceled(ctx, &subscription)
	default:
		s.log.Info("ignored webhook event", slog.String("event", string(event.Type)))
		return nil
	}
}

// handleCheckoutCompleted открывает платный доступ и фиксирует подписку.
func (s *Service) handleCheckoutCompleted(ctx context.Context, checkoutSession *stripe.CheckoutSession) error {
	const op = "billing.handleCheckoutCompleted"

	userUID := checkoutSession.Metadata["userId"]
	if userUID == "" {
		s.log.Error("checkout session without user metadata",
			slog.String("session_id", checkoutSession.ID))
		return nil
	}

	var subjects []string
	if raw := checkoutSession.Metadata["subjects"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &subjects); err != nil {
			s.log.Error("failed to parse subjects metadata", sl.Err(err))
		}
	}

	if err := s.repo.UpdateUserPaidStatus(ctx, userUID, true); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Инвариант: у пользователя не больше одной активной подписки.
	// Повторная оплата заменяет прежнюю, а не дублирует её.
	active, err := s.repo.CountActiveSubscriptions(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if active > 0 {
		if _, err := s.repo.UpdateSubscriptionStatusByUser(ctx, userUID, models.SubscriptionInactive); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	sub := models.Subscription{
		UserUID:  userUID,
		Status:   models.SubscriptionActive,
		Subjects: subjects,
	}
	if checkoutSession.Subscription != nil {
		sub.StripeSubscriptionID = &checkoutSession.Subscription.ID
	}
	if _, err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("paid access granted",
		slog.String("user_uid", userUID),
		slog.Any("subjects", subjects))

	s.notifyActivated(ctx, userUID, subjects)
	return nil
}

// handleSubscriptionCanceled закрывает платный доступ. Пользователь
// находится по идентификатору клиента Stripe.
func (s *Service) handleSubscriptionCanceled(ctx context.Context, subscription *stripe.Subscription) error {
	const op = "billing.handleSubscriptionCanceled"

	if subscription.Customer == nil {
		s.log.Error("subscription event without customer")
		return nil
	}

	user, err := s.repo.GetUserByStripeCustomerID(ctx, subscription.Customer.ID)
	if err != nil {
		// Неизвестный клиент подтверждается без действий, иначе
		// Stripe будет бесконечно повторять доставку события.
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Error("subscription event for unknown customer",
				slog.String("customer_id", subscription.Customer.ID))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateUserPaidStatus(ctx, user.UID, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.UpdateSubscriptionStatusByUser(ctx, user.UID, models.SubscriptionInactive); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("paid access revoked", slog.String("user_uid", user.UID))
	return nil
}

// notifyActivated публикует событие для письма-подтверждения.
// Ошибки публикации только логируются: ответ вебхука Stripe от них
// не зависит.
func (s *Service) notifyActivated(ctx context.Context, userUID string, subjects []string) {
	if s.publisher == nil {
		return
	}
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		s.log.Error("failed to load user for notification", sl.Err(err))
		return
	}
	event := models.SubscriptionActivatedEvent{
		Email:    user.Email,
		Name:     user.Name,
		Subjects: subjects,
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeySubscriptionActivated, event); err != nil {
		s.log.Error("failed to publish notification", sl.Err(err))
	}
}
