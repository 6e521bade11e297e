// Package paymentprovider инкапсулирует работу со Stripe: создание
// клиентов, создание checkout-сессий подписки и проверку подписи вебхуков.
// Остальной код сервиса со Stripe SDK напрямую не работает.
package paymentprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Ключ метаданных, связывающий сущности Stripe с пользователем платформы.
const metadataUserUIDKey = "user_uid"

// Цена за один предмет в месяц, в центах ZAR.
const pricePerSubjectCents = 25000

// Client обёртка над Stripe SDK.
type Client struct {
	api           *client.API
	webhookSecret string
	log           *slog.Logger
}

// New создаёт клиент Stripe. Вызывается только при заданном секретном ключе.
func New(secretKey, webhookSecret string, log *slog.Logger) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{
		api:           api,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// CreateCustomer создаёт клиента в Stripe с привязкой к пользователю
// через метаданные и возвращает его Stripe ID.
func (c *Client) CreateCustomer(ctx context.Context, userUID, email, name string) (string, error) {
	const op = "paymentprovider.CreateCustomer"

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata(metadataUserUIDKey, userUID)

	cus, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info("stripe customer created",
		slog.String("customer_id", cus.ID),
		slog.String("user_uid", userUID))
	return cus.ID, nil
}

// CreateCheckoutSession создаёт checkout-сессию подписки на выбранные
// предметы и возвращает URL платёжной страницы Stripe.
func (c *Client) CreateCheckoutSession(ctx context.Context, customerID, userUID string, subjects []string, origin string) (string, error) {
	const op = "paymentprovider.CreateCheckoutSession"

	subjectsJSON, err := json.Marshal(subjects)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("zar"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("Smart Minds Subscription - %d Subject(s)", len(subjects))),
						Description: stripe.String(strings.Join(subjects, ", ")),
					},
					UnitAmount: stripe.Int64(int64(len(subjects)) * pricePerSubjectCents),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String("month"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(origin + "/payment-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(origin + "/pricing"),
	}
	params.Context = ctx
	params.AddMetadata("userId", userUID)
	params.AddMetadata("subjects", string(subjectsJSON))

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info("stripe checkout session created",
		slog.String("session_id", sess.ID),
		slog.String("user_uid", userUID))
	return sess.URL, nil
}

// ConstructEvent проверяет подпись вебхука и разбирает событие.
// При неверной подписи событие не возвращается — никакие мутации
// состояния по нему невозможны.
func (c *Client) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	const op = "paymentprovider.ConstructEvent"
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return event, nil
}
