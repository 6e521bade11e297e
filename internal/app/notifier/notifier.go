// Package notifier собирает и запускает сервис почтовых уведомлений:
// потребляет события из очереди и отправляет письма через SMTP.
package notifier

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/tsmartminds/smartminds/internal/config"
	"github.com/tsmartminds/smartminds/internal/lib/sl"
	smtplib "github.com/tsmartminds/smartminds/internal/lib/smtp"
	"github.com/tsmartminds/smartminds/internal/rabbitmq"
	senderservice "github.com/tsmartminds/smartminds/internal/services/sender"
)

// App — собранный сервис уведомлений.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New собирает сервис уведомлений из конфигурации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.AddressRabbit, cfg.RabbitMQ.ConnectRetries, cfg.RabbitMQ.ConnectDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtplib.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.New(transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителя очереди и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.Consume(ctx, a.ch, rabbitmq.QueueSubscriptionActivated, a.senderService.SendSubscriptionActivated, a.logger)
	if err != nil {
		a.logger.Error("queue consumer stopped with error", sl.Err(err))
		return err
	}

	a.logger.Info("notifier service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
