// Package sender отправляет почтовые уведомления по событиям
// из очереди: подтверждение активации подписки.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tsmartminds/smartminds/internal/lib/sl"
	smtplib "github.com/tsmartminds/smartminds/internal/lib/smtp"
	"github.com/tsmartminds/smartminds/internal/models"
)

// Transport описывает контракт SMTP-транспорта.
type Transport interface {
	Connect() (smtplib.Client, error)
	GetSMTPUser() string
}

// Service отправляет письма по событиям очереди уведомлений.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport Transport, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendSubscriptionActivated отправляет письмо-подтверждение оплаты.
// body — сырое сообщение из очереди.
func (s *Service) SendSubscriptionActivated(body []byte) error {
	var event models.SubscriptionActivatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your Smart Minds subscription is active"
	bodyText := fmt.Sprintf("Hi %s!\n\nYour subscription is now active.\nSubjects: %s.\n\nLog in to your dashboard to start learning.",
		event.Name, strings.Join(event.Subjects, ", "))

	return s.send(event.Email, subject, bodyText)
}

func (s *Service) send(to, subject, bodyText string) error {
	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp: %w", err)
	}
	defer func() {
		if quitErr := client.Quit(); quitErr != nil {
			s.log.Error("failed to quit smtp client", sl.Err(quitErr))
		}
	}()

	from := s.transport.GetSMTPUser()
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, bodyText)
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	s.log.Info("notification email sent", slog.String("to", to))
	return nil
}
