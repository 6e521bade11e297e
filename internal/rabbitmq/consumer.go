package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/tsmartminds/smartminds/internal/lib/sl"
)

// HandlerFunc обрабатывает тело одного сообщения очереди.
type HandlerFunc func(body []byte) error

// Consume читает сообщения из очереди и передаёт их обработчику
// до отмены контекста. Сообщение подтверждается только после успешной
// обработки, при ошибке возвращается в очередь.
func Consume(ctx context.Context, ch *amqp.Channel, queue string, handler HandlerFunc, log *slog.Logger) error {
	const op = "rabbitmq.Consume"

	deliveries, err := ch.Consume(
		queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("%s: delivery channel closed", op)
			}
			if err := handler(d.Body); err != nil {
				log.Error("failed to handle message", sl.Err(err))
				if nackErr := d.Nack(false, true); nackErr != nil {
					log.Error("failed to nack message", sl.Err(nackErr))
				}
				continue
			}
			if ackErr := d.Ack(false); ackErr != nil {
				log.Error("failed to ack message", sl.Err(ackErr))
			}
		}
	}
}
