package broker

import (
	"context"
	"log/slog"

	"mesaYaMailer/internal/modules/mailer/domain"
)

// StartDeliveryConsumer runs the delivery-report consumer in the background,
// feeding each report into the supplied handler. A missing broker or topic
// configuration disables the stream rather than failing startup; the gateway
// can still accept and forward mail without it.
func StartDeliveryConsumer(
	ctx context.Context,
	brokers []string,
	groupID string,
	topic string,
	handler func(*domain.DeliveryReport) error,
) {
	if len(brokers) == 0 || topic == "" {
		slog.Info("delivery report stream disabled", slog.Any("brokers", brokers), slog.String("topic", topic))
		return
	}
	go func() {
		consumer := NewDeliveryConsumer(brokers, groupID, topic)
		if err := consumer.Consume(ctx, handler); err != nil && ctx.Err() == nil {
			slog.Error("delivery report consumer stopped", slog.Any("error", err))
		}
	}()
}
