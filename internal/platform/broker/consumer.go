package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"mesaYaMailer/internal/modules/mailer/domain"
)

// DeliveryConsumer tails the delivery-report topic the mail service writes
// its per-message outcomes to.
type DeliveryConsumer struct {
	reader *kafka.Reader
}

func NewDeliveryConsumer(brokers []string, groupID, topic string) *DeliveryConsumer {
	return &DeliveryConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}),
	}
}

// Consume reads reports until ctx is cancelled. Individual read or handler
// failures are logged and skipped; the loop only stops with the context.
func (c *DeliveryConsumer) Consume(ctx context.Context, handler func(*domain.DeliveryReport) error) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("delivery report read error", slog.Any("error", err))
			continue
		}
		report := decodeReport(m)
		slog.Info("delivery report consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("messageId", report.MessageID),
			slog.String("status", report.Status),
		)
		if err := handler(report); err != nil {
			slog.Warn("delivery report handler error", slog.String("messageId", report.MessageID), slog.Any("error", err))
		}
	}
}

type rawReport struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	Recipient string `json:"recipient"`
	Timestamp string `json:"timestamp"`
}

// decodeReport tolerates malformed values: a report we cannot parse still
// reaches operators as a raw entry instead of being dropped.
func decodeReport(m kafka.Message) *domain.DeliveryReport {
	report := &domain.DeliveryReport{Timestamp: time.Now().UTC()}

	var raw rawReport
	if err := json.Unmarshal(m.Value, &raw); err != nil {
		report.Status = domain.DeliveryStatusUnknown
		report.Reason = strings.TrimSpace(string(m.Value))
		report.MessageID = string(m.Key)
		return report
	}

	report.MessageID = firstNonEmpty(raw.MessageID, string(m.Key))
	report.Status = firstNonEmpty(strings.ToLower(raw.Status), domain.DeliveryStatusUnknown)
	report.Reason = raw.Reason
	report.Recipient = raw.Recipient
	if ts, err := time.Parse(time.RFC3339, raw.Timestamp); err == nil {
		report.Timestamp = ts.UTC()
	}
	return report
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
