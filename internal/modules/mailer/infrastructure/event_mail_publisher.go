package infrastructure

import (
	"context"
	"fmt"

	"mesaYaMailer/internal/modules/mailer/application/port"
	"mesaYaMailer/internal/modules/mailer/domain"
	"mesaYaMailer/internal/platform/broker"
	"mesaYaMailer/internal/shared/normalization"
)

// EventTypeEmailRequested is the envelope event type this gateway publishes.
const EventTypeEmailRequested = "email.requested"

// EventMailPublisher implements the asynchronous path by binding the generic
// broker publisher to email semantics: recipients are normalized before the
// envelope is built, and the first recipient becomes the delivery key so all
// mail for one address stays ordered.
type EventMailPublisher struct {
	publisher *broker.Publisher
}

func NewEventMailPublisher(cfg broker.PublisherConfig) *EventMailPublisher {
	cfg.EventType = EventTypeEmailRequested
	cfg.Transform = func(payload any) any {
		if req, ok := payload.(*domain.EmailRequest); ok {
			return req.Normalized()
		}
		return payload
	}
	cfg.Key = func(payload any) string {
		if req, ok := payload.(*domain.EmailRequest); ok {
			return normalization.DeliveryKey(req.To.Addresses())
		}
		return ""
	}
	return &EventMailPublisher{publisher: broker.NewPublisher(cfg)}
}

func (p *EventMailPublisher) Prepare(req *domain.EmailRequest) (port.PreparedEvent, error) {
	return p.publisher.Prepare(req, req.TenantID, "")
}

func (p *EventMailPublisher) Send(ctx context.Context, ev port.PreparedEvent) bool {
	msg, ok := ev.(*broker.PreparedMessage)
	if !ok {
		// A foreign PreparedEvent implementation cannot be replayed here.
		return false
	}
	return p.publisher.Send(ctx, msg)
}

// Close flushes unacknowledged sends before releasing the broker channel.
func (p *EventMailPublisher) Close(ctx context.Context) error {
	if err := p.publisher.Close(ctx); err != nil {
		return fmt.Errorf("close mail publisher: %w", err)
	}
	return nil
}

var _ port.MailPublisher = (*EventMailPublisher)(nil)
