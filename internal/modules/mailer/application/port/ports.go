package port

import (
	"context"

	"mesaYaMailer/internal/modules/mailer/domain"
)

// MailTransport is the synchronous request/response path to the mail service.
// A nil error means the service accepted the request.
type MailTransport interface {
	Send(ctx context.Context, req *domain.EmailRequest) error
}

// PreparedEvent is one logical publish whose envelope and message id are
// fixed; re-sending it retries the same physical message.
type PreparedEvent interface {
	MessageID() string
	Key() string
}

// MailPublisher is the asynchronous path: prepare once, send (and re-send)
// under the retry orchestrator. Send never raises; it only reports.
type MailPublisher interface {
	Prepare(req *domain.EmailRequest) (PreparedEvent, error)
	Send(ctx context.Context, ev PreparedEvent) bool
}

// Broadcaster fans delivery reports out to connected operator streams.
type Broadcaster interface {
	Broadcast(ctx context.Context, report *domain.DeliveryReport)
}
