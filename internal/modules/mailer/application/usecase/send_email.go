package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mesaYaMailer/internal/modules/mailer/application/port"
	"mesaYaMailer/internal/modules/mailer/domain"
	"mesaYaMailer/internal/shared/retry"
)

// Mode selects the delivery transport for one request.
type Mode string

const (
	// ModeTCP sends synchronously over the framed TCP protocol.
	ModeTCP Mode = "tcp"
	// ModeEvent publishes an event envelope to the broker.
	ModeEvent Mode = "event"
)

var ErrUnknownMode = errors.New("unknown delivery mode")

// ParseMode resolves the request's mode field; empty defaults to tcp.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case "", ModeTCP:
		return ModeTCP, nil
	case ModeEvent:
		return ModeEvent, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
}

// SendOutcome reports how a send ended. Accepted=false after all attempts is
// an outcome, not an error; only invalid input raises one.
type SendOutcome struct {
	Mode      Mode   `json:"mode"`
	Accepted  bool   `json:"accepted"`
	Attempts  int    `json:"attempts"`
	MessageID string `json:"messageId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// SendEmailUseCase validates a request, picks the transport for its mode and
// drives it through the retry orchestrator.
type SendEmailUseCase struct {
	transport   port.MailTransport
	publisher   port.MailPublisher
	maxAttempts int
	retryOpts   []retry.Option
}

func NewSendEmailUseCase(transport port.MailTransport, publisher port.MailPublisher, maxAttempts int, retryOpts ...retry.Option) *SendEmailUseCase {
	if maxAttempts <= 0 {
		maxAttempts = retry.DefaultMaxAttempts
	}
	return &SendEmailUseCase{
		transport:   transport,
		publisher:   publisher,
		maxAttempts: maxAttempts,
		retryOpts:   retryOpts,
	}
}

// Execute runs one logical send. Validation failures return an error before
// any attempt; everything after validation collapses into the outcome.
func (uc *SendEmailUseCase) Execute(ctx context.Context, req *domain.EmailRequest, mode Mode) (*SendOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	switch mode {
	case ModeTCP:
		return uc.sendDirect(ctx, req), nil
	case ModeEvent:
		return uc.sendEvent(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func (uc *SendEmailUseCase) sendDirect(ctx context.Context, req *domain.EmailRequest) *SendOutcome {
	attempts := 0
	var lastErr error
	op := func(ctx context.Context) bool {
		attempts++
		if err := uc.transport.Send(ctx, req); err != nil {
			lastErr = err
			slog.Warn("direct send attempt failed",
				slog.Int("attempt", attempts),
				slog.String("recipient", req.To.Primary()),
				slog.Any("error", err),
			)
			return false
		}
		return true
	}

	outcome := &SendOutcome{Mode: ModeTCP, Attempts: 0}
	outcome.Accepted = retry.Do(ctx, op, uc.maxAttempts, uc.retryOpts...)
	outcome.Attempts = attempts
	if !outcome.Accepted && lastErr != nil {
		outcome.Reason = lastErr.Error()
	}
	return outcome
}

func (uc *SendEmailUseCase) sendEvent(ctx context.Context, req *domain.EmailRequest) (*SendOutcome, error) {
	// Prepared once so the message id stays stable across retries.
	prepared, err := uc.publisher.Prepare(req)
	if err != nil {
		return nil, fmt.Errorf("prepare event: %w", err)
	}

	attempts := 0
	op := func(ctx context.Context) bool {
		attempts++
		return uc.publisher.Send(ctx, prepared)
	}

	outcome := &SendOutcome{Mode: ModeEvent, MessageID: prepared.MessageID()}
	outcome.Accepted = retry.Do(ctx, op, uc.maxAttempts, uc.retryOpts...)
	outcome.Attempts = attempts
	if !outcome.Accepted {
		outcome.Reason = "event publish attempts exhausted"
	}
	return outcome, nil
}
