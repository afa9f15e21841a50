package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"mesaYaMailer/internal/modules/mailer/application/port"
	"mesaYaMailer/internal/modules/mailer/domain"
	"mesaYaMailer/internal/shared/retry"
)

type fakeTransport struct {
	failures int
	calls    int
}

func (f *fakeTransport) Send(ctx context.Context, req *domain.EmailRequest) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connect refused")
	}
	return nil
}

type fakePrepared struct{ id, key string }

func (p fakePrepared) MessageID() string { return p.id }
func (p fakePrepared) Key() string       { return p.key }

type fakePublisher struct {
	prepareErr error
	failures   int
	sends      int
	sentIDs    []string
}

func (f *fakePublisher) Prepare(req *domain.EmailRequest) (port.PreparedEvent, error) {
	if f.prepareErr != nil {
		return nil, f.prepareErr
	}
	return fakePrepared{id: "m-1", key: req.To.Primary()}, nil
}

func (f *fakePublisher) Send(ctx context.Context, ev port.PreparedEvent) bool {
	f.sends++
	f.sentIDs = append(f.sentIDs, ev.MessageID())
	return f.sends > f.failures
}

func validRequest() *domain.EmailRequest {
	return &domain.EmailRequest{
		To:      domain.SingleRecipient("user@example.com"),
		Subject: "Hi",
		Body:    "hello",
	}
}

func fastRetry() retry.Option {
	return retry.WithBaseDelay(time.Millisecond)
}

func TestExecuteDirectRetriesThenSucceeds(t *testing.T) {
	transport := &fakeTransport{failures: 2}
	uc := NewSendEmailUseCase(transport, &fakePublisher{}, 3, fastRetry())

	outcome, err := uc.Execute(context.Background(), validRequest(), ModeTCP)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !outcome.Accepted {
		t.Fatal("expected acceptance on third attempt")
	}
	if outcome.Attempts != 3 || transport.calls != 3 {
		t.Fatalf("expected 3 attempts, outcome=%d transport=%d", outcome.Attempts, transport.calls)
	}
	if outcome.Mode != ModeTCP {
		t.Fatalf("unexpected mode %s", outcome.Mode)
	}
}

func TestExecuteDirectExhaustion(t *testing.T) {
	transport := &fakeTransport{failures: 10}
	uc := NewSendEmailUseCase(transport, &fakePublisher{}, 3, fastRetry())

	outcome, err := uc.Execute(context.Background(), validRequest(), ModeTCP)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if outcome.Accepted {
		t.Fatal("expected exhaustion")
	}
	if outcome.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", outcome.Attempts)
	}
	if outcome.Reason == "" {
		t.Fatal("exhausted outcome must carry the last failure reason")
	}
}

func TestExecuteEventStableMessageID(t *testing.T) {
	publisher := &fakePublisher{failures: 2}
	uc := NewSendEmailUseCase(&fakeTransport{}, publisher, 3, fastRetry())

	outcome, err := uc.Execute(context.Background(), validRequest(), ModeEvent)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !outcome.Accepted {
		t.Fatal("expected acceptance")
	}
	if outcome.MessageID != "m-1" {
		t.Fatalf("outcome missing message id: %q", outcome.MessageID)
	}
	if len(publisher.sentIDs) != 3 {
		t.Fatalf("expected 3 send attempts, got %d", len(publisher.sentIDs))
	}
	for _, id := range publisher.sentIDs {
		if id != "m-1" {
			t.Fatalf("message id must stay stable across retries: %v", publisher.sentIDs)
		}
	}
}

func TestExecutePrepareFailureIsError(t *testing.T) {
	publisher := &fakePublisher{prepareErr: errors.New("cyclic payload")}
	uc := NewSendEmailUseCase(&fakeTransport{}, publisher, 3, fastRetry())

	if _, err := uc.Execute(context.Background(), validRequest(), ModeEvent); err == nil {
		t.Fatal("prepare failure must surface as an error, not an outcome")
	}
}

func TestExecuteValidation(t *testing.T) {
	uc := NewSendEmailUseCase(&fakeTransport{}, &fakePublisher{}, 3, fastRetry())

	_, err := uc.Execute(context.Background(), &domain.EmailRequest{Subject: "Hi", Body: "x"}, ModeTCP)
	if !errors.Is(err, domain.ErrMissingRecipient) {
		t.Fatalf("expected missing recipient, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	if mode, err := ParseMode(""); err != nil || mode != ModeTCP {
		t.Fatalf("empty must default to tcp, got %s %v", mode, err)
	}
	if mode, err := ParseMode("event"); err != nil || mode != ModeEvent {
		t.Fatalf("unexpected %s %v", mode, err)
	}
	if _, err := ParseMode("carrier-pigeon"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected unknown mode error, got %v", err)
	}
}
