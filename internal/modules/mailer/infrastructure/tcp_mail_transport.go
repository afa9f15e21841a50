package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"mesaYaMailer/internal/modules/mailer/application/port"
	"mesaYaMailer/internal/modules/mailer/domain"
	"mesaYaMailer/internal/platform/tcp"
)

// ErrMailRejected marks a response the mail service answered but declined.
var ErrMailRejected = errors.New("mail service rejected the request")

// TCPMailTransport implements the synchronous path over the framed client.
type TCPMailTransport struct {
	client *tcp.Client
}

func NewTCPMailTransport(cfg tcp.Config) *TCPMailTransport {
	return &TCPMailTransport{client: tcp.NewClient(cfg, EmailCodec{})}
}

func (t *TCPMailTransport) Send(ctx context.Context, req *domain.EmailRequest) error {
	resp, err := t.client.Send(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		if resp.Message != "" {
			return fmt.Errorf("%w: %s", ErrMailRejected, resp.Message)
		}
		return ErrMailRejected
	}
	return nil
}

var _ port.MailTransport = (*TCPMailTransport)(nil)
