package infrastructure

import (
	"fmt"

	"mesaYaMailer/internal/modules/mailer/domain"
	"mesaYaMailer/internal/platform/tcp"
)

// PatternEmailSend is the remote operation the mail service routes send
// requests on.
const PatternEmailSend = "email.send"

// EmailCodec maps EmailRequest onto the wire envelope and decodes the mail
// service's responses leniently.
type EmailCodec struct{}

func (EmailCodec) TransformRequest(payload any) (string, any, error) {
	req, ok := payload.(*domain.EmailRequest)
	if !ok {
		return "", nil, fmt.Errorf("email codec: unsupported payload type %T", payload)
	}
	return PatternEmailSend, req.Normalized(), nil
}

func (EmailCodec) ParseResponse(raw []byte) (*tcp.Response, error) {
	return tcp.ParseLenientResponse(raw)
}

var _ tcp.Codec = EmailCodec{}
