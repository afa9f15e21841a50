package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingRecipient = errors.New("email request has no recipient")
	ErrMissingSubject   = errors.New("email request has no subject")
	ErrEmptyBody        = errors.New("email request has neither body nor template")
)

// EmailRequest is the payload delivered to the mail service. Template and
// Variables are opaque to the gateway; the mail service resolves them.
type EmailRequest struct {
	To        Recipient      `json:"to"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body,omitempty"`
	Template  string         `json:"template,omitempty"`
	Variables map[string]any `json:"variables,omitempty"`
	TenantID  string         `json:"tenantId,omitempty"`
}

// Validate enforces the minimum the mail service will accept.
func (r *EmailRequest) Validate() error {
	if r.To.Normalized().IsZero() {
		return ErrMissingRecipient
	}
	if strings.TrimSpace(r.Subject) == "" {
		return ErrMissingSubject
	}
	if strings.TrimSpace(r.Body) == "" && strings.TrimSpace(r.Template) == "" {
		return ErrEmptyBody
	}
	return nil
}

// Normalized returns a copy with canonical recipient addresses.
func (r *EmailRequest) Normalized() *EmailRequest {
	out := *r
	out.To = r.To.Normalized()
	return &out
}

// Delivery report statuses as emitted by the mail service. Unknown covers
// values this gateway has never heard of; they still reach operators.
const (
	DeliveryStatusAccepted = "accepted"
	DeliveryStatusSent     = "sent"
	DeliveryStatusBounced  = "bounced"
	DeliveryStatusFailed   = "failed"
	DeliveryStatusUnknown  = "unknown"
)

// DeliveryReport is one per-message outcome consumed from the delivery-report
// topic and streamed to operators.
type DeliveryReport struct {
	MessageID string    `json:"messageId"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Recipient string    `json:"recipient,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
