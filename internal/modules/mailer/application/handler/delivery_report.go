package handler

import (
	"context"

	"mesaYaMailer/internal/modules/mailer/application/port"
	"mesaYaMailer/internal/modules/mailer/domain"
)

// DeliveryReportHandler forwards consumed delivery reports to the operator
// stream.
type DeliveryReportHandler struct {
	broadcaster port.Broadcaster
}

func NewDeliveryReportHandler(broadcaster port.Broadcaster) *DeliveryReportHandler {
	return &DeliveryReportHandler{broadcaster: broadcaster}
}

func (h *DeliveryReportHandler) Handle(ctx context.Context, report *domain.DeliveryReport) error {
	h.broadcaster.Broadcast(ctx, report)
	return nil
}
