package broker

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"mesaYaMailer/internal/modules/mailer/domain"
)

func TestDecodeReport(t *testing.T) {
	m := kafka.Message{
		Topic: "mesa-ya.email-deliveries",
		Key:   []byte("fallback-id"),
		Value: []byte(`{"messageId":"m-1","status":"SENT","reason":"","recipient":"a@b.c","timestamp":"2026-08-30T10:00:00Z"}`),
	}

	report := decodeReport(m)
	if report.MessageID != "m-1" {
		t.Fatalf("unexpected message id %q", report.MessageID)
	}
	if report.Status != domain.DeliveryStatusSent {
		t.Fatalf("status not lower-cased: %q", report.Status)
	}
	if report.Recipient != "a@b.c" {
		t.Fatalf("unexpected recipient %q", report.Recipient)
	}
	want := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	if !report.Timestamp.Equal(want) {
		t.Fatalf("timestamp mismatch: %s", report.Timestamp)
	}
}

func TestDecodeReportFallsBackToKey(t *testing.T) {
	m := kafka.Message{
		Key:   []byte("m-2"),
		Value: []byte(`{"status":"bounced"}`),
	}
	report := decodeReport(m)
	if report.MessageID != "m-2" {
		t.Fatalf("expected key fallback, got %q", report.MessageID)
	}
	if report.Status != domain.DeliveryStatusBounced {
		t.Fatalf("unexpected status %q", report.Status)
	}
	if report.Timestamp.IsZero() {
		t.Fatal("missing timestamp must default to now")
	}
}

func TestDecodeReportMalformedValue(t *testing.T) {
	m := kafka.Message{
		Key:   []byte("m-3"),
		Value: []byte("not json at all"),
	}
	report := decodeReport(m)
	if report.Status != domain.DeliveryStatusUnknown {
		t.Fatalf("malformed report must surface as unknown, got %q", report.Status)
	}
	if report.Reason != "not json at all" {
		t.Fatalf("raw value not preserved: %q", report.Reason)
	}
	if report.MessageID != "m-3" {
		t.Fatalf("expected key fallback, got %q", report.MessageID)
	}
}
