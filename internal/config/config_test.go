package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}
	if cfg.TCP.Host != "localhost" || cfg.TCP.Port != 4010 {
		t.Fatalf("unexpected tcp endpoint %s:%d", cfg.TCP.Host, cfg.TCP.Port)
	}
	if cfg.TCP.Framing != "text" {
		t.Fatalf("default framing must be text, got %q", cfg.TCP.Framing)
	}
	if cfg.TCP.MaxFrameBytes != 10<<20 {
		t.Fatalf("unexpected frame ceiling %d", cfg.TCP.MaxFrameBytes)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.BaseBackoff != 100*time.Millisecond {
		t.Fatalf("unexpected retry defaults %+v", cfg.Retry)
	}
}

func TestLoadBrokersListAndFallback(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}

	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_BROKER", "legacy:9092")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "legacy:9092" {
		t.Fatalf("legacy fallback broken: %v", cfg.Kafka.Brokers)
	}
}

func TestLoadRejectsBadFraming(t *testing.T) {
	t.Setenv("TCP_FRAMING", "morse")
	if _, err := Load(); err == nil {
		t.Fatal("expected framing validation error")
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("TCP_PORT", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected port parse error")
	}
	t.Setenv("TCP_PORT", "70000")
	if _, err := Load(); err == nil {
		t.Fatal("expected port range error")
	}
}

func TestLoadDurations(t *testing.T) {
	t.Setenv("TCP_READ_TIMEOUT", "2s")
	t.Setenv("TCP_CONNECT_TIMEOUT", "1500")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TCP.ReadTimeout != 2*time.Second {
		t.Fatalf("duration string not parsed: %s", cfg.TCP.ReadTimeout)
	}
	if cfg.TCP.ConnectTimeout != 1500*time.Millisecond {
		t.Fatalf("bare milliseconds not parsed: %s", cfg.TCP.ConnectTimeout)
	}
}
