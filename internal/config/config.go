package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the gateway reads from the environment.
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Security SecurityConfig
	TCP      TCPConfig
	Kafka    KafkaConfig
	Events   EventsConfig
	Retry    RetryConfig
}

type ServerConfig struct {
	Port string
}

type LoggingConfig struct {
	Level     string
	Format    string
	Directory string
}

type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
}

// TCPConfig points at the mail service's framed TCP endpoint.
type TCPConfig struct {
	Host           string
	Port           int
	Framing        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxFrameBytes  int
}

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	DeliveryTopic string
	GroupID       string
	ClientID      string
}

// EventsConfig fixes the envelope identity for everything this process
// publishes.
type EventsConfig struct {
	Version int
	Source  string
}

type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
}

// Load reads the environment with defaults. Only values that would leave the
// gateway unable to start at all are treated as errors.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envString("PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level:     envString("LOG_LEVEL", "info"),
			Format:    envString("LOG_FORMAT", "text"),
			Directory: envString("LOG_DIR", "./logs"),
		},
		Security: SecurityConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"),
			JWTPublicKey: os.Getenv("JWT_PUBLIC_KEY"),
		},
		TCP: TCPConfig{
			Host:           envString("TCP_HOST", "localhost"),
			Framing:        envString("TCP_FRAMING", "text"),
			ConnectTimeout: envDuration("TCP_CONNECT_TIMEOUT", 5*time.Second),
			ReadTimeout:    envDuration("TCP_READ_TIMEOUT", 10*time.Second),
			MaxFrameBytes:  envInt("TCP_MAX_FRAME_BYTES", 10<<20),
		},
		Kafka: KafkaConfig{
			Brokers:       envBrokers(),
			Topic:         envString("KAFKA_TOPIC", "mesa-ya.emails"),
			DeliveryTopic: envString("KAFKA_DELIVERY_TOPIC", "mesa-ya.email-deliveries"),
			GroupID:       envString("KAFKA_GROUP_ID", "mesa-ya-mailer"),
			ClientID:      envString("KAFKA_CLIENT_ID", "mesa-ya-mailer"),
		},
		Events: EventsConfig{
			Version: envInt("EVENT_VERSION", 1),
			Source:  envString("EVENT_SOURCE", "mesa-ya-mailer"),
		},
		Retry: RetryConfig{
			MaxAttempts: envInt("RETRY_MAX_ATTEMPTS", 3),
			BaseBackoff: envDuration("RETRY_BASE_BACKOFF", 100*time.Millisecond),
		},
	}

	var err error
	cfg.TCP.Port, err = envIntStrict("TCP_PORT", 4010)
	if err != nil {
		return nil, err
	}
	if cfg.TCP.Port <= 0 || cfg.TCP.Port > 65535 {
		return nil, fmt.Errorf("TCP_PORT out of range: %d", cfg.TCP.Port)
	}
	switch cfg.TCP.Framing {
	case "text", "binary":
	default:
		return nil, fmt.Errorf("TCP_FRAMING must be text or binary, got %q", cfg.TCP.Framing)
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 3
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := envIntStrict(key, fallback)
	if err != nil {
		return fallback
	}
	return v
}

func envIntStrict(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s is not an integer: %q", key, raw)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// Bare numbers are read as milliseconds, matching counterpart configs.
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

// envBrokers reads KAFKA_BROKERS (comma-separated), falling back to the
// legacy singular KAFKA_BROKER.
func envBrokers() []string {
	raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("KAFKA_BROKER"))
	}
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}
