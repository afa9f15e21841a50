package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"mesaYaMailer/internal/config"
	handler "mesaYaMailer/internal/modules/mailer/application/handler"
	usecase "mesaYaMailer/internal/modules/mailer/application/usecase"
	"mesaYaMailer/internal/modules/mailer/domain"
	"mesaYaMailer/internal/modules/mailer/infrastructure"
	transport "mesaYaMailer/internal/modules/mailer/interface"
	"mesaYaMailer/internal/platform/broker"
	"mesaYaMailer/internal/platform/tcp"
	"mesaYaMailer/internal/shared/auth"
	"mesaYaMailer/internal/shared/logging"
	"mesaYaMailer/internal/shared/retry"
)

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	slog.Info("mail service endpoint", slog.String("host", cfg.TCP.Host), slog.Int("port", cfg.TCP.Port), slog.String("framing", cfg.TCP.Framing))
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("topic", cfg.Kafka.Topic), slog.String("deliveryTopic", cfg.Kafka.DeliveryTopic))

	framing, err := tcp.NewFraming(cfg.TCP.Framing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "framing config error: %v\n", err)
		os.Exit(1)
	}

	mailTransport := infrastructure.NewTCPMailTransport(tcp.Config{
		Host:           cfg.TCP.Host,
		Port:           cfg.TCP.Port,
		ConnectTimeout: cfg.TCP.ConnectTimeout,
		ReadTimeout:    cfg.TCP.ReadTimeout,
		MaxFrameBytes:  cfg.TCP.MaxFrameBytes,
		Framing:        framing,
	})
	mailPublisher := infrastructure.NewEventMailPublisher(broker.PublisherConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		ClientID:     cfg.Kafka.ClientID,
		EventVersion: cfg.Events.Version,
		Source:       cfg.Events.Source,
	})

	sendUC := usecase.NewSendEmailUseCase(
		mailTransport,
		mailPublisher,
		cfg.Retry.MaxAttempts,
		retry.WithBaseDelay(cfg.Retry.BaseBackoff),
	)

	// Delivery reports stream to connected operators.
	hub := infrastructure.NewDeliveryHub()
	reportHandler := handler.NewDeliveryReportHandler(hub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broker.StartDeliveryConsumer(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.DeliveryTopic, func(report *domain.DeliveryReport) error {
		return reportHandler.Handle(ctx, report)
	})

	// JWT validator used to validate tokens issued by the Nest auth service.
	validator := auth.NewJWTValidatorWithPublicKey(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	transport.NewEmailHandler(sendUC, validator).Register(e)
	e.GET("/ws/deliveries", transport.NewDeliveriesWebsocketHandler(hub, validator))

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")
	e.Close()
	cancel()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer flushCancel()
	if err := mailPublisher.Close(flushCtx); err != nil {
		slog.Warn("publisher shutdown", slog.Any("error", err))
	}
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fileName := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".log")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.New(writer, logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
	})
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
