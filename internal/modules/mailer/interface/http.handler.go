package transport

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"mesaYaMailer/internal/modules/mailer/application/usecase"
	"mesaYaMailer/internal/modules/mailer/domain"
	"mesaYaMailer/internal/shared/auth"
	"mesaYaMailer/internal/shared/httputil"
)

// sendEmailDTO is the HTTP request body: the email request plus the
// transport mode selector.
type sendEmailDTO struct {
	domain.EmailRequest
	Mode string `json:"mode"`
}

// EmailHandler exposes the send endpoint and health probe.
type EmailHandler struct {
	uc        *usecase.SendEmailUseCase
	validator auth.TokenValidator
	mapper    *httputil.ErrorMapper
}

func NewEmailHandler(uc *usecase.SendEmailUseCase, validator auth.TokenValidator) *EmailHandler {
	mapper := httputil.NewErrorMapper().
		WithMapping(domain.ErrMissingRecipient, http.StatusBadRequest, "email request has no recipient").
		WithMapping(domain.ErrMissingSubject, http.StatusBadRequest, "email request has no subject").
		WithMapping(domain.ErrEmptyBody, http.StatusBadRequest, "email request has neither body nor template").
		WithMapping(usecase.ErrUnknownMode, http.StatusBadRequest, "unknown delivery mode").
		WithDefault(http.StatusInternalServerError, "internal server error")
	return &EmailHandler{uc: uc, validator: validator, mapper: mapper}
}

// Register mounts the routes on the echo instance.
func (h *EmailHandler) Register(e *echo.Echo) {
	e.POST("/api/v1/emails", h.handleSend)
	e.GET("/healthz", h.handleHealth)
}

func (h *EmailHandler) handleSend(c echo.Context) error {
	token := auth.ExtractBearerTokenFromHeader(c.Request().Header.Get("Authorization"))
	claims, err := h.validator.Validate(token)
	if err != nil {
		slog.Warn("email send auth failed", slog.String("ip", c.RealIP()), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}

	var dto sendEmailDTO
	if err := c.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	mode, err := usecase.ParseMode(dto.Mode)
	if err != nil {
		info := h.mapper.Map(err)
		return echo.NewHTTPError(info.Status, info.Message)
	}

	outcome, err := h.uc.Execute(c.Request().Context(), &dto.EmailRequest, mode)
	if err != nil {
		info := h.mapper.Map(err)
		slog.Warn("email send rejected",
			slog.String("userId", claims.Subject),
			slog.Int("status", info.Status),
			slog.Any("error", err),
		)
		return echo.NewHTTPError(info.Status, info.Message)
	}

	if !outcome.Accepted {
		slog.Warn("email send exhausted",
			slog.String("userId", claims.Subject),
			slog.String("mode", string(outcome.Mode)),
			slog.Int("attempts", outcome.Attempts),
			slog.String("reason", outcome.Reason),
		)
		return c.JSON(http.StatusBadGateway, outcome)
	}

	slog.Info("email send accepted",
		slog.String("userId", claims.Subject),
		slog.String("mode", string(outcome.Mode)),
		slog.Int("attempts", outcome.Attempts),
		slog.String("messageId", outcome.MessageID),
	)
	return c.JSON(http.StatusAccepted, outcome)
}

func (h *EmailHandler) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
