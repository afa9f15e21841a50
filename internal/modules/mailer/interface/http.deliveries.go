package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"mesaYaMailer/internal/modules/mailer/infrastructure"
	"mesaYaMailer/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

var deliveryStreamCounter atomic.Uint64

// NewDeliveriesWebsocketHandler exposes /ws/deliveries requiring
// authentication and streams every consumed delivery report to the client.
func NewDeliveriesWebsocketHandler(hub *infrastructure.DeliveryHub, validator auth.TokenValidator) func(echo.Context) error {
	return func(c echo.Context) error {
		peerIP := c.RealIP()

		token := auth.ExtractToken(c.Request(), "token")
		claims, err := validator.Validate(token)
		if err != nil {
			slog.Warn("deliveries ws auth failed", slog.String("ip", peerIP), slog.Any("error", err))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("deliveries ws upgrade failed", slog.String("ip", peerIP), slog.Any("error", err))
			return err
		}

		client := hub.Attach(conn, claims.Subject)
		client.Send(map[string]any{
			"type":      "connected",
			"sessionId": fmt.Sprintf("deliveries-%d", deliveryStreamCounter.Add(1)),
			"userId":    claims.Subject,
			"timestamp": time.Now().UTC(),
		})

		slog.Info("deliveries ws connected", slog.String("userId", claims.Subject), slog.String("ip", peerIP))
		return nil
	}
}
