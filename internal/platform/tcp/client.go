package tcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxFrameBytes is a resource-protection ceiling, not a protocol
	// limit. Applied to both directions.
	DefaultMaxFrameBytes  = 10 << 20
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 10 * time.Second
)

// Config carries the connection settings for a Client.
type Config struct {
	Host           string
	Port           int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxFrameBytes  int
	Framing        Framing
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Client sends one framed request and reads one framed response per call,
// over a fresh connection each time. A single-slot token serializes calls on
// the same instance so concurrent senders never interleave frame bytes.
type Client struct {
	addr           string
	connectTimeout time.Duration
	readTimeout    time.Duration
	maxFrameBytes  int
	framing        Framing
	codec          Codec
	dial           dialFunc
	newID          func() string
	sendToken      chan struct{}
}

// NewClient builds a client for one message kind, bound to the given codec.
func NewClient(cfg Config, codec Codec) *Client {
	framing := cfg.Framing
	if framing == nil {
		framing = textFraming{}
	}
	c := &Client{
		addr:           net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		connectTimeout: cfg.ConnectTimeout,
		readTimeout:    cfg.ReadTimeout,
		maxFrameBytes:  cfg.MaxFrameBytes,
		framing:        framing,
		codec:          codec,
		dial:           (&net.Dialer{}).DialContext,
		newID:          uuid.NewString,
		sendToken:      make(chan struct{}, 1),
	}
	if c.connectTimeout <= 0 {
		c.connectTimeout = DefaultConnectTimeout
	}
	if c.readTimeout <= 0 {
		c.readTimeout = DefaultReadTimeout
	}
	if c.maxFrameBytes <= 0 {
		c.maxFrameBytes = DefaultMaxFrameBytes
	}
	c.sendToken <- struct{}{}
	return c
}

// Send performs one request/response exchange. Every failure is returned as a
// *TransportError; the connection is closed on every exit path.
func (c *Client) Send(ctx context.Context, payload any) (*Response, error) {
	select {
	case <-c.sendToken:
	case <-ctx.Done():
		return nil, newTransportError(KindConnectTimeout, ctx.Err())
	}
	defer func() { c.sendToken <- struct{}{} }()

	frame, id, err := c.encode(payload)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()
	conn, err := c.dial(dialCtx, "tcp", c.addr)
	if err != nil {
		return nil, classifyDialError(err)
	}
	defer conn.Close()

	// Cancellation must abort a pending read, not just the dial.
	watcherDone := make(chan struct{})
	defer close(watcherDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.SetDeadline(time.Now())
		case <-watcherDone:
		}
	}()

	deadline := time.Now().Add(c.readTimeout)
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, newTransportError(KindConnectRefused, err)
	}
	if err := c.framing.WriteFrame(conn, frame); err != nil {
		return nil, classifyStreamError(err)
	}
	slog.Debug("tcp frame sent",
		slog.String("addr", c.addr),
		slog.String("id", id),
		slog.String("framing", c.framing.Name()),
		slog.Int("bytes", len(frame)),
	)

	raw, err := c.framing.ReadFrame(conn, c.maxFrameBytes)
	if err != nil {
		return nil, classifyStreamError(err)
	}
	slog.Debug("tcp frame received", slog.String("addr", c.addr), slog.String("id", id), slog.Int("bytes", len(raw)))

	resp, err := c.codec.ParseResponse(raw)
	if err != nil {
		// Bytes were received, so the call reached the peer; surface the
		// decode failure with its own kind rather than a transport one.
		return nil, classifyDecodeError(err)
	}
	return resp, nil
}

// encode runs the codec and serializes the wire envelope, enforcing the size
// ceiling before anything touches the network.
func (c *Client) encode(payload any) ([]byte, string, error) {
	pattern, data, err := c.codec.TransformRequest(payload)
	if err != nil {
		return nil, "", newTransportError(KindDecodeError, fmt.Errorf("transform request: %w", err))
	}
	id := c.newID()
	frame, err := json.Marshal(WireRequest{Pattern: pattern, Data: data, ID: id})
	if err != nil {
		return nil, "", newTransportError(KindDecodeError, fmt.Errorf("encode request: %w", err))
	}
	if len(frame) > c.maxFrameBytes {
		return nil, "", newSizeError(DirectionRequest, len(frame), c.maxFrameBytes)
	}
	return frame, id, nil
}

func classifyDialError(err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newTransportError(KindConnectTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newTransportError(KindConnectTimeout, err)
	}
	return newTransportError(KindConnectRefused, err)
}

func classifyStreamError(err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newTransportError(KindReadTimeout, err)
	}
	// Resets and broken pipes mid-exchange all mean the peer went away.
	return newTransportError(KindPeerClosedEarly, err)
}

func classifyDecodeError(err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	return newTransportError(KindDecodeError, err)
}
