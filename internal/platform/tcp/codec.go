package tcp

import (
	"encoding/json"
	"fmt"
)

// WireRequest is the envelope the counterpart service expects on every call.
type WireRequest struct {
	Pattern string `json:"pattern"`
	Data    any    `json:"data"`
	ID      string `json:"id"`
}

// Response is the minimally-inspected view of whatever JSON the peer returned.
// The full body stays available in Raw for codecs that need more.
type Response struct {
	Success bool
	Message string
	ID      string
	Raw     json.RawMessage
}

// Codec transforms a typed payload into the wire envelope and decodes the
// peer's bytes back into a typed response. Implemented once per message kind
// and injected into the client.
type Codec interface {
	// TransformRequest maps the payload onto a remote operation pattern and
	// the data document sent under it.
	TransformRequest(payload any) (pattern string, data any, err error)
	// ParseResponse decodes the raw response bytes.
	ParseResponse(raw []byte) (*Response, error)
}

type wireResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ParseLenientResponse decodes a response treating the absence of a success
// field as success. Malformed JSON surfaces as a decode error so codec-level
// bugs stay distinguishable from transport failures.
func ParseLenientResponse(raw []byte) (*Response, error) {
	var wire wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, newTransportError(KindDecodeError, fmt.Errorf("parse response: %w", err))
	}
	resp := &Response{
		Success: true,
		Message: wire.Message,
		ID:      wire.ID,
		Raw:     json.RawMessage(raw),
	}
	if wire.Success != nil {
		resp.Success = *wire.Success
	}
	return resp, nil
}
