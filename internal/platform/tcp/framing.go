package tcp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Framing recovers message boundaries on a byte stream. Two incompatible
// conventions exist across revisions of the counterpart service, so both are
// implemented behind the same interface and selected by configuration.
type Framing interface {
	// Name identifies the convention in configuration and logs.
	Name() string
	// WriteFrame writes payload prefixed by its length, in a single Write.
	WriteFrame(w io.Writer, payload []byte) error
	// ReadFrame reads one length prefix and exactly that many payload bytes.
	// Declared lengths above maxBytes are rejected before the body is read.
	ReadFrame(r io.Reader, maxBytes int) ([]byte, error)
}

const (
	// FramingText is the decimal-ASCII-length convention: "<len>#<json>".
	FramingText = "text"
	// FramingBinary is the 4-byte big-endian length convention.
	FramingBinary = "binary"

	textDelimiter = '#'
	// A well-formed decimal prefix never needs more digits than this; a peer
	// that sends more is not speaking the protocol.
	maxTextPrefixBytes = 20
)

// NewFraming resolves a configured framing name. Empty selects text, which is
// what current counterpart deployments speak.
func NewFraming(name string) (Framing, error) {
	switch name {
	case "", FramingText:
		return textFraming{}, nil
	case FramingBinary:
		return binaryFraming{}, nil
	default:
		return nil, fmt.Errorf("unknown framing convention %q", name)
	}
}

type textFraming struct{}

func (textFraming) Name() string { return FramingText }

func (textFraming) WriteFrame(w io.Writer, payload []byte) error {
	frame := make([]byte, 0, len(payload)+maxTextPrefixBytes)
	frame = strconv.AppendInt(frame, int64(len(payload)), 10)
	frame = append(frame, textDelimiter)
	frame = append(frame, payload...)
	_, err := w.Write(frame)
	return err
}

func (textFraming) ReadFrame(r io.Reader, maxBytes int) ([]byte, error) {
	length, err := readTextPrefix(r)
	if err != nil {
		return nil, err
	}
	if length > maxBytes {
		return nil, newSizeError(DirectionResponse, length, maxBytes)
	}
	return readBody(r, length)
}

// readTextPrefix consumes bytes one at a time until the delimiter. The scan is
// capped so a peer that never sends a delimiter cannot stall us on garbage.
func readTextPrefix(r io.Reader) (int, error) {
	var digits []byte
	buf := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if len(digits) == 0 && errors.Is(err, io.EOF) {
				return 0, newTransportError(KindPeerClosedEarly, errors.New("connection closed before length prefix"))
			}
			return 0, err
		}
		if buf[0] == textDelimiter {
			break
		}
		if buf[0] < '0' || buf[0] > '9' {
			return 0, newTransportError(KindMalformedFrame, fmt.Errorf("unexpected byte %#x in length prefix", buf[0]))
		}
		digits = append(digits, buf[0])
		if len(digits) > maxTextPrefixBytes {
			return 0, newTransportError(KindMalformedFrame, fmt.Errorf("length prefix exceeds %d bytes without delimiter", maxTextPrefixBytes))
		}
	}
	if len(digits) == 0 {
		return 0, newTransportError(KindMalformedFrame, errors.New("empty length prefix"))
	}
	length, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, newTransportError(KindMalformedFrame, err)
	}
	return length, nil
}

type binaryFraming struct{}

func (binaryFraming) Name() string { return FramingBinary }

func (binaryFraming) WriteFrame(w io.Writer, payload []byte) error {
	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)
	_, err := w.Write(frame)
	return err
}

func (binaryFraming) ReadFrame(r io.Reader, maxBytes int) ([]byte, error) {
	prefix := make([]byte, 4)
	if _, err := io.ReadFull(r, prefix); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, newTransportError(KindPeerClosedEarly, errors.New("connection closed before length prefix"))
		}
		return nil, err
	}
	length := int(binary.BigEndian.Uint32(prefix))
	if length > maxBytes {
		return nil, newSizeError(DirectionResponse, length, maxBytes)
	}
	return readBody(r, length)
}

// readBody reads exactly length bytes, looping on partial reads. A zero-byte
// read mid-body means the peer closed the connection.
func readBody(r io.Reader, length int) ([]byte, error) {
	body := make([]byte, length)
	read := 0
	for read < length {
		n, err := r.Read(body[read:])
		read += n
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, newTransportError(KindPeerClosedEarly,
					fmt.Errorf("peer closed after %d of %d declared bytes", read, length))
			}
			return nil, err
		}
		if n == 0 {
			return nil, newTransportError(KindPeerClosedEarly,
				fmt.Errorf("zero-byte read after %d of %d declared bytes", read, length))
		}
	}
	return body, nil
}
