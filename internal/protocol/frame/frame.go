package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danmuck/duochat/internal/protocol"
)

const (
	HeaderLen        = 12
	TimestampOffset  = 0
	PayloadLenOffset = 8
	MaxPayloadLen    = 1023
)

var ErrUnknownByteOrder = errors.New("frame: unknown byte order")

// Header is the fixed wire header: [timestamp:8][payload_length:4].
type Header struct {
	Timestamp  int64
	PayloadLen int32
}

// Frame is one complete wire message.
type Frame struct {
	Header  Header
	Payload []byte
}

// Text returns the payload as a string.
func (f Frame) Text() string {
	return string(f.Payload)
}

// SentAt returns the sender's time-of-send.
func (f Frame) SentAt() time.Time {
	return time.Unix(f.Header.Timestamp, 0)
}

// Codec encodes and decodes frames with an explicit header byte order.
type Codec struct {
	Order binary.ByteOrder
	Now   func() time.Time
}

// DefaultCodec uses little-endian headers, which matches the wire layout
// produced by little-endian hosts that write native integers.
func DefaultCodec() Codec {
	return Codec{
		Order: binary.LittleEndian,
		Now:   time.Now,
	}
}

// WithDefaults fills a nil Order with little-endian and a nil Now with time.Now.
func (c Codec) WithDefaults() Codec {
	d := DefaultCodec()
	if c.Order == nil {
		c.Order = d.Order
	}
	if c.Now == nil {
		c.Now = d.Now
	}
	return c
}

// ParseByteOrder maps a config value onto a header byte order.
func ParseByteOrder(raw string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "little", "le", "little-endian":
		return binary.LittleEndian, nil
	case "big", "be", "big-endian", "network":
		return binary.BigEndian, nil
	case "native", "host":
		return binary.NativeEndian, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownByteOrder, raw)
	}
}

// Encode frames payload behind a header stamped with the current time.
//
// A negative declaredLen means the natural length of payload. Lengths above
// MaxPayloadLen are cut to MaxPayloadLen and truncated is reported true.
func (c Codec) Encode(payload []byte, declaredLen int) (buf []byte, truncated bool) {
	c = c.WithDefaults()
	n := declaredLen
	if n < 0 || n > len(payload) {
		n = len(payload)
	}
	if n > MaxPayloadLen {
		n = MaxPayloadLen
		truncated = true
	}

	buf = make([]byte, HeaderLen+n)
	copy(buf[:HeaderLen], c.EncodeHeader(Header{
		Timestamp:  c.Now().Unix(),
		PayloadLen: int32(n),
	}))
	copy(buf[HeaderLen:], payload[:n])
	return buf, truncated
}

// EncodeText frames text at its natural length.
func (c Codec) EncodeText(text string) ([]byte, bool) {
	return c.Encode([]byte(text), -1)
}

// WriteFrame encodes payload and writes header and payload in one call.
func (c Codec) WriteFrame(w io.Writer, payload []byte, declaredLen int) (truncated bool, err error) {
	buf, truncated := c.Encode(payload, declaredLen)
	n, err := w.Write(buf)
	if err := protocol.WriteError("frame", n, err); err != nil {
		return truncated, err
	}
	return truncated, nil
}

// ReadFrame reads one header and then exactly PayloadLen payload bytes.
//
// Either read may be the one that reports the peer's disconnect; both are
// classified independently. Short reads are retried until the segment is full.
func (c Codec) ReadFrame(r io.Reader) (Frame, error) {
	c = c.WithDefaults()
	var fixed [HeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Frame{}, protocol.ReadError("header", err)
	}

	h, err := c.DecodeHeader(fixed[:])
	if err != nil {
		return Frame{}, err
	}
	if h.PayloadLen < 0 || h.PayloadLen > MaxPayloadLen {
		return Frame{}, fmt.Errorf("%w: %w: %d", protocol.ErrIOFailure, protocol.ErrInvalidLength, h.PayloadLen)
	}

	payload := make([]byte, h.PayloadLen)
	if h.PayloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, protocol.ReadError("payload", err)
		}
	}
	return Frame{Header: h, Payload: payload}, nil
}

// EncodeHeader lays out h in exactly HeaderLen bytes using c.Order.
func (c Codec) EncodeHeader(h Header) []byte {
	c = c.WithDefaults()
	buf := make([]byte, HeaderLen)
	c.Order.PutUint64(buf[TimestampOffset:PayloadLenOffset], uint64(h.Timestamp))
	c.Order.PutUint32(buf[PayloadLenOffset:HeaderLen], uint32(h.PayloadLen))
	return buf
}

// DecodeHeader parses a HeaderLen-byte slice; any other size is rejected.
func (c Codec) DecodeHeader(b []byte) (Header, error) {
	c = c.WithDefaults()
	if len(b) != HeaderLen {
		return Header{}, fmt.Errorf("frame: invalid fixed header length: %d", len(b))
	}
	return Header{
		Timestamp:  int64(c.Order.Uint64(b[TimestampOffset:PayloadLenOffset])),
		PayloadLen: int32(c.Order.Uint32(b[PayloadLenOffset:HeaderLen])),
	}, nil
}
