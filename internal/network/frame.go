package network

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// HeaderSize is the fixed width of the ASCII length header preceding every payload
const HeaderSize = 64

// DefaultMaxPayload bounds the payload length a decoder will accept
const DefaultMaxPayload = 1 << 20

var (
	// ErrFraming reports a corrupt or oversized frame header; the connection cannot recover.
	ErrFraming = errors.New("framing error")
	// ErrConnectionClosed reports that the peer closed the stream before a full frame arrived.
	ErrConnectionClosed = errors.New("connection closed")
)

// Encode returns header+payload ready for a single write. The header is the decimal
// payload length, left-justified and space-padded to HeaderSize bytes.
func Encode(payload []byte) []byte {
	length := strconv.Itoa(len(payload))
	frame := make([]byte, HeaderSize+len(payload))
	copy(frame, length)
	for i := len(length); i < HeaderSize; i++ {
		frame[i] = ' '
	}
	copy(frame[HeaderSize:], payload)
	return frame
}

// DecodeHeader parses a length header. Anything other than padding around ASCII digits is rejected.
func DecodeHeader(header []byte) (int, error) {
	if len(header) != HeaderSize {
		return 0, fmt.Errorf("%w: header is %d bytes, want %d", ErrFraming, len(header), HeaderSize)
	}
	text := strings.TrimSpace(string(header))
	if text == "" {
		return 0, fmt.Errorf("%w: empty header", ErrFraming)
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: non-numeric header %q", ErrFraming, text)
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFraming, err)
	}
	return n, nil
}

// ReadExact reads exactly n bytes. A stream that ends early yields ErrConnectionClosed;
// the partial bytes are discarded.
func ReadExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %v", ErrConnectionClosed, err)
		}
		return nil, err
	}
	return buf, nil
}

// Decoder reads frames from a stream
type Decoder struct {
	r          io.Reader
	maxPayload int
}

// NewDecoder creates a decoder. maxPayload <= 0 selects DefaultMaxPayload.
func NewDecoder(r io.Reader, maxPayload int) *Decoder {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	return &Decoder{r: r, maxPayload: maxPayload}
}

// ReadFrame returns the next payload
func (d *Decoder) ReadFrame() ([]byte, error) {
	header, err := ReadExact(d.r, HeaderSize)
	if err != nil {
		return nil, err
	}
	n, err := DecodeHeader(header)
	if err != nil {
		return nil, err
	}
	if n > d.maxPayload {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds limit %d", ErrFraming, n, d.maxPayload)
	}
	return ReadExact(d.r, n)
}

// WriteFrame writes one encoded frame with a single Write call
func WriteFrame(w io.Writer, payload []byte) error {
	_, err := w.Write(Encode(payload))
	return err
}
