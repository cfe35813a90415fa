package network

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeHeaderLayout(t *testing.T) {
	frame := Encode([]byte("MOVE 3"))
	if len(frame) != HeaderSize+6 {
		t.Fatalf("frame length %d", len(frame))
	}
	want := "6" + strings.Repeat(" ", HeaderSize-1)
	if got := string(frame[:HeaderSize]); got != want {
		t.Errorf("header = %q, want %q", got, want)
	}
	if got := string(frame[HeaderSize:]); got != "MOVE 3" {
		t.Errorf("payload = %q", got)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	large := bytes.Repeat([]byte("connect four\n"), 500)
	payloads := map[string][]byte{
		"empty":    {},
		"one byte": []byte("x"),
		"newlines": []byte("line one\nline two\n\n"),
		"utf8":     []byte("Zoë's turn."),
		"large":    large,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteFrame(&buf, payload); err != nil {
				t.Fatalf("WriteFrame: %v", err)
			}
			got, err := NewDecoder(&buf, 0).ReadFrame()
			if err != nil {
				t.Fatalf("ReadFrame: %v", err)
			}
			if diff := cmp.Diff(payload, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if len(large) <= 4096 {
		t.Fatalf("large payload fixture is only %d bytes", len(large))
	}
}

func TestReadFrameSplitReads(t *testing.T) {
	var buf bytes.Buffer
	WriteFrame(&buf, []byte("JOIN_LOBBY K4Z9"))
	WriteFrame(&buf, []byte("START_GAME"))

	dec := NewDecoder(iotest.OneByteReader(&buf), 0)
	for _, want := range []string{"JOIN_LOBBY K4Z9", "START_GAME"} {
		got, err := dec.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
	if _, err := dec.ReadFrame(); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("read past end: %v, want ErrConnectionClosed", err)
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	frame := Encode([]byte("MOVE 3"))
	dec := NewDecoder(bytes.NewReader(frame[:len(frame)-2]), 0)
	if _, err := dec.ReadFrame(); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("truncated payload: %v, want ErrConnectionClosed", err)
	}
}

func TestReadFrameTruncatedHeader(t *testing.T) {
	dec := NewDecoder(strings.NewReader("12   "), 0)
	if _, err := dec.ReadFrame(); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("truncated header: %v, want ErrConnectionClosed", err)
	}
}

func TestReadFrameOversized(t *testing.T) {
	frame := Encode(bytes.Repeat([]byte("a"), 100))
	dec := NewDecoder(bytes.NewReader(frame), 10)
	if _, err := dec.ReadFrame(); !errors.Is(err, ErrFraming) {
		t.Errorf("oversized payload: %v, want ErrFraming", err)
	}
}

func TestDecodeHeader(t *testing.T) {
	pad := func(s string) []byte {
		return []byte(s + strings.Repeat(" ", HeaderSize-len(s)))
	}

	tests := []struct {
		name    string
		header  []byte
		want    int
		wantErr bool
	}{
		{"zero", pad("0"), 0, false},
		{"number", pad("4097"), 4097, false},
		{"empty", pad(""), 0, true},
		{"letters", pad("12a"), 0, true},
		{"negative", pad("-5"), 0, true},
		{"plus sign", pad("+5"), 0, true},
		{"inner space", pad("1 2"), 0, true},
		{"short", []byte("12"), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeHeader(tt.header)
			if tt.wantErr {
				if !errors.Is(err, ErrFraming) {
					t.Errorf("DecodeHeader error = %v, want ErrFraming", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeHeader: %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeHeader = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadExactPropagatesReadErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := ReadExact(iotest.ErrReader(boom), 4)
	if !errors.Is(err, boom) {
		t.Errorf("ReadExact error = %v, want %v", err, boom)
	}
	if errors.Is(err, ErrConnectionClosed) {
		t.Errorf("non-EOF errors must not look like a closed connection")
	}
}

func TestReadExactZero(t *testing.T) {
	got, err := ReadExact(io.LimitReader(strings.NewReader(""), 0), 0)
	if err != nil || len(got) != 0 {
		t.Errorf("ReadExact(0) = %q, %v", got, err)
	}
}
