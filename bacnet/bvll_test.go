package bacnet

import (
	"bytes"
	"errors"
	"testing"
)

func TestBVLLRoundTrip(t *testing.T) {
	want := []byte{0x81, 0x0A, 0x00, 0x09, 0x48, 0x65, 0x6C, 0x6C, 0x6F}
	frame, err := DecodeBVLL(want)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(frame.NPDU, []byte("Hello")) {
		t.Fatalf("got %q", frame.NPDU)
	}

	got := EncodeBVLL(frame)
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestBVLLBadMagic(t *testing.T) {
	_, err := DecodeBVLL([]byte{0x82, 0x0A, 0x00, 0x04})
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("want InvalidData, got %v", err)
	}
}

func TestBVLLLengthMismatch(t *testing.T) {
	_, err := DecodeBVLL([]byte{0x81, 0x0A, 0x00, 0xFF})
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("want InvalidData, got %v", err)
	}
}

func TestBVLLUnsupportedFunction(t *testing.T) {
	_, err := DecodeBVLL([]byte{0x81, 0x00, 0x00, 0x04})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want Unsupported, got %v", err)
	}
}

func TestBVLLTooShort(t *testing.T) {
	_, err := DecodeBVLL([]byte{0x81, 0x0A})
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("want InvalidData, got %v", err)
	}
}
