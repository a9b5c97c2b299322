package bacnet

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeTagApplicationUnsigned(t *testing.T) {
	// 0x21 = tag number 2, application class, length 1
	r := bytes.NewReader([]byte{0x21, 0x01})
	tag, err := DecodeTag(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag.Kind != TagKindApplication || tag.Number != 2 || tag.LVT != 1 {
		t.Fatalf("got %+v", tag)
	}
}

func TestDecodeTagOpenClose(t *testing.T) {
	r := bytes.NewReader([]byte{0x3E})
	tag, err := DecodeTag(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag.Kind != TagKindOpen || tag.Number != 3 {
		t.Fatalf("got %+v", tag)
	}

	r = bytes.NewReader([]byte{0x3F})
	tag, err = DecodeTag(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag.Kind != TagKindClose || tag.Number != 3 {
		t.Fatalf("got %+v", tag)
	}
}

func TestDecodeTagExtendedNumber(t *testing.T) {
	// number nibble 0xF -> extended tag number 200, context class, length 0
	r := bytes.NewReader([]byte{0xF8, 200})
	tag, err := DecodeTag(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag.Number != 200 || tag.LVT != 0 {
		t.Fatalf("got %+v", tag)
	}
}

func TestDecodeTagExtendedLength(t *testing.T) {
	// tag 1, application, vvv=5 extended; 254 sentinel -> 16-bit length 300
	r := bytes.NewReader([]byte{0x15, 254, 0x01, 0x2C})
	tag, err := DecodeTag(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag.LVT != 300 {
		t.Fatalf("got lvt %d", tag.LVT)
	}
}

func TestDecodeTagShortRead(t *testing.T) {
	r := bytes.NewReader(nil)
	_, err := DecodeTag(r)
	if !errors.Is(err, ErrInputEndedBeforeParsingCompleted) {
		t.Fatalf("want InputEndedBeforeParsingCompleted, got %v", err)
	}
}

func TestEncodeTagRoundTrip(t *testing.T) {
	cases := []struct {
		number uint8
		length int
	}{
		{2, 1}, {0, 0}, {15, 0}, {20, 5}, {3, 300}, {3, 70000},
	}
	for _, c := range cases {
		buf := EncodeApplicationTag(c.number, c.length)
		tag, err := DecodeTag(bytes.NewReader(buf))
		if err != nil {
			t.Fatalf("number=%d length=%d: %v", c.number, c.length, err)
		}
		if tag.Number != c.number || int(tag.LVT) != c.length {
			t.Fatalf("number=%d length=%d: got %+v", c.number, c.length, tag)
		}
	}
}

func TestEncodeOpeningClosingTagRoundTrip(t *testing.T) {
	open := EncodeOpeningTag(3)
	tag, err := DecodeTag(bytes.NewReader(open))
	if err != nil || tag.Kind != TagKindOpen || tag.Number != 3 {
		t.Fatalf("open: got %+v, err=%v", tag, err)
	}

	closeTag := EncodeClosingTag(3)
	tag, err = DecodeTag(bytes.NewReader(closeTag))
	if err != nil || tag.Kind != TagKindClose || tag.Number != 3 {
		t.Fatalf("close: got %+v, err=%v", tag, err)
	}
}
