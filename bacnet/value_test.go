package bacnet

import (
	"bytes"
	"testing"
)

func TestDecodeWhoIsBody(t *testing.T) {
	// context[0]=Unsigned(1) (tag 0x09, 1-octet payload), context[1]=Unsigned(50000)
	// (tag 0x1A: number=1, context class, length=2, 2-octet payload 0xC350).
	data := []byte{0x09, 0x01, 0x1A, 0xC3, 0x50}
	seq, err := DecodeValueSequence(bytes.NewReader(data), WhoIsContextResolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seq) != 2 {
		t.Fatalf("want 2 values, got %d", len(seq))
	}
	if seq[0].Kind != SequenceContext || seq[0].Context != 0 || seq[0].Value.Unsigned != 1 {
		t.Fatalf("low: got %+v", seq[0])
	}
	if seq[1].Kind != SequenceContext || seq[1].Context != 1 || seq[1].Value.Unsigned != 50000 {
		t.Fatalf("high: got %+v", seq[1])
	}

	req, err := UnmarshalWhoIs(seq)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !req.Matches(45) {
		t.Fatalf("want device 45 to match range [1,50000]")
	}
	if req.Matches(0) {
		t.Fatalf("device 0 is below the low bound and must not match")
	}
}

func TestDecodeContextValueSequence(t *testing.T) {
	// 3E 21 01 3F : open(3), application Unsigned(1), close(3)
	data := []byte{0x3E, 0x21, 0x01, 0x3F}
	resolver := func(uint8) (uint8, bool) { return typeCodeUnsignedInt, true }
	v, ok, err := DecodeValue(bytes.NewReader(data), resolver)
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v", ok, err)
	}
	if v.Kind != SequenceContextSequence || v.Context != 3 {
		t.Fatalf("got %+v", v)
	}
	if len(v.Children) != 1 || v.Children[0].Value.Unsigned != 1 {
		t.Fatalf("children: got %+v", v.Children)
	}

	buf := EncodeValue(nil, v)
	if !bytes.Equal(buf, data) {
		t.Fatalf("round trip mismatch: got % x want % x", buf, data)
	}
}

func TestDecodeValueSequenceEmptyInput(t *testing.T) {
	seq, err := DecodeValueSequence(bytes.NewReader(nil), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq == nil || len(seq) != 0 {
		t.Fatalf("want empty non-nil slice, got %+v", seq)
	}
}

func TestDecodeValueMismatchedCloseTag(t *testing.T) {
	// open(3), close(4): mismatched
	data := []byte{0x3E, 0x4F}
	resolver := func(uint8) (uint8, bool) { return typeCodeUnsignedInt, true }
	_, _, err := DecodeValue(bytes.NewReader(data), resolver)
	if err == nil {
		t.Fatalf("want error for mismatched close tag")
	}
}

func TestDecodeValueMissingContextResolver(t *testing.T) {
	// context tag 0, length 1, no matching resolver entry
	data := []byte{0x09, 0x01}
	_, _, err := DecodeValue(bytes.NewReader(data), func(uint8) (uint8, bool) { return 0, false })
	if err == nil {
		t.Fatalf("want error for unresolved context tag")
	}

	_, _, err = DecodeValue(bytes.NewReader(data), nil)
	if err == nil {
		t.Fatalf("want error for nil resolver, not a panic")
	}
}

func TestIAmRoundTrip(t *testing.T) {
	device := DeviceObject{Instance: 45, MaxAPDULengthSupported: 1476, SegmentationSupported: SegmentationNone, VendorIdentifier: 260}
	seq := MarshalIAm(device)
	encoded := EncodeValueSequence(seq)

	decoded, err := DecodeValueSequence(bytes.NewReader(encoded), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	announcement, err := UnmarshalIAm(decoded)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if announcement.Instance != 45 || announcement.VendorID != 260 || announcement.MaxAPDULength != 1476 {
		t.Fatalf("got %+v", announcement)
	}
}
