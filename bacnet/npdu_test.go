package bacnet

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeNPDUPriorityNoReply(t *testing.T) {
	req := NetworkRequest{Data: []byte{1, 2, 3}, NetworkPriority: 0}
	got := EncodeNPDU(req)
	want := []byte{0x01, 0x00, 0x01, 0x02, 0x03}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestEncodeNPDUPriorityWithReply(t *testing.T) {
	req := NetworkRequest{Data: []byte{1, 2, 3}, NetworkPriority: 3, DataExpectingReply: true}
	got := EncodeNPDU(req)
	want := []byte{0x01, 0x07, 0x01, 0x02, 0x03}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}
}

func TestEncodeNPDUPriorityOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("want panic for out-of-range priority")
		}
	}()
	EncodeNPDU(NetworkRequest{NetworkPriority: 4})
}

func TestDecodeNPDURoundTrip(t *testing.T) {
	encoded := EncodeNPDU(NetworkRequest{Data: []byte{9, 9}, NetworkPriority: 2, DataExpectingReply: true})
	ind, err := DecodeNPDU(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ind.NetworkPriority != 2 || !ind.DataExpectingReply || !bytes.Equal(ind.Data, []byte{9, 9}) {
		t.Fatalf("got %+v", ind)
	}
}

func TestDecodeNPDUWrongVersion(t *testing.T) {
	_, err := DecodeNPDU([]byte{0x02, 0x00})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want Unsupported, got %v", err)
	}
}

func TestDecodeNPDURejectsNetworkLayerMessage(t *testing.T) {
	_, err := DecodeNPDU([]byte{0x01, 0x80})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want Unsupported, got %v", err)
	}
}

func TestDecodeNPDUShort(t *testing.T) {
	_, err := DecodeNPDU([]byte{0x01})
	if !errors.Is(err, ErrInputEndedBeforeParsingCompleted) {
		t.Fatalf("want InputEndedBeforeParsingCompleted, got %v", err)
	}
}
