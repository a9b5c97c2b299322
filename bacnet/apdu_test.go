package bacnet

import (
	"bytes"
	"testing"
)

func TestDecodeApduUnconfirmedWhoIs(t *testing.T) {
	header, err := DecodeApduHeader(bytes.NewReader([]byte{0x10, 0x08}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	unconfirmed, ok := header.(UnconfirmedReqHeader)
	if !ok || unconfirmed.Service != 8 {
		t.Fatalf("got %+v", header)
	}
	if !bytes.Equal(EncodeApduHeader(header), []byte{0x10, 0x08}) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecodeApduConfirmedRequestMaximal(t *testing.T) {
	data := []byte{0x0E, 0x7F, 0xFD, 0xFF, 0x7F, 0xFE}
	header, err := DecodeApduHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, ok := header.(ConfirmedReqHeader)
	if !ok {
		t.Fatalf("got %T", header)
	}
	if req.Segmented == nil {
		t.Fatalf("want segmented info")
	}
	if !req.Segmented.MoreFollows || req.Segmented.SequenceNumber != 255 || req.Segmented.ProposedWindowSize != 127 {
		t.Fatalf("got segment info %+v", req.Segmented)
	}
	if !req.SegmentedResponseAccepted {
		t.Fatalf("want segmented response accepted")
	}
	if req.MaxSegments != 7 || req.MaxAPDU != 15 || req.InvokeID != 253 || req.Service != 254 {
		t.Fatalf("got %+v", req)
	}

	if !bytes.Equal(EncodeApduHeader(header), data) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecodeApduSimpleAck(t *testing.T) {
	data := []byte{0x20, 0x05, 0x0C}
	header, err := DecodeApduHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ack, ok := header.(SimpleAckHeader)
	if !ok || ack.InvokeID != 5 || ack.Service != 12 {
		t.Fatalf("got %+v", header)
	}
	if !bytes.Equal(EncodeApduHeader(header), data) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecodeApduAbort(t *testing.T) {
	data := []byte{0x71, 0x03, 0x02}
	header, err := DecodeApduHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	abort, ok := header.(AbortHeader)
	if !ok || !abort.Server || abort.InvokeID != 3 || abort.AbortReason != AbortReasonInvalidAPDUInThisState {
		t.Fatalf("got %+v", header)
	}
}

func TestDecodeApduUnknownPDUType(t *testing.T) {
	// lead octet 0xFF has high nibble 15; only nibbles 0-7 name a defined PDU
	// type, so this exercises the decoder's final default branch.
	_, err := DecodeApduHeader(bytes.NewReader([]byte{0xFF, 0x00}))
	if err == nil {
		t.Fatalf("want error for unrecognized lead octet pattern")
	}
}

func TestDecodeApduShortInput(t *testing.T) {
	_, err := DecodeApduHeader(bytes.NewReader([]byte{0x10}))
	if !errorKindOf(err, InputEndedBeforeParsingCompleted) {
		t.Fatalf("want InputEndedBeforeParsingCompleted, got %v", err)
	}
}

func TestEncodeApduConfirmedRequestOutOfRangeMaxSegmentsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("want panic for out-of-range max segments")
		}
	}()
	EncodeApduHeader(ConfirmedReqHeader{MaxSegments: 8, MaxAPDU: 5, Service: 12})
}

func TestEncodeApduConfirmedRequestOutOfRangeMaxAPDUPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("want panic for out-of-range max APDU size code")
		}
	}()
	EncodeApduHeader(ConfirmedReqHeader{MaxSegments: 7, MaxAPDU: 16, Service: 12})
}

func errorKindOf(err error, kind ErrorKind) bool {
	de, ok := err.(*DecodeError)
	return ok && de.Kind == kind
}
