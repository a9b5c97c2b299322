package bacnet

import (
	"errors"
	"testing"
)

func deviceFixture() DeviceObject {
	return DeviceObject{Instance: 45, MaxAPDULengthSupported: 1476, SegmentationSupported: SegmentationNone, VendorIdentifier: 260}
}

func TestUnmarshalWhoIsEmptyBodyMatchesAll(t *testing.T) {
	req, err := UnmarshalWhoIs(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !req.Matches(0) || !req.Matches(4194302) {
		t.Fatalf("empty range must match any instance")
	}
}

func TestUnmarshalWhoIsMixedPresenceIsInvalid(t *testing.T) {
	body := ValueSequence{ContextValue(whoIsContextLow, UnsignedValue(1))}
	_, err := UnmarshalWhoIs(body)
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("want InvalidData, got %v", err)
	}
}

func TestDispatchWhoIsMatch(t *testing.T) {
	device := deviceFixture()
	body := MarshalWhoIs(WhoIsRequest{})
	resp, err := Dispatch(UnconfirmedReqHeader{Service: uint8(ServiceWhoIs)}, body, device)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp == nil {
		t.Fatalf("want a response")
	}
	header, ok := resp.Header.(UnconfirmedReqHeader)
	if !ok || UnconfirmedServiceChoice(header.Service) != ServiceIAm {
		t.Fatalf("got header %+v", resp.Header)
	}
	announcement, err := UnmarshalIAm(resp.Body)
	if err != nil {
		t.Fatalf("unmarshal I-Am: %v", err)
	}
	if announcement.Instance != device.Instance {
		t.Fatalf("got %+v", announcement)
	}
}

func TestDispatchWhoIsOutOfRangeNoResponse(t *testing.T) {
	device := deviceFixture()
	low, high := uint32(100), uint32(200)
	body := MarshalWhoIs(WhoIsRequest{Low: &low, High: &high})
	resp, err := Dispatch(UnconfirmedReqHeader{Service: uint8(ServiceWhoIs)}, body, device)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != nil {
		t.Fatalf("want no response for out-of-range Who-Is, got %+v", resp)
	}
}

func TestDispatchUnknownUnconfirmedServiceIsSilentlyIgnored(t *testing.T) {
	resp, err := Dispatch(UnconfirmedReqHeader{Service: 99}, nil, deviceFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != nil {
		t.Fatalf("want no response for unknown service")
	}
}

func TestDispatchConfirmedRequestIsRejectedUpward(t *testing.T) {
	_, err := Dispatch(ConfirmedReqHeader{Service: 12}, nil, deviceFixture())
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want Unsupported for a confirmed request, got %v", err)
	}
}
