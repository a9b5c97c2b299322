// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bacnet

import "fmt"

// DeviceObject is the single in-memory device record the service layer
// holds. It is immutable for the process lifetime; there is no
// object-database persistence beyond this one record.
type DeviceObject struct {
	Instance                uint32
	MaxAPDULengthSupported  uint32
	SegmentationSupported   Segmentation
	VendorIdentifier        uint32
}

// ObjectID returns the device's own object identifier (type DEVICE).
func (d DeviceObject) ObjectID() (ObjectType, uint32) {
	return DeviceObjectType, d.Instance
}

const (
	whoIsContextLow  = 0
	whoIsContextHigh = 1
)

// WhoIsContextResolver maps both Who-Is context tags to Unsigned; it is
// the only context production this service layer needs to resolve, and
// callers pass it to DecodeValueSequence before handing the result to
// UnmarshalWhoIs or Dispatch.
func WhoIsContextResolver(context uint8) (uint8, bool) {
	if context == whoIsContextLow || context == whoIsContextHigh {
		return typeCodeUnsignedInt, true
	}
	return 0, false
}

// WhoIsRequest is the unmarshalled Who-Is body: both bounds are optional,
// matching spec section 4.7's "mixed presence is a decode failure" rule.
type WhoIsRequest struct {
	Low  *uint32
	High *uint32
}

// UnmarshalWhoIs decodes a Who-Is service body. Context 0 is the low
// instance limit, context 1 the high instance limit; both Unsigned. Either
// both must be present or both absent; anything else is InvalidData.
func UnmarshalWhoIs(body ValueSequence) (WhoIsRequest, error) {
	var low, high *uint32
	for _, v := range body {
		if v.Kind != SequenceContext || v.Value.Kind != PrimitiveUnsigned {
			return WhoIsRequest{}, newDecodeError(InvalidData, "Who-Is body value is not a context-tagged Unsigned")
		}
		switch v.Context {
		case whoIsContextLow:
			val := v.Value.Unsigned
			low = &val
		case whoIsContextHigh:
			val := v.Value.Unsigned
			high = &val
		default:
			return WhoIsRequest{}, newDecodeError(InvalidData, fmt.Sprintf("unexpected Who-Is context %d", v.Context))
		}
	}
	if (low == nil) != (high == nil) {
		return WhoIsRequest{}, newDecodeError(InvalidData, "Who-Is range bounds must both be present or both absent")
	}
	return WhoIsRequest{Low: low, High: high}, nil
}

// MarshalWhoIs encodes a Who-Is request body. When req.Low/req.High are
// both nil, the body is empty (unrestricted discovery).
func MarshalWhoIs(req WhoIsRequest) ValueSequence {
	if req.Low == nil || req.High == nil {
		return ValueSequence{}
	}
	return ValueSequence{
		ContextValue(whoIsContextLow, UnsignedValue(*req.Low)),
		ContextValue(whoIsContextHigh, UnsignedValue(*req.High)),
	}
}

// Matches reports whether device satisfies req's range, per the Who-Is
// matching rule: an empty range always matches.
func (req WhoIsRequest) Matches(instance uint32) bool {
	if req.Low == nil || req.High == nil {
		return true
	}
	return *req.Low <= instance && instance <= *req.High
}

// MarshalIAm builds the four-value I-Am body for device, in the wire-fixed
// order: ObjectId, Unsigned(max-apdu), Enumerated(segmentation), Unsigned
// (vendor-id).
func MarshalIAm(device DeviceObject) ValueSequence {
	objType, instance := device.ObjectID()
	return ValueSequence{
		ApplicationValue(ObjectIDValue(objType, instance)),
		ApplicationValue(UnsignedValue(device.MaxAPDULengthSupported)),
		ApplicationValue(EnumeratedValue(uint32(device.SegmentationSupported))),
		ApplicationValue(UnsignedValue(device.VendorIdentifier)),
	}
}

// IAmAnnouncement is the unmarshalled I-Am body, as collected by a
// discovery client.
type IAmAnnouncement struct {
	ObjectType      ObjectType
	Instance        uint32
	MaxAPDULength   uint32
	Segmentation    Segmentation
	VendorID        uint32
}

// UnmarshalIAm decodes an I-Am service body.
func UnmarshalIAm(body ValueSequence) (IAmAnnouncement, error) {
	if len(body) != 4 {
		return IAmAnnouncement{}, newDecodeError(RequiredValueNotProvided,
			fmt.Sprintf("I-Am body has %d values, want 4", len(body)))
	}
	for _, v := range body {
		if v.Kind != SequenceApplication {
			return IAmAnnouncement{}, newDecodeError(InvalidData, "I-Am body value is not application-tagged")
		}
	}
	oid, apdu, seg, vendor := body[0].Value, body[1].Value, body[2].Value, body[3].Value
	if oid.Kind != PrimitiveObjectID || apdu.Kind != PrimitiveUnsigned ||
		seg.Kind != PrimitiveEnumerated || vendor.Kind != PrimitiveUnsigned {
		return IAmAnnouncement{}, newDecodeError(InvalidData, "I-Am body value has the wrong primitive type")
	}
	return IAmAnnouncement{
		ObjectType:    oid.ObjectType,
		Instance:      oid.ObjectInst,
		MaxAPDULength: apdu.Unsigned,
		Segmentation:  Segmentation(seg.Unsigned),
		VendorID:      vendor.Unsigned,
	}, nil
}

// Response is what Dispatch returns for a handled request that produces a
// reply: the header and body to encode and send back.
type Response struct {
	Header ApduHeader
	Body   ValueSequence
}

// Dispatch runs header/body through the service table for device. It
// returns (nil, nil) when the request was recognized but produces
// no reply (an unknown unconfirmed service choice, or a non-matching
// Who-Is), and a non-nil error when header is not an UnconfirmedReqHeader
// — confirmed and other PDU types are out of this core's scope and must be
// rejected upward rather than silently dropped, per spec section 4.7.
func Dispatch(header ApduHeader, body ValueSequence, device DeviceObject) (*Response, error) {
	unconfirmed, ok := header.(UnconfirmedReqHeader)
	if !ok {
		return nil, newDecodeError(Unsupported, fmt.Sprintf("PDU type %d is not handled by this service layer", header.PDUType()))
	}

	switch UnconfirmedServiceChoice(unconfirmed.Service) {
	case ServiceWhoIs:
		return dispatchWhoIs(body, device)
	default:
		return nil, nil
	}
}

func dispatchWhoIs(body ValueSequence, device DeviceObject) (*Response, error) {
	req, err := UnmarshalWhoIs(body)
	if err != nil {
		return nil, err
	}
	if !req.Matches(device.Instance) {
		return nil, nil
	}
	return &Response{
		Header: UnconfirmedReqHeader{Service: uint8(ServiceIAm)},
		Body:   MarshalIAm(device),
	}, nil
}
