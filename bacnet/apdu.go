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

import (
	"fmt"
	"io"
)

// PDUType is the high nibble of the first APDU octet.
type PDUType uint8

const (
	PDUTypeConfirmedRequest   PDUType = 0
	PDUTypeUnconfirmedRequest PDUType = 1
	PDUTypeSimpleAck          PDUType = 2
	PDUTypeComplexAck         PDUType = 3
	PDUTypeSegmentAck         PDUType = 4
	PDUTypeError              PDUType = 5
	PDUTypeReject             PDUType = 6
	PDUTypeAbort              PDUType = 7
)

// SegmentInfo is the optional segmentation sub-record carried by
// ConfirmedReq and ComplexAck headers.
type SegmentInfo struct {
	MoreFollows         bool
	SequenceNumber      uint8
	ProposedWindowSize  uint8
}

// ApduHeader is the closed union of the eight PDU header shapes. Only the
// types defined in this file implement it.
type ApduHeader interface {
	PDUType() PDUType
	isApduHeader()
}

type ConfirmedReqHeader struct {
	Segmented                 *SegmentInfo
	SegmentedResponseAccepted bool
	MaxSegments               uint8 // 0-7
	MaxAPDU                   uint8 // 0-15
	InvokeID                  uint8
	Service                   uint8
}

func (ConfirmedReqHeader) PDUType() PDUType { return PDUTypeConfirmedRequest }
func (ConfirmedReqHeader) isApduHeader()     {}

type UnconfirmedReqHeader struct {
	Service uint8
}

func (UnconfirmedReqHeader) PDUType() PDUType { return PDUTypeUnconfirmedRequest }
func (UnconfirmedReqHeader) isApduHeader()     {}

type SimpleAckHeader struct {
	InvokeID uint8
	Service  uint8
}

func (SimpleAckHeader) PDUType() PDUType { return PDUTypeSimpleAck }
func (SimpleAckHeader) isApduHeader()     {}

type ComplexAckHeader struct {
	Segmented *SegmentInfo
	InvokeID  uint8
	Service   uint8
}

func (ComplexAckHeader) PDUType() PDUType { return PDUTypeComplexAck }
func (ComplexAckHeader) isApduHeader()     {}

type SegmentAckHeader struct {
	NegativeAck      bool
	Server           bool
	InvokeID         uint8
	SequenceNumber   uint8
	ActualWindowSize uint8
}

func (SegmentAckHeader) PDUType() PDUType { return PDUTypeSegmentAck }
func (SegmentAckHeader) isApduHeader()     {}

type ErrorHeader struct {
	InvokeID    uint8
	ErrorChoice uint8
}

func (ErrorHeader) PDUType() PDUType { return PDUTypeError }
func (ErrorHeader) isApduHeader()     {}

type RejectHeader struct {
	InvokeID     uint8
	RejectReason RejectReason
}

func (RejectHeader) PDUType() PDUType { return PDUTypeReject }
func (RejectHeader) isApduHeader()     {}

type AbortHeader struct {
	Server      bool
	InvokeID    uint8
	AbortReason AbortReason
}

func (AbortHeader) PDUType() PDUType { return PDUTypeAbort }
func (AbortHeader) isApduHeader()     {}

// DecodeApduHeader reads one APDU header from r. The returned header
// carries exactly the fields valid for its PDU type; the remaining bytes
// of r are the service-choice body, left for the caller (typically
// DecodeValueSequence) to consume.
func DecodeApduHeader(r io.Reader) (ApduHeader, error) {
	br := toByteReader(r)
	lead, err := readByte(br, "APDU lead octet")
	if err != nil {
		return nil, err
	}
	pduType := PDUType(lead >> 4)

	switch pduType {
	case PDUTypeConfirmedRequest:
		return decodeConfirmedRequest(br, lead)
	case PDUTypeUnconfirmedRequest:
		service, err := readByte(br, "unconfirmed service choice")
		if err != nil {
			return nil, err
		}
		return UnconfirmedReqHeader{Service: service}, nil
	case PDUTypeSimpleAck:
		invokeID, err := readByte(br, "invoke id")
		if err != nil {
			return nil, err
		}
		service, err := readByte(br, "service choice")
		if err != nil {
			return nil, err
		}
		return SimpleAckHeader{InvokeID: invokeID, Service: service}, nil
	case PDUTypeComplexAck:
		return decodeComplexAck(br, lead)
	case PDUTypeSegmentAck:
		invokeID, err := readByte(br, "invoke id")
		if err != nil {
			return nil, err
		}
		seq, err := readByte(br, "sequence number")
		if err != nil {
			return nil, err
		}
		window, err := readByte(br, "actual window size")
		if err != nil {
			return nil, err
		}
		return SegmentAckHeader{
			NegativeAck:      lead&0x02 != 0,
			Server:           lead&0x01 != 0,
			InvokeID:         invokeID,
			SequenceNumber:   seq,
			ActualWindowSize: window,
		}, nil
	case PDUTypeError:
		invokeID, err := readByte(br, "invoke id")
		if err != nil {
			return nil, err
		}
		choice, err := readByte(br, "error choice")
		if err != nil {
			return nil, err
		}
		return ErrorHeader{InvokeID: invokeID, ErrorChoice: choice}, nil
	case PDUTypeReject:
		invokeID, err := readByte(br, "invoke id")
		if err != nil {
			return nil, err
		}
		reason, err := readByte(br, "reject reason")
		if err != nil {
			return nil, err
		}
		return RejectHeader{InvokeID: invokeID, RejectReason: RejectReason(reason)}, nil
	case PDUTypeAbort:
		invokeID, err := readByte(br, "invoke id")
		if err != nil {
			return nil, err
		}
		reason, err := readByte(br, "abort reason")
		if err != nil {
			return nil, err
		}
		return AbortHeader{Server: lead&0x01 != 0, InvokeID: invokeID, AbortReason: AbortReason(reason)}, nil
	default:
		return nil, newDecodeError(InvalidData, fmt.Sprintf("unknown PDU type %d", pduType))
	}
}

func decodeConfirmedRequest(br byteReader, lead byte) (ApduHeader, error) {
	segmented := lead&0x08 != 0
	moreFollows := lead&0x04 != 0
	segmentedResponseAccepted := lead&0x02 != 0

	segControl, err := readByte(br, "max segments/apdu octet")
	if err != nil {
		return nil, err
	}
	invokeID, err := readByte(br, "invoke id")
	if err != nil {
		return nil, err
	}

	var segInfo *SegmentInfo
	if segmented {
		seq, err := readByte(br, "sequence number")
		if err != nil {
			return nil, err
		}
		window, err := readByte(br, "proposed window size")
		if err != nil {
			return nil, err
		}
		segInfo = &SegmentInfo{MoreFollows: moreFollows, SequenceNumber: seq, ProposedWindowSize: window}
	}

	service, err := readByte(br, "service choice")
	if err != nil {
		return nil, err
	}

	return ConfirmedReqHeader{
		Segmented:                 segInfo,
		SegmentedResponseAccepted: segmentedResponseAccepted,
		MaxSegments:               (segControl >> 4) & 0x07,
		MaxAPDU:                   segControl & 0x0F,
		InvokeID:                  invokeID,
		Service:                   service,
	}, nil
}

func decodeComplexAck(br byteReader, lead byte) (ApduHeader, error) {
	segmented := lead&0x08 != 0
	moreFollows := lead&0x04 != 0

	invokeID, err := readByte(br, "invoke id")
	if err != nil {
		return nil, err
	}

	var segInfo *SegmentInfo
	if segmented {
		seq, err := readByte(br, "sequence number")
		if err != nil {
			return nil, err
		}
		window, err := readByte(br, "proposed window size")
		if err != nil {
			return nil, err
		}
		segInfo = &SegmentInfo{MoreFollows: moreFollows, SequenceNumber: seq, ProposedWindowSize: window}
	}

	service, err := readByte(br, "service choice")
	if err != nil {
		return nil, err
	}

	return ComplexAckHeader{Segmented: segInfo, InvokeID: invokeID, Service: service}, nil
}

// EncodeApduHeader returns the wire encoding of h. It does not append the
// service-choice body; callers append that separately (typically via
// EncodeValueSequence).
func EncodeApduHeader(h ApduHeader) []byte {
	switch v := h.(type) {
	case ConfirmedReqHeader:
		if v.MaxSegments > 7 {
			panic(fmt.Sprintf("bacnet: max segments %d out of range 0-7", v.MaxSegments))
		}
		if v.MaxAPDU > 15 {
			panic(fmt.Sprintf("bacnet: max APDU size code %d out of range 0-15", v.MaxAPDU))
		}
		lead := byte(PDUTypeConfirmedRequest) << 4
		if v.Segmented != nil {
			lead |= 0x08
			if v.Segmented.MoreFollows {
				lead |= 0x04
			}
		}
		if v.SegmentedResponseAccepted {
			lead |= 0x02
		}
		buf := []byte{lead, (v.MaxSegments << 4) | v.MaxAPDU, v.InvokeID}
		if v.Segmented != nil {
			buf = append(buf, v.Segmented.SequenceNumber, v.Segmented.ProposedWindowSize)
		}
		return append(buf, v.Service)

	case UnconfirmedReqHeader:
		return []byte{byte(PDUTypeUnconfirmedRequest) << 4, v.Service}

	case SimpleAckHeader:
		return []byte{byte(PDUTypeSimpleAck) << 4, v.InvokeID, v.Service}

	case ComplexAckHeader:
		lead := byte(PDUTypeComplexAck) << 4
		if v.Segmented != nil {
			lead |= 0x08
			if v.Segmented.MoreFollows {
				lead |= 0x04
			}
		}
		buf := []byte{lead, v.InvokeID}
		if v.Segmented != nil {
			buf = append(buf, v.Segmented.SequenceNumber, v.Segmented.ProposedWindowSize)
		}
		return append(buf, v.Service)

	case SegmentAckHeader:
		lead := byte(PDUTypeSegmentAck) << 4
		if v.NegativeAck {
			lead |= 0x02
		}
		if v.Server {
			lead |= 0x01
		}
		return []byte{lead, v.InvokeID, v.SequenceNumber, v.ActualWindowSize}

	case ErrorHeader:
		return []byte{byte(PDUTypeError) << 4, v.InvokeID, v.ErrorChoice}

	case RejectHeader:
		return []byte{byte(PDUTypeReject) << 4, v.InvokeID, byte(v.RejectReason)}

	case AbortHeader:
		lead := byte(PDUTypeAbort) << 4
		if v.Server {
			lead |= 0x01
		}
		return []byte{lead, v.InvokeID, byte(v.AbortReason)}

	default:
		return nil
	}
}
