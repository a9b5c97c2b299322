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

const npduVersion = 0x01

// control octet bit positions this profile cares about; bits 7/5/3 are
// rejected outright (network-layer message, foreign destination, foreign
// source specifiers) per original_source/src/network.rs's decode.
const (
	npduControlNetworkLayerMessage = 0x80
	npduControlForeignDest         = 0x20
	npduControlExpectingReply      = 0x04
	npduControlForeignSrc          = 0x08
	npduControlPriorityMask        = 0x03
)

// NetworkRequest is the encode-side value: a payload plus the priority and
// reply-expected flag that become the NPDU control octet. This profile
// never emits source/destination specifiers or network-layer messages.
type NetworkRequest struct {
	Data                []byte
	NetworkPriority     uint8 // 0-3
	DataExpectingReply  bool
}

// NoReply builds a NetworkRequest with priority 0 and no reply expected.
func NoReply(data []byte) NetworkRequest {
	return NetworkRequest{Data: data, NetworkPriority: 0}
}

// ExpectReply builds a NetworkRequest with priority 0 and reply expected.
func ExpectReply(data []byte) NetworkRequest {
	return NetworkRequest{Data: data, NetworkPriority: 0, DataExpectingReply: true}
}

// NetworkIndication is the decode-side value.
type NetworkIndication struct {
	Data               []byte
	NetworkPriority    uint8
	DataExpectingReply bool
}

// EncodeNPDU writes the 2-octet NPDU header (version + control) followed
// by req.Data. NetworkPriority > 3 is a contract violation: the caller
// built an invalid NetworkRequest and the encoder rejects it before
// writing, per spec section 4.8.
func EncodeNPDU(req NetworkRequest) []byte {
	if req.NetworkPriority > 3 {
		panic(fmt.Sprintf("bacnet: network priority %d out of range 0-3", req.NetworkPriority))
	}

	control := req.NetworkPriority & npduControlPriorityMask
	if req.DataExpectingReply {
		control |= npduControlExpectingReply
	}

	buf := make([]byte, 0, 2+len(req.Data))
	buf = append(buf, npduVersion, control)
	return append(buf, req.Data...)
}

// DecodeNPDU decodes data as an NPDU. It rejects, as Unsupported, any
// version other than 1 and any of the network-layer-message / foreign
// destination / foreign source control bits.
func DecodeNPDU(data []byte) (NetworkIndication, error) {
	if len(data) < 2 {
		return NetworkIndication{}, newDecodeError(InputEndedBeforeParsingCompleted, "NPDU header")
	}

	version := data[0]
	if version != npduVersion {
		return NetworkIndication{}, newDecodeError(Unsupported, fmt.Sprintf("NPDU version %d", version))
	}

	control := data[1]
	if control&npduControlNetworkLayerMessage != 0 {
		return NetworkIndication{}, newDecodeError(Unsupported, "network-layer message")
	}
	if control&npduControlForeignDest != 0 {
		return NetworkIndication{}, newDecodeError(Unsupported, "foreign destination specifier")
	}
	if control&npduControlForeignSrc != 0 {
		return NetworkIndication{}, newDecodeError(Unsupported, "foreign source specifier")
	}

	return NetworkIndication{
		Data:               data[2:],
		NetworkPriority:    control & npduControlPriorityMask,
		DataExpectingReply: control&npduControlExpectingReply != 0,
	}, nil
}
