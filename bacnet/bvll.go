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
	"encoding/binary"
	"fmt"
)

const bvllType = 0x81

// BVLCFunction enumerates the BACnet Virtual Link Control function codes.
// Only OriginalUnicastNPDU is accepted by DecodeBVLL; the rest are kept
// named so an unsupported-function error can report what it saw.
type BVLCFunction uint8

const (
	BVLCResult                            BVLCFunction = 0x00
	BVLCWriteBroadcastDistributionTable   BVLCFunction = 0x01
	BVLCReadBroadcastDistributionTable    BVLCFunction = 0x02
	BVLCReadBroadcastDistributionTableAck BVLCFunction = 0x03
	BVLCForwardedNPDU                     BVLCFunction = 0x04
	BVLCRegisterForeignDevice             BVLCFunction = 0x05
	BVLCReadForeignDeviceTable            BVLCFunction = 0x06
	BVLCReadForeignDeviceTableAck         BVLCFunction = 0x07
	BVLCDeleteForeignDeviceTableEntry     BVLCFunction = 0x08
	BVLCDistributeBroadcastToNetwork      BVLCFunction = 0x09
	BVLCOriginalUnicastNPDU               BVLCFunction = 0x0A
	BVLCOriginalBroadcastNPDU             BVLCFunction = 0x0B
	BVLCSecureBVLL                        BVLCFunction = 0x0C
)

// VllFrame is currently a singleton variant: OriginalUnicastNPDU carrying
// the inner NPDU octets. Other BVLL functions are reserved (named above)
// but not constructible here.
type VllFrame struct {
	NPDU []byte
}

// EncodeBVLL writes the 4-octet BVLL header (type 0x81, function 0x0A,
// 16-bit total length) followed by frame.NPDU.
func EncodeBVLL(frame VllFrame) []byte {
	total := 4 + len(frame.NPDU)
	buf := make([]byte, 4, total)
	buf[0] = bvllType
	buf[1] = byte(BVLCOriginalUnicastNPDU)
	binary.BigEndian.PutUint16(buf[2:4], uint16(total))
	return append(buf, frame.NPDU...)
}

// DecodeBVLL decodes data as a BVLL frame. Errors: fewer than 4 octets,
// a lead octet other than 0x81, a declared length that does not match the
// actual buffer length (InvalidData), or a function code other than
// OriginalUnicastNPDU (Unsupported).
func DecodeBVLL(data []byte) (VllFrame, error) {
	if len(data) < 4 {
		return VllFrame{}, newDecodeError(InvalidData, "BVLL frame shorter than 4 octets")
	}
	if data[0] != bvllType {
		return VllFrame{}, newDecodeError(InvalidData, fmt.Sprintf("BVLL lead octet 0x%02x, want 0x81", data[0]))
	}

	declared := int(binary.BigEndian.Uint16(data[2:4]))
	if declared != len(data) {
		return VllFrame{}, newDecodeError(InvalidData,
			fmt.Sprintf("BVLL declared length %d does not match buffer length %d", declared, len(data)))
	}

	function := BVLCFunction(data[1])
	if function != BVLCOriginalUnicastNPDU {
		return VllFrame{}, newDecodeError(Unsupported, fmt.Sprintf("BVLL function 0x%02x", byte(function)))
	}

	return VllFrame{NPDU: data[4:]}, nil
}
