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

// Package bacnet implements the BACnet/IP virtual link, network, and
// application-layer codecs plus the Who-Is/I-Am discovery services.
package bacnet

import "fmt"

// DefaultPort is the standard BACnet/IP UDP port.
const DefaultPort = 47808

// MaxAPDULength is the largest APDU this package will construct.
const MaxAPDULength = 1476

// ConfirmedServiceChoice names the service codes a ConfirmedReqHeader may
// carry. This core never executes a confirmed service (Non-goal); the
// table exists so a rejection can name the service it is refusing.
type ConfirmedServiceChoice uint8

const (
	ServiceReadProperty         ConfirmedServiceChoice = 12
	ServiceReadPropertyMultiple ConfirmedServiceChoice = 14
	ServiceWriteProperty        ConfirmedServiceChoice = 15
	ServiceWritePropertyMultiple ConfirmedServiceChoice = 16
	ServiceSubscribeCOV         ConfirmedServiceChoice = 5
	ServiceReinitializeDevice   ConfirmedServiceChoice = 20
)

func (s ConfirmedServiceChoice) String() string {
	names := map[ConfirmedServiceChoice]string{
		ServiceReadProperty:          "ReadProperty",
		ServiceReadPropertyMultiple:  "ReadPropertyMultiple",
		ServiceWriteProperty:         "WriteProperty",
		ServiceWritePropertyMultiple: "WritePropertyMultiple",
		ServiceSubscribeCOV:          "SubscribeCOV",
		ServiceReinitializeDevice:    "ReinitializeDevice",
	}
	if name, ok := names[s]; ok {
		return name
	}
	return fmt.Sprintf("confirmed-service(%d)", uint8(s))
}

// UnconfirmedServiceChoice names the service codes an UnconfirmedReqHeader
// may carry. Only WhoIs is handled by Dispatch; IAm is emitted by Dispatch
// and decoded only by Discover.
type UnconfirmedServiceChoice uint8

const (
	ServiceIAm   UnconfirmedServiceChoice = 0
	ServiceIHave UnconfirmedServiceChoice = 1
	ServiceWhoHas UnconfirmedServiceChoice = 7
	ServiceWhoIs UnconfirmedServiceChoice = 8
)

func (s UnconfirmedServiceChoice) String() string {
	names := map[UnconfirmedServiceChoice]string{
		ServiceIAm:    "I-Am",
		ServiceIHave:  "I-Have",
		ServiceWhoHas: "Who-Has",
		ServiceWhoIs:  "Who-Is",
	}
	if name, ok := names[s]; ok {
		return name
	}
	return fmt.Sprintf("unconfirmed-service(%d)", uint8(s))
}

// ObjectType represents a BACnet object type code. The full standard table
// is carried (not just DEVICE) so CLI output and error messages can name
// an object type symbolically.
type ObjectType uint16

const (
	ObjectTypeAnalogInput  ObjectType = 0
	ObjectTypeAnalogOutput ObjectType = 1
	ObjectTypeAnalogValue  ObjectType = 2
	ObjectTypeBinaryInput  ObjectType = 3
	ObjectTypeBinaryOutput ObjectType = 4
	ObjectTypeBinaryValue  ObjectType = 5
	ObjectTypeDevice       ObjectType = 8
	ObjectTypeMultiStateInput  ObjectType = 13
	ObjectTypeMultiStateOutput ObjectType = 14
	ObjectTypeMultiStateValue  ObjectType = 19
	ObjectTypeTrendLog     ObjectType = 20
)

// DeviceObjectType is the object type of the single in-memory device
// record this core holds, per spec section 3.
const DeviceObjectType = ObjectTypeDevice

func (o ObjectType) String() string {
	names := map[ObjectType]string{
		ObjectTypeAnalogInput:      "analog-input",
		ObjectTypeAnalogOutput:     "analog-output",
		ObjectTypeAnalogValue:      "analog-value",
		ObjectTypeBinaryInput:      "binary-input",
		ObjectTypeBinaryOutput:     "binary-output",
		ObjectTypeBinaryValue:      "binary-value",
		ObjectTypeDevice:           "device",
		ObjectTypeMultiStateInput:  "multi-state-input",
		ObjectTypeMultiStateOutput: "multi-state-output",
		ObjectTypeMultiStateValue:  "multi-state-value",
		ObjectTypeTrendLog:         "trend-log",
	}
	if name, ok := names[o]; ok {
		return name
	}
	return fmt.Sprintf("vendor-specific(%d)", uint16(o))
}

// Segmentation represents a device's segmentation capability, carried in
// I-Am bodies and the compiled-in DeviceObject.
type Segmentation uint8

const (
	SegmentationBoth     Segmentation = 0
	SegmentationTransmit Segmentation = 1
	SegmentationReceive  Segmentation = 2
	SegmentationNone     Segmentation = 3
)

func (s Segmentation) String() string {
	names := map[Segmentation]string{
		SegmentationBoth:     "segmented-both",
		SegmentationTransmit: "segmented-transmit",
		SegmentationReceive:  "segmented-receive",
		SegmentationNone:     "no-segmentation",
	}
	if name, ok := names[s]; ok {
		return name
	}
	return fmt.Sprintf("segmentation(%d)", uint8(s))
}

// Address is a transport-layer peer address: a BACnet network number
// (0 for the local network, matching this core's unrouted profile) plus
// the raw MAC-layer octets (4 for an IPv4 address, 6 with a trailing
// port).
type Address struct {
	Net  uint16
	Addr []byte
}

func (a Address) String() string {
	switch len(a.Addr) {
	case 4:
		return fmt.Sprintf("%d.%d.%d.%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3])
	case 6:
		port := int(a.Addr[4])<<8 | int(a.Addr[5])
		return fmt.Sprintf("%d.%d.%d.%d:%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3], port)
	default:
		return fmt.Sprintf("%x", a.Addr)
	}
}
