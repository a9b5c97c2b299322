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
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/edgeo-scada/bacnet/bacnet/internal/transport"
)

// DiscoveredDevice pairs an I-Am announcement with the peer address it
// arrived from, since the announcement body itself carries no network
// address (the device's routable address is the UDP source, not part of
// the BACnet-layer payload).
type DiscoveredDevice struct {
	IAmAnnouncement
	Source Address
}

// Discover broadcasts a Who-Is and collects I-Am replies until the
// discovery timeout elapses or ctx is cancelled, whichever comes first.
func Discover(ctx context.Context, opts ...DiscoverOption) ([]DiscoveredDevice, error) {
	options := defaultDiscoverOptions()
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	t := transport.NewUDPTransport(options.localAddress)
	if err := t.Open(ctx); err != nil {
		return nil, fmt.Errorf("open discovery transport: %w", err)
	}
	defer t.Close()

	req := WhoIsRequest{Low: options.LowLimit, High: options.HighLimit}
	body := EncodeValueSequence(MarshalWhoIs(req))
	apdu := EncodeApduHeader(UnconfirmedReqHeader{Service: uint8(ServiceWhoIs)})
	npdu := EncodeNPDU(NoReply(append(apdu, body...)))
	frame := EncodeBVLL(VllFrame{NPDU: npdu})

	if err := t.Broadcast(ctx, DefaultPort, frame); err != nil {
		return nil, fmt.Errorf("broadcast Who-Is: %w", err)
	}

	discoverCtx, cancel := context.WithTimeout(ctx, options.Timeout)
	defer cancel()

	var found []DiscoveredDevice
	for {
		data, addr, err := t.Receive(discoverCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				break
			}
			logger.Warn("discovery receive failed", "error", err)
			continue
		}

		announcement, ok, err := decodeIAm(data)
		if err != nil {
			logger.Debug("discarding unparseable discovery reply", "from", addr, "error", err)
			continue
		}
		if !ok {
			continue
		}
		found = append(found, DiscoveredDevice{
			IAmAnnouncement: announcement,
			Source:          Address{Net: options.Network, Addr: addr.IP.To4()},
		})
	}

	return found, nil
}

func decodeIAm(datagram []byte) (IAmAnnouncement, bool, error) {
	frame, err := DecodeBVLL(datagram)
	if err != nil {
		return IAmAnnouncement{}, false, err
	}
	indication, err := DecodeNPDU(frame.NPDU)
	if err != nil {
		return IAmAnnouncement{}, false, err
	}
	header, err := DecodeApduHeader(bytes.NewReader(indication.Data))
	if err != nil {
		return IAmAnnouncement{}, false, err
	}
	unconfirmed, ok := header.(UnconfirmedReqHeader)
	if !ok || UnconfirmedServiceChoice(unconfirmed.Service) != ServiceIAm {
		return IAmAnnouncement{}, false, nil
	}

	consumed := apduHeaderLen(header)
	body, err := DecodeValueSequence(bytes.NewReader(indication.Data[consumed:]), nil)
	if err != nil {
		return IAmAnnouncement{}, false, err
	}
	announcement, err := UnmarshalIAm(body)
	if err != nil {
		return IAmAnnouncement{}, false, err
	}
	return announcement, true, nil
}

// apduHeaderLen returns the wire length of an already-decoded header, so
// the caller can locate the service body that follows it in the same
// datagram.
func apduHeaderLen(h ApduHeader) int {
	return len(EncodeApduHeader(h))
}
