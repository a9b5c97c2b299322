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
	"log/slog"
	"net"

	"github.com/edgeo-scada/bacnet/bacnet/internal/transport"
)

// Serve binds a UDP socket and answers Who-Is requests with I-Am on behalf
// of device until ctx is cancelled. It holds no other application state:
// confirmed services and COV subscriptions are out of this core's scope,
// and any PDU type other than an unconfirmed request is logged and
// dropped rather than answered with Error/Reject/Abort.
func Serve(ctx context.Context, device DeviceObject, metrics *Metrics, opts ...Option) error {
	options := defaultServeOptions()
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if metrics == nil {
		metrics = NewMetrics()
	}

	t := transport.NewUDPTransport(options.localAddress)
	if err := t.Open(ctx); err != nil {
		return fmt.Errorf("open serve transport: %w", err)
	}
	defer t.Close()

	logger.Info("bacnet server listening", "local_addr", t.LocalAddr(), "device_instance", device.Instance)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		data, addr, err := t.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			logger.Warn("receive failed", "error", err)
			continue
		}
		metrics.DatagramsReceived.Inc()
		metrics.RecordActivity()

		resp, respAddr, err := handleDatagram(data, addr, device, metrics, logger)
		if err != nil {
			metrics.DecodeFailures.Inc()
			logger.Debug("dropping unparseable datagram", "from", addr, "error", err)
			continue
		}
		if resp == nil {
			continue
		}
		if err := t.Send(ctx, respAddr, resp); err != nil {
			logger.Warn("send failed", "to", respAddr, "error", err)
		}
	}
}

func handleDatagram(data []byte, addr *net.UDPAddr, device DeviceObject, metrics *Metrics, logger *slog.Logger) ([]byte, *net.UDPAddr, error) {
	frame, err := DecodeBVLL(data)
	if err != nil {
		return nil, nil, err
	}
	indication, err := DecodeNPDU(frame.NPDU)
	if err != nil {
		return nil, nil, err
	}
	header, err := DecodeApduHeader(bytes.NewReader(indication.Data))
	if err != nil {
		return nil, nil, err
	}

	unconfirmed, ok := header.(UnconfirmedReqHeader)
	if !ok {
		logger.Debug("ignoring non-unconfirmed PDU", "pdu_type", header.PDUType(), "from", addr)
		return nil, nil, nil
	}

	service := UnconfirmedServiceChoice(unconfirmed.Service)
	if service == ServiceWhoIs {
		metrics.WhoIsReceived.Inc()
	}

	var resolver ContextResolver
	if service == ServiceWhoIs {
		resolver = WhoIsContextResolver
	}

	consumed := apduHeaderLen(header)
	body, err := DecodeValueSequence(bytes.NewReader(indication.Data[consumed:]), resolver)
	if err != nil {
		return nil, nil, err
	}

	resp, err := Dispatch(header, body, device)
	if err != nil {
		return nil, nil, err
	}
	if resp == nil {
		return nil, nil, nil
	}
	metrics.IAmSent.Inc()

	apdu := EncodeApduHeader(resp.Header)
	apdu = append(apdu, EncodeValueSequence(resp.Body)...)
	npdu := EncodeNPDU(NoReply(apdu))
	out := EncodeBVLL(VllFrame{NPDU: npdu})
	return out, addr, nil
}
