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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeo-scada/bacnet/bacnet"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer Who-Is requests on behalf of a local device",
	Long: `serve binds a UDP socket and replies to Who-Is broadcasts with I-Am,
as a single BACnet/IP device. It does not implement any confirmed service
or COV subscription: requests of any other kind are logged and dropped.

Examples:
  edgeo-bacnet serve --device 1234 --vendor-id 260`,

	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	device := bacnet.DeviceObject{
		Instance:               deviceID,
		MaxAPDULengthSupported: uint32(maxAPDU),
		SegmentationSupported:  parseSegmentation(segmentation),
		VendorIdentifier:       vendorID,
	}

	metrics := bacnet.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Fprintln(os.Stderr, "shutting down...")
		cancel()
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap := metrics.Snapshot()
				logger.Info("serve metrics", "who_is_received", snap.WhoIsReceived, "i_am_sent", snap.IAmSent,
					"decode_failures", snap.DecodeFailures, "uptime", snap.Uptime)
			}
		}
	}()

	opts := []bacnet.Option{
		bacnet.WithLogger(logger),
		bacnet.WithMaxAPDULength(maxAPDU),
		bacnet.WithSegmentation(parseSegmentation(segmentation)),
	}
	if localAddress != "" {
		opts = append(opts, bacnet.WithLocalAddress(localAddress))
	}

	return bacnet.Serve(ctx, device, metrics, opts...)
}
