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
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeo-scada/bacnet/bacnet"
)

var (
	discoverTimeout   time.Duration
	discoverLowLimit  uint32
	discoverHighLimit uint32
	discoverNetwork   uint16
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover BACnet/IP devices on the local network",
	Long: `discover broadcasts a Who-Is request and reports every I-Am reply
received before the discovery timeout elapses.

Examples:
  # Discover all devices
  edgeo-bacnet discover

  # Discover devices with instance IDs 1-100
  edgeo-bacnet discover --low 1 --high 100`,

	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().DurationVar(&discoverTimeout, "discover-timeout", 5*time.Second, "Discovery timeout")
	discoverCmd.Flags().Uint32Var(&discoverLowLimit, "low", 0, "Low limit for device instance range (0 = no limit)")
	discoverCmd.Flags().Uint32Var(&discoverHighLimit, "high", 0, "High limit for device instance range (0 = no limit)")
	discoverCmd.Flags().Uint16Var(&discoverNetwork, "network", 0, "Target network number (0 = local)")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout+discoverTimeout)
	defer cancel()

	fmt.Fprintln(os.Stderr, "Discovering BACnet devices...")

	discoverOpts := []bacnet.DiscoverOption{
		bacnet.WithDiscoveryTimeout(discoverTimeout),
		bacnet.WithDiscoverLogger(logger),
	}
	if localAddress != "" {
		discoverOpts = append(discoverOpts, bacnet.WithDiscoverLocalAddress(localAddress))
	}
	if discoverLowLimit > 0 || discoverHighLimit > 0 {
		low := discoverLowLimit
		high := discoverHighLimit
		if high == 0 {
			high = 0x3FFFFF
		}
		discoverOpts = append(discoverOpts, bacnet.WithDeviceRange(low, high))
	}
	if discoverNetwork > 0 {
		discoverOpts = append(discoverOpts, bacnet.WithTargetNetwork(discoverNetwork))
	}

	devices, err := bacnet.Discover(ctx, discoverOpts...)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found")
		return nil
	}

	switch outputFmt {
	case "json":
		return outputDevicesJSON(devices)
	case "csv":
		return outputDevicesCSV(devices)
	default:
		return outputDevicesTable(devices)
	}
}

func outputDevicesTable(devices []bacnet.DiscoveredDevice) error {
	f := NewFormatter("table")
	rows := make([][]string, 0, len(devices))
	for _, dev := range devices {
		rows = append(rows, []string{
			fmt.Sprintf("%d", dev.Instance),
			dev.Source.String(),
			fmt.Sprintf("%d", dev.VendorID),
			dev.Segmentation.String(),
			fmt.Sprintf("%d", dev.MaxAPDULength),
		})
	}
	f.PrintTable([]string{"DEVICE ID", "ADDRESS", "VENDOR", "SEGMENTATION", "MAX APDU"}, rows)
	fmt.Printf("\nFound %d device(s)\n", len(devices))
	return nil
}

func outputDevicesJSON(devices []bacnet.DiscoveredDevice) error {
	fmt.Println("[")
	for i, dev := range devices {
		comma := ","
		if i == len(devices)-1 {
			comma = ""
		}
		fmt.Printf(`  {"device_id": %d, "address": "%s", "vendor_id": %d, "segmentation": "%s", "max_apdu": %d}%s`+"\n",
			dev.Instance,
			dev.Source.String(),
			dev.VendorID,
			dev.Segmentation.String(),
			dev.MaxAPDULength,
			comma,
		)
	}
	fmt.Println("]")
	return nil
}

func outputDevicesCSV(devices []bacnet.DiscoveredDevice) error {
	fmt.Println("device_id,address,vendor_id,segmentation,max_apdu")
	for _, dev := range devices {
		fmt.Printf("%d,%s,%d,%s,%d\n",
			dev.Instance,
			dev.Source.String(),
			dev.VendorID,
			dev.Segmentation.String(),
			dev.MaxAPDULength,
		)
	}
	return nil
}
