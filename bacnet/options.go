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
	"log/slog"
	"time"
)

// serveOptions holds configuration for Serve. There is no BBMD/foreign
// registration or confirmed-request retry machinery here; this core
// neither registers with a BBMD nor retries confirmed requests.
type serveOptions struct {
	localAddress  string
	networkNumber uint16

	maxAPDULength uint16
	segmentation  Segmentation

	logger *slog.Logger
}

func defaultServeOptions() *serveOptions {
	return &serveOptions{
		networkNumber: 0,
		maxAPDULength: MaxAPDULength,
		segmentation:  SegmentationNone,
		logger:        slog.Default(),
	}
}

// Option is a functional option for Serve. Discover takes DiscoverOption.
type Option func(*serveOptions)

// WithLocalAddress sets the local address to bind to.
func WithLocalAddress(addr string) Option {
	return func(o *serveOptions) {
		o.localAddress = addr
	}
}

// WithNetworkNumber stores a BACnet network number in the Serve options.
// Serve does not read it, and an I-Am body carries no network number.
func WithNetworkNumber(net uint16) Option {
	return func(o *serveOptions) {
		o.networkNumber = net
	}
}

// WithMaxAPDULength stores a maximum APDU length in the Serve options.
// Serve does not read it: the I-Am reply reports the DeviceObject's
// MaxAPDULengthSupported.
func WithMaxAPDULength(length uint16) Option {
	return func(o *serveOptions) {
		o.maxAPDULength = length
	}
}

// WithSegmentation stores a segmentation capability in the Serve options.
// Serve does not read it: the I-Am reply reports the DeviceObject's
// SegmentationSupported.
func WithSegmentation(seg Segmentation) Option {
	return func(o *serveOptions) {
		o.segmentation = seg
	}
}

// WithLogger sets the logger used by Serve. Discover takes
// WithDiscoverLogger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *serveOptions) {
		o.logger = logger
	}
}

// DiscoverOptions holds configuration for device discovery.
type DiscoverOptions struct {
	LowLimit  *uint32
	HighLimit *uint32

	Timeout time.Duration
	Network uint16

	localAddress string
	logger       *slog.Logger
}

// DiscoverOption is a functional option for discovery.
type DiscoverOption func(*DiscoverOptions)

func defaultDiscoverOptions() *DiscoverOptions {
	return &DiscoverOptions{
		Timeout: 5 * time.Second,
		Network: 0,
		logger:  slog.Default(),
	}
}

// WithDeviceRange sets the device instance range for discovery.
func WithDeviceRange(low, high uint32) DiscoverOption {
	return func(o *DiscoverOptions) {
		o.LowLimit = &low
		o.HighLimit = &high
	}
}

// WithDiscoveryTimeout sets how long Discover waits for I-Am replies.
func WithDiscoveryTimeout(d time.Duration) DiscoverOption {
	return func(o *DiscoverOptions) {
		o.Timeout = d
	}
}

// WithTargetNetwork sets the network number recorded in each
// DiscoveredDevice's Source address. The Who-Is itself is always broadcast
// on the local network; it carries no destination network.
func WithTargetNetwork(net uint16) DiscoverOption {
	return func(o *DiscoverOptions) {
		o.Network = net
	}
}

// WithDiscoverLocalAddress sets the local address Discover binds to.
func WithDiscoverLocalAddress(addr string) DiscoverOption {
	return func(o *DiscoverOptions) {
		o.localAddress = addr
	}
}

// WithDiscoverLogger sets the logger used by Discover.
func WithDiscoverLogger(logger *slog.Logger) DiscoverOption {
	return func(o *DiscoverOptions) {
		o.logger = logger
	}
}
