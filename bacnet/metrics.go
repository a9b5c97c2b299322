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
	"sync/atomic"
	"time"
)

// Counter is a thread-safe counter, used by the UDP shell (not the pure
// codec core) to track dispatch-loop activity.
type Counter struct {
	value int64
}

func (c *Counter) Add(delta int64) { atomic.AddInt64(&c.value, delta) }
func (c *Counter) Inc()             { c.Add(1) }
func (c *Counter) Value() int64     { return atomic.LoadInt64(&c.value) }
func (c *Counter) Reset()           { atomic.StoreInt64(&c.value, 0) }

// Metrics holds the counters of the dispatch loop. Serve increments
// DatagramsReceived, DecodeFailures, WhoIsReceived and IAmSent; Discover
// takes no Metrics, and nothing in this package increments the other
// counters. There is no connection-state or COV subscription
// tracking here — this core has neither, per spec section 5.
type Metrics struct {
	DatagramsReceived Counter
	DecodeFailures    Counter
	WhoIsReceived     Counter
	WhoIsSent         Counter
	IAmSent           Counter
	IAmReceived       Counter
	DevicesDiscovered Counter
	Rejected          Counter

	startTime    time.Time
	lastActivity atomic.Int64
}

// NewMetrics creates a zeroed Metrics with its start time set to now.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordActivity stamps the last-activity timestamp.
func (m *Metrics) RecordActivity() {
	m.lastActivity.Store(time.Now().UnixNano())
}

// LastActivity returns the last recorded activity time, or the metrics
// start time if no activity has been recorded yet.
func (m *Metrics) LastActivity() time.Time {
	ns := m.lastActivity.Load()
	if ns == 0 {
		return m.startTime
	}
	return time.Unix(0, ns)
}

// Uptime returns the time since this Metrics was created.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Snapshot is a point-in-time, race-free copy of Metrics for display.
type Snapshot struct {
	Uptime            time.Duration
	DatagramsReceived int64
	DecodeFailures    int64
	WhoIsReceived     int64
	WhoIsSent         int64
	IAmSent           int64
	IAmReceived       int64
	DevicesDiscovered int64
	Rejected          int64
	LastActivity      time.Time
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Uptime:            m.Uptime(),
		DatagramsReceived: m.DatagramsReceived.Value(),
		DecodeFailures:    m.DecodeFailures.Value(),
		WhoIsReceived:     m.WhoIsReceived.Value(),
		WhoIsSent:         m.WhoIsSent.Value(),
		IAmSent:           m.IAmSent.Value(),
		IAmReceived:       m.IAmReceived.Value(),
		DevicesDiscovered: m.DevicesDiscovered.Value(),
		Rejected:          m.Rejected.Value(),
		LastActivity:      m.LastActivity(),
	}
}
