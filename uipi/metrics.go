// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uipi

import (
	"sync/atomic"
)

// Metrics tracks control-plane operation counts.
type Metrics struct {
	SendersCreated    atomic.Uint64
	SendersReleased   atomic.Uint64
	ReceiversCreated  atomic.Uint64
	ReceiversReleased atomic.Uint64

	Connects    atomic.Uint64
	Disconnects atomic.Uint64
	Listens     atomic.Uint64
	Unlistens   atomic.Uint64

	// Failures counts control requests folded to the generic error
	// return at the syscall boundary.
	Failures atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	SendersCreated    uint64
	SendersReleased   uint64
	ReceiversCreated  uint64
	ReceiversReleased uint64

	Connects    uint64
	Disconnects uint64
	Listens     uint64
	Unlistens   uint64

	Failures uint64

	// LiveSenders and LiveReceivers are derived counts of endpoints
	// created but not yet released.
	LiveSenders   uint64
	LiveReceivers uint64
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		SendersCreated:    m.SendersCreated.Load(),
		SendersReleased:   m.SendersReleased.Load(),
		ReceiversCreated:  m.ReceiversCreated.Load(),
		ReceiversReleased: m.ReceiversReleased.Load(),
		Connects:          m.Connects.Load(),
		Disconnects:       m.Disconnects.Load(),
		Listens:           m.Listens.Load(),
		Unlistens:         m.Unlistens.Load(),
		Failures:          m.Failures.Load(),
	}

	snap.LiveSenders = snap.SendersCreated - snap.SendersReleased
	snap.LiveReceivers = snap.ReceiversCreated - snap.ReceiversReleased

	return snap
}
