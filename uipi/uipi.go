// User-level inter-processor interrupt (UIPI) control subsystem
// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package uipi implements the control plane for user-level
// inter-processor interrupts over the UINTC matrix.
//
// Unprivileged tasks send and receive cross-task interrupts directly
// through memory-mapped endpoint pages, without kernel mediation on the
// fast path. The kernel retains exclusive authority over endpoint
// allocation, page mapping, routing and teardown, all of which flow
// through the Manager in this package.
//
// Each endpoint pairs a logical id, visible to the owning process, with
// a hardware slot index in the UINTC. Both are drawn from bounded
// recycling pools and the pairing is stable for the endpoint's lifetime.
package uipi

import (
	"github.com/karst-os/karst/internal/logging"
	"github.com/karst-os/karst/soc/uintc"
)

// PageSize is the granule at which endpoint hardware pages are mapped
// into user address spaces.
const PageSize = 4096

// Manager owns the UIPI id pools and drives the UINTC matrix on behalf
// of the control-plane operations. The pools and the matrix mutex are
// kernel-lifetime singletons, one Manager exists per controller.
type Manager struct {
	// Hart returns the id of the invoking hart, it must be set by the
	// embedding kernel before control-plane operations run.
	Hart func() int

	hw  *uintc.UINTC
	log *logging.Logger

	senderIDs     *pool[uint32]
	senderSlots   *pool[uint16]
	receiverIDs   *pool[uint32]
	receiverSlots *pool[uint16]

	metrics Metrics
}

// New initializes a UIPI manager for the argument controller. Logical
// ids and hardware slots both range over [1, max] for their endpoint
// kind, 0 is reserved as none.
func New(hw *uintc.UINTC) *Manager {
	return &Manager{
		Hart: func() int { return 0 },
		hw:   hw,
		log:  logging.Default(),

		senderIDs:     newPool[uint32](1, uint32(hw.MaxSender)+1),
		senderSlots:   newPool[uint16](1, uint16(hw.MaxSender)+1),
		receiverIDs:   newPool[uint32](1, uint32(hw.MaxReceiver)+1),
		receiverSlots: newPool[uint16](1, uint16(hw.MaxReceiver)+1),
	}
}

// Controller returns the UINTC instance driven by the manager.
func (m *Manager) Controller() *uintc.UINTC {
	return m.hw
}

// Metrics returns the manager's operation counters.
func (m *Manager) Metrics() *Metrics {
	return &m.metrics
}
