// UINTC software model
// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package uintcsim implements a software model of the UINTC matrix over a
// plain memory region, with the register layout of the real controller.
//
// The model is meant for development and testing on hosts without the
// hardware block: the kernel driver and user-space fast path operate on
// the backing region exactly as they would on the device, while Step
// performs the routing work the hardware does autonomously.
//
// One behaviour cannot be reproduced over plain memory: the hardware
// claim register clears its pending source as a side effect of being
// read. The model instead latches the claim word on each Step, popping
// one pending event per receiver; a subsequent Step with no pending
// events resets the latch to 0.
package uintcsim

import (
	"sync"

	"github.com/karst-os/karst/bits"
	"github.com/karst-os/karst/internal/reg"
	"github.com/karst-os/karst/soc/uintc"
)

// Model represents a simulated UINTC instance.
type Model struct {
	sync.Mutex

	// Base register of the backing region
	Base uint64
	// Number of sender slots
	MaxSender int
	// Number of receiver slots
	MaxReceiver int
	// Number of hart contexts
	Harts int

	// UserIRQ, when set, is invoked for each hart whose listening
	// receiver becomes pending during Step.
	UserIRQ func(hart int)

	// keeps the backing region alive for models created by New
	mem []byte
}

// New allocates a zeroed backing region covering both endpoint zones and
// returns a model operating on it. The region is anchored by the model
// and remains valid for the model's lifetime.
func New(maxSender, maxReceiver, harts int) *Model {
	mem := make([]byte, uintc.ReceiverBase+(maxReceiver+1)*uintc.ReceiverStride)

	m := &Model{
		MaxSender:   maxSender,
		MaxReceiver: maxReceiver,
		Harts:       harts,
		mem:         mem,
	}
	m.Base = reg.SliceAddr(mem)

	return m
}

func (m *Model) senderAddr(slot int) uint64 {
	return m.Base + uintc.SenderBase + uintc.SenderStride*uint64(slot)
}

func (m *Model) receiverAddr(slot int) uint64 {
	return m.Base + uintc.ReceiverBase + uintc.ReceiverStride*uint64(slot)
}

// receiverSlot resolves a logical receiver id to the slot whose bound-id
// register holds it, 0 if no slot matches.
func (m *Model) receiverSlot(id uint32) int {
	for slot := 1; slot <= m.MaxReceiver; slot++ {
		if reg.Read(m.receiverAddr(slot)+uintc.IDOffset) == id {
			return slot
		}
	}

	return 0
}

func (m *Model) enabled(senderSlot, receiverSlot int) bool {
	word, pos := bits.Split(receiverSlot)
	addr := m.senderAddr(senderSlot) + uintc.EnableOffset + 4*uint64(word)

	return reg.Get(addr, pos, 1) == 1
}

func (m *Model) raise(receiverSlot int) {
	if m.UserIRQ == nil {
		return
	}

	for hart := 0; hart < m.Harts; hart++ {
		addr := m.Base + uintc.ContextBase + uintc.ContextStride*uint64(hart)

		if int(reg.Read(addr)) == receiverSlot {
			m.UserIRQ(hart)
		}
	}
}

// deliver consumes one send-status write: the stored value is a logical
// receiver id, routed only if the matrix bit for the resolved receiver
// slot is enabled.
func (m *Model) deliver(senderSlot int) {
	addr := m.senderAddr(senderSlot) + uintc.SendStatusOffset

	target := reg.Read(addr)
	if target == 0 {
		return
	}

	reg.Write(addr, 0)

	receiverSlot := m.receiverSlot(target)
	if receiverSlot == 0 || !m.enabled(senderSlot, receiverSlot) {
		return
	}

	word, pos := bits.Split(senderSlot)
	reg.Set(m.receiverAddr(receiverSlot)+uintc.PendingOffset+4*uint64(word), pos)

	m.raise(receiverSlot)
}

// latch pops the lowest pending sender slot of a receiver into its claim
// word, writing the sender's bound id, or 0 when nothing is pending.
func (m *Model) latch(receiverSlot int) {
	base := m.receiverAddr(receiverSlot)

	for senderSlot := 1; senderSlot <= m.MaxSender; senderSlot++ {
		word, pos := bits.Split(senderSlot)
		pending := base + uintc.PendingOffset + 4*uint64(word)

		if reg.Get(pending, pos, 1) == 0 {
			continue
		}

		reg.Clear(pending, pos)

		id := reg.Read(m.senderAddr(senderSlot) + uintc.IDOffset)
		reg.Write(base+uintc.ClaimOffset, id)

		return
	}

	reg.Write(base+uintc.ClaimOffset, 0)
}

// Step performs one round of the routing work the hardware does
// autonomously: consuming send-status writes, marking pending receivers,
// raising user interrupts on listening harts and refreshing claim words.
func (m *Model) Step() {
	m.Lock()
	defer m.Unlock()

	for slot := 1; slot <= m.MaxSender; slot++ {
		m.deliver(slot)
	}

	for slot := 1; slot <= m.MaxReceiver; slot++ {
		m.latch(slot)
	}
}
