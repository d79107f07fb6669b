// UINTC user-interrupt controller matrix driver
// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package uintc implements a driver for the User-Interrupt Controller
// (UINTC) matrix, the memory-mapped block which routes user-level
// inter-processor interrupts between sender and receiver endpoint slots.
//
// The controller exposes three zones indexed by hardware slot: per-hart
// context words selecting the currently listening receiver, sender slots
// and receiver slots. Each slot carries a bound endpoint id register and
// enable/pending bitmaps indexed by receiver slot. Slot 0 is reserved in
// both endpoint zones, all real slots start at index 1.
//
// Every mutating access is serialized by a single driver-wide mutex, as
// read-modify-write cycles on the bitmaps are not atomic at word
// granularity.
package uintc

import (
	"sync"

	"github.com/karst-os/karst/bits"
	"github.com/karst-os/karst/internal/reg"
)

// UINTC zone layout
const (
	ContextBase   = 0x0
	ContextStride = 0x4

	SenderBase   = 0x0
	SenderStride = 0x2000

	ReceiverBase   = 0x2000000
	ReceiverStride = 0x2000

	// Size is the span of the whole UINTC region.
	Size = 0x4000000
)

// Per-slot register offsets, identical for sender and receiver slots.
const (
	SendStatusOffset = 0x0
	ClaimOffset      = 0x0
	IDOffset         = 0x1000
	EnableOffset     = 0x1800
	PendingOffset    = 0x1a00
)

// UINTC represents a User-Interrupt Controller instance.
type UINTC struct {
	sync.Mutex

	// Base register
	Base uint64
	// Number of sender slots
	MaxSender int
	// Number of receiver slots
	MaxReceiver int
}

// SenderAddr returns the base address of a sender slot.
func (hw *UINTC) SenderAddr(slot uint16) uint64 {
	return hw.Base + SenderBase + SenderStride*uint64(slot)
}

// ReceiverAddr returns the base address of a receiver slot.
func (hw *UINTC) ReceiverAddr(slot uint16) uint64 {
	return hw.Base + ReceiverBase + ReceiverStride*uint64(slot)
}

func (hw *UINTC) contextAddr(hart int) uint64 {
	return hw.Base + ContextBase + ContextStride*uint64(hart)
}

// bitmapWords returns the number of 32-bit words in a slot enable or
// pending bitmap, which is indexed by receiver slot in both zones.
func (hw *UINTC) bitmapWords() int {
	return (hw.MaxReceiver + 31) / 32
}

func (hw *UINTC) bindSender(slot uint16, id uint32) {
	reg.Write(hw.SenderAddr(slot)+IDOffset, id)
}

func (hw *UINTC) bindReceiver(slot uint16, id uint32) {
	reg.Write(hw.ReceiverAddr(slot)+IDOffset, id)
}

// BindSender writes an endpoint id into the bound-id register of a sender
// slot, 0 clears the binding.
func (hw *UINTC) BindSender(slot uint16, id uint32) {
	hw.Lock()
	defer hw.Unlock()

	hw.bindSender(slot, id)
}

// BindReceiver writes an endpoint id into the bound-id register of a
// receiver slot, 0 clears the binding.
func (hw *UINTC) BindReceiver(slot uint16, id uint32) {
	hw.Lock()
	defer hw.Unlock()

	hw.bindReceiver(slot, id)
}

// SenderID returns the endpoint id bound to a sender slot.
func (hw *UINTC) SenderID(slot uint16) uint32 {
	hw.Lock()
	defer hw.Unlock()

	return reg.Read(hw.SenderAddr(slot) + IDOffset)
}

// ReceiverID returns the endpoint id bound to a receiver slot.
func (hw *UINTC) ReceiverID(slot uint16) uint32 {
	hw.Lock()
	defer hw.Unlock()

	return reg.Read(hw.ReceiverAddr(slot) + IDOffset)
}

// SetListening assigns the currently listening receiver slot for a hart
// context, 0 clears the assignment.
func (hw *UINTC) SetListening(hart int, slot uint16) {
	hw.Lock()
	defer hw.Unlock()

	reg.Write(hw.contextAddr(hart), uint32(slot))
}

// Listening returns the currently listening receiver slot for a hart
// context.
func (hw *UINTC) Listening(hart int) uint16 {
	hw.Lock()
	defer hw.Unlock()

	return uint16(reg.Read(hw.contextAddr(hart)))
}

// SetConnected sets or clears the routing matrix bit authorizing a sender
// slot to signal a receiver slot.
func (hw *UINTC) SetConnected(senderSlot uint16, receiverSlot uint16, on bool) {
	word, pos := bits.Split(int(receiverSlot))
	addr := hw.SenderAddr(senderSlot) + EnableOffset + 4*uint64(word)

	hw.Lock()
	defer hw.Unlock()

	val := reg.Read(addr)
	bits.SetTo(&val, pos, on)
	reg.Write(addr, val)
}

// Connected returns whether the routing matrix authorizes a sender slot to
// signal a receiver slot.
func (hw *UINTC) Connected(senderSlot uint16, receiverSlot uint16) bool {
	word, pos := bits.Split(int(receiverSlot))
	addr := hw.SenderAddr(senderSlot) + EnableOffset + 4*uint64(word)

	hw.Lock()
	defer hw.Unlock()

	val := reg.Read(addr)
	return bits.IsSet(&val, pos)
}

func (hw *UINTC) dropSlot(base uint64) {
	// The bitmaps must be zeroed before the bound id, so that no sender
	// matching a stale id can fire a new notification into the slot
	// between the two writes.
	for i := 0; i < hw.bitmapWords(); i++ {
		reg.Write(base+EnableOffset+4*uint64(i), 0)
	}

	for i := 0; i < hw.bitmapWords(); i++ {
		reg.Write(base+PendingOffset+4*uint64(i), 0)
	}

	reg.Write(base+IDOffset, 0)
}

// DropSender zeroes the enable and pending bitmaps of a sender slot and
// then clears its bound id, releasing all hardware state held by the slot.
func (hw *UINTC) DropSender(slot uint16) {
	hw.Lock()
	defer hw.Unlock()

	hw.dropSlot(hw.SenderAddr(slot))
}

// DropReceiver zeroes the enable and pending bitmaps of a receiver slot and
// then clears its bound id, releasing all hardware state held by the slot.
func (hw *UINTC) DropReceiver(slot uint16) {
	hw.Lock()
	defer hw.Unlock()

	hw.dropSlot(hw.ReceiverAddr(slot))
}
