// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uintc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karst-os/karst/internal/reg"
)

type testUINTC struct {
	mem []byte
	hw  *UINTC
}

func newTestUINTC(t *testing.T, maxSender, maxReceiver int) *testUINTC {
	t.Helper()

	mem := make([]byte, ReceiverBase+(maxReceiver+1)*ReceiverStride)

	return &testUINTC{
		mem: mem,
		hw: &UINTC{
			Base:        reg.SliceAddr(mem),
			MaxSender:   maxSender,
			MaxReceiver: maxReceiver,
		},
	}
}

func TestSlotAddressing(t *testing.T) {
	u := newTestUINTC(t, 4, 4)

	assert.Equal(t, u.hw.Base+SenderStride, u.hw.SenderAddr(1))
	assert.Equal(t, u.hw.Base+3*SenderStride, u.hw.SenderAddr(3))
	assert.Equal(t, u.hw.Base+ReceiverBase+2*ReceiverStride, u.hw.ReceiverAddr(2))
}

func TestBindReadback(t *testing.T) {
	u := newTestUINTC(t, 4, 4)

	u.hw.BindSender(2, 17)
	assert.Equal(t, uint32(17), u.hw.SenderID(2))
	assert.Equal(t, uint32(17), reg.Read(u.hw.SenderAddr(2)+IDOffset))

	u.hw.BindSender(2, 0)
	assert.Zero(t, u.hw.SenderID(2))

	u.hw.BindReceiver(3, 9)
	assert.Equal(t, uint32(9), u.hw.ReceiverID(3))
	assert.Zero(t, u.hw.SenderID(3))
}

func TestListeningPerHart(t *testing.T) {
	u := newTestUINTC(t, 2, 2)

	u.hw.SetListening(0, 1)
	u.hw.SetListening(1, 2)

	assert.Equal(t, uint16(1), u.hw.Listening(0))
	assert.Equal(t, uint16(2), u.hw.Listening(1))
	assert.Equal(t, uint32(1), reg.Read(u.hw.Base+ContextBase))
	assert.Equal(t, uint32(2), reg.Read(u.hw.Base+ContextBase+ContextStride))

	u.hw.SetListening(0, 0)
	assert.Zero(t, u.hw.Listening(0))
	assert.Equal(t, uint16(2), u.hw.Listening(1))
}

func TestSetConnectedWordScaling(t *testing.T) {
	u := newTestUINTC(t, 2, 64)

	// receiver slot 35 lands in word 1, bit 3, at a 4-byte scaled word
	// offset
	u.hw.SetConnected(1, 35, true)

	assert.True(t, u.hw.Connected(1, 35))
	assert.Zero(t, reg.Read(u.hw.SenderAddr(1)+EnableOffset))
	assert.Equal(t, uint32(1<<3), reg.Read(u.hw.SenderAddr(1)+EnableOffset+4))

	u.hw.SetConnected(1, 3, true)
	assert.Equal(t, uint32(1<<3), reg.Read(u.hw.SenderAddr(1)+EnableOffset))

	u.hw.SetConnected(1, 35, false)
	assert.False(t, u.hw.Connected(1, 35))
	assert.True(t, u.hw.Connected(1, 3))
	assert.Zero(t, reg.Read(u.hw.SenderAddr(1)+EnableOffset+4))
}

func TestDropSenderClearsSlot(t *testing.T) {
	u := newTestUINTC(t, 2, 64)

	u.hw.BindSender(1, 5)
	u.hw.SetConnected(1, 1, true)
	u.hw.SetConnected(1, 35, true)

	// seed a pending bit the way delivered events would
	reg.Write(u.hw.SenderAddr(1)+PendingOffset, 1<<1)

	u.hw.DropSender(1)

	assert.Zero(t, u.hw.SenderID(1))

	for i := 0; i < (u.hw.MaxReceiver+31)/32; i++ {
		assert.Zero(t, reg.Read(u.hw.SenderAddr(1)+EnableOffset+4*uint64(i)))
		assert.Zero(t, reg.Read(u.hw.SenderAddr(1)+PendingOffset+4*uint64(i)))
	}
}

func TestDropReceiverClearsSlot(t *testing.T) {
	u := newTestUINTC(t, 2, 64)

	u.hw.BindReceiver(2, 8)
	reg.Write(u.hw.ReceiverAddr(2)+PendingOffset, 0xffffffff)
	reg.Write(u.hw.ReceiverAddr(2)+EnableOffset+4, 0x80000000)

	u.hw.DropReceiver(2)

	assert.Zero(t, u.hw.ReceiverID(2))

	for i := 0; i < (u.hw.MaxReceiver+31)/32; i++ {
		assert.Zero(t, reg.Read(u.hw.ReceiverAddr(2)+EnableOffset+4*uint64(i)))
		assert.Zero(t, reg.Read(u.hw.ReceiverAddr(2)+PendingOffset+4*uint64(i)))
	}
}

func TestDropLeavesOtherSlotsAlone(t *testing.T) {
	u := newTestUINTC(t, 4, 4)

	u.hw.BindSender(1, 1)
	u.hw.BindSender(2, 2)
	u.hw.SetConnected(2, 1, true)

	u.hw.DropSender(1)

	require.Equal(t, uint32(2), u.hw.SenderID(2))
	assert.True(t, u.hw.Connected(2, 1))
}
