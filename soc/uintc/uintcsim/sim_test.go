// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uintcsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karst-os/karst/internal/reg"
	"github.com/karst-os/karst/soc/uintc"
)

func testSetup(t *testing.T) (*Model, *uintc.UINTC) {
	t.Helper()

	m := New(4, 4, 2)

	hw := &uintc.UINTC{
		Base:        m.Base,
		MaxSender:   m.MaxSender,
		MaxReceiver: m.MaxReceiver,
	}

	return m, hw
}

func TestDeliverAndClaim(t *testing.T) {
	m, hw := testSetup(t)

	hw.BindSender(1, 7)
	hw.BindReceiver(1, 9)
	hw.SetConnected(1, 1, true)

	// user-side store of the logical receiver id
	reg.Write(m.senderAddr(1)+uintc.SendStatusOffset, 9)
	m.Step()

	claim := m.receiverAddr(1) + uintc.ClaimOffset
	assert.Equal(t, uint32(7), reg.Read(claim))

	// the send-status word was consumed
	assert.Zero(t, reg.Read(m.senderAddr(1)+uintc.SendStatusOffset))

	// once claimed, the next round latches 0
	m.Step()
	assert.Zero(t, reg.Read(claim))
}

func TestUnauthorizedSendDropped(t *testing.T) {
	m, hw := testSetup(t)

	hw.BindSender(1, 7)
	hw.BindReceiver(1, 9)

	reg.Write(m.senderAddr(1)+uintc.SendStatusOffset, 9)
	m.Step()

	assert.Zero(t, reg.Read(m.receiverAddr(1)+uintc.ClaimOffset))
}

func TestUnknownReceiverDropped(t *testing.T) {
	m, hw := testSetup(t)

	hw.BindSender(1, 7)

	reg.Write(m.senderAddr(1)+uintc.SendStatusOffset, 42)
	m.Step()

	for slot := 1; slot <= m.MaxReceiver; slot++ {
		assert.Zero(t, reg.Read(m.receiverAddr(slot)+uintc.ClaimOffset))
	}
}

func TestUserIRQOnListeningHart(t *testing.T) {
	m, hw := testSetup(t)

	var raised []int
	m.UserIRQ = func(hart int) { raised = append(raised, hart) }

	hw.BindSender(1, 7)
	hw.BindReceiver(2, 9)
	hw.SetConnected(1, 2, true)

	// hart 1 listens on receiver slot 2
	hw.SetListening(1, 2)

	reg.Write(m.senderAddr(1)+uintc.SendStatusOffset, 9)
	m.Step()

	require.Equal(t, []int{1}, raised)

	// no hart listening, no interrupt
	hw.SetListening(1, 0)
	m.Step()

	reg.Write(m.senderAddr(1)+uintc.SendStatusOffset, 9)
	m.Step()
	assert.Equal(t, []int{1}, raised)
}

func TestClaimPopsLowestSenderFirst(t *testing.T) {
	m, hw := testSetup(t)

	hw.BindSender(1, 11)
	hw.BindSender(3, 13)
	hw.BindReceiver(1, 9)
	hw.SetConnected(1, 1, true)
	hw.SetConnected(3, 1, true)

	reg.Write(m.senderAddr(1)+uintc.SendStatusOffset, 9)
	reg.Write(m.senderAddr(3)+uintc.SendStatusOffset, 9)
	m.Step()

	claim := m.receiverAddr(1) + uintc.ClaimOffset
	assert.Equal(t, uint32(11), reg.Read(claim))

	m.Step()
	assert.Equal(t, uint32(13), reg.Read(claim))

	m.Step()
	assert.Zero(t, reg.Read(claim))
}
