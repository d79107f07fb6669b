// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uipi

// SenderHandle owns a live sender endpoint: its logical id, its hardware
// slot and the state at that slot. Exactly one handle exists per live
// endpoint. Handles are shared by pointer between the owning task's
// registry and kernel paths that only read Info, which is immutable for
// the endpoint's lifetime.
type SenderHandle struct {
	mgr  *Manager
	info SenderInfo
}

// newSenderHandle allocates a logical id and a hardware slot, rolling
// back on partial failure, and binds the id to the slot. The handle
// commits only once both allocations and the bind have succeeded.
func (m *Manager) newSenderHandle() (*SenderHandle, error) {
	id, ok := m.senderIDs.alloc()
	if !ok {
		return nil, ErrExhausted
	}

	slot, ok := m.senderSlots.alloc()
	if !ok {
		m.senderIDs.dealloc(id)
		return nil, ErrExhausted
	}

	m.hw.BindSender(slot, id)

	return &SenderHandle{
		mgr: m,
		info: SenderInfo{
			ID:      SenderID(id),
			UintcID: SenderUintcID(slot),
		},
	}, nil
}

// Info returns the endpoint's id pairing.
func (h *SenderHandle) Info() SenderInfo {
	return h.info
}

// Close releases the endpoint: the hardware slot is dropped first, so no
// stale enable or pending bit survives, then both ids return to their
// pools. Close never fails and must be called exactly once.
func (h *SenderHandle) Close() {
	h.mgr.hw.DropSender(uint16(h.info.UintcID))

	h.mgr.senderIDs.dealloc(uint32(h.info.ID))
	h.mgr.senderSlots.dealloc(uint16(h.info.UintcID))
}

// ReceiverHandle owns a live receiver endpoint, symmetric to
// SenderHandle.
type ReceiverHandle struct {
	mgr  *Manager
	info ReceiverInfo
}

func (m *Manager) newReceiverHandle() (*ReceiverHandle, error) {
	id, ok := m.receiverIDs.alloc()
	if !ok {
		return nil, ErrExhausted
	}

	slot, ok := m.receiverSlots.alloc()
	if !ok {
		m.receiverIDs.dealloc(id)
		return nil, ErrExhausted
	}

	m.hw.BindReceiver(slot, id)

	return &ReceiverHandle{
		mgr: m,
		info: ReceiverInfo{
			ID:      ReceiverID(id),
			UintcID: ReceiverUintcID(slot),
		},
	}, nil
}

// Info returns the endpoint's id pairing.
func (h *ReceiverHandle) Info() ReceiverInfo {
	return h.info
}

// Close releases the endpoint, see SenderHandle.Close.
func (h *ReceiverHandle) Close() {
	h.mgr.hw.DropReceiver(uint16(h.info.UintcID))

	h.mgr.receiverIDs.dealloc(uint32(h.info.ID))
	h.mgr.receiverSlots.dealloc(uint16(h.info.UintcID))
}
