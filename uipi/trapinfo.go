// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uipi

// TrapInfo is the UIPI slice of a task's user trap record: the endpoint
// registries and the receiver slot the task has bound to its hart
// context. It is protected by the task's inner lock.
type TrapInfo struct {
	Senders   map[SenderID]*SenderHandle
	Receivers map[ReceiverID]*ReceiverHandle

	// ListeningReceiver is the receiver slot currently bound to the
	// task's hart context, 0 when none. At most one receiver listens per
	// task at a time.
	ListeningReceiver ReceiverUintcID
}

// NewTrapInfo returns an empty UIPI trap record.
func NewTrapInfo() *TrapInfo {
	return &TrapInfo{
		Senders:   make(map[SenderID]*SenderHandle),
		Receivers: make(map[ReceiverID]*ReceiverHandle),
	}
}

// RestoreListening re-emits the hart-context binding from the saved
// listening receiver. The context-switch code must call it when resuming
// a task on a hart, as the hardware register is per-hart while the
// binding belongs to the task.
func (m *Manager) RestoreListening(ti *TrapInfo, hart int) {
	m.hw.SetListening(hart, uint16(ti.ListeningReceiver))
}

// ClearListening clears the hart-context binding, for harts switching to
// a task with no listening receiver.
func (m *Manager) ClearListening(hart int) {
	m.hw.SetListening(hart, 0)
}

// ReleaseTrapInfo tears down every endpoint a task still holds,
// satisfying the same invariants as an explicit release per endpoint.
// The caller must hold the task's inner lock and pass the hart the task
// last ran on.
func (m *Manager) ReleaseTrapInfo(ti *TrapInfo, space AddressSpace, hart int) {
	if ti.ListeningReceiver.Valid() {
		m.hw.SetListening(hart, 0)
		ti.ListeningReceiver = 0
	}

	for id, h := range ti.Receivers {
		if err := space.UnmapMMIO(m.hw.ReceiverAddr(uint16(h.info.UintcID)), PageSize); err != nil {
			m.log.Warn("receiver page already unmapped", "id", id, "uintc_id", h.info.UintcID)
		}

		delete(ti.Receivers, id)
		h.Close()
		m.metrics.ReceiversReleased.Add(1)
	}

	for id, h := range ti.Senders {
		if err := space.UnmapMMIO(m.hw.SenderAddr(uint16(h.info.UintcID)), PageSize); err != nil {
			m.log.Warn("sender page already unmapped", "id", id, "uintc_id", h.info.UintcID)
		}

		delete(ti.Senders, id)
		h.Close()
		m.metrics.SendersReleased.Add(1)
	}
}
