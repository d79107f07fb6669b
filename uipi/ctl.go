// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uipi

import (
	"fmt"
)

// CtlFlags select the actions of a control-plane request. Multiple flags
// combine in one call and apply in the order Create, GetInfo, Listen,
// Unlisten, Release. Unknown bits fail the whole request.
type CtlFlags uint

const (
	CtlCreate  CtlFlags = 1 << 0
	CtlRelease CtlFlags = 1 << 1
	CtlGetInfo CtlFlags = 1 << 2

	// receiver requests only
	CtlListen   CtlFlags = 1 << 3
	CtlUnlisten CtlFlags = 1 << 4
)

const (
	senderCtlMask   = CtlCreate | CtlRelease | CtlGetInfo
	receiverCtlMask = senderCtlMask | CtlListen | CtlUnlisten
)

func findSender(ti *TrapInfo, id SenderID) (*SenderHandle, error) {
	if !id.Valid() {
		return nil, ErrInvalidID
	}

	h, ok := ti.Senders[id]
	if !ok {
		return nil, ErrNotRegistered
	}

	return h, nil
}

func findReceiver(ti *TrapInfo, id ReceiverID) (*ReceiverHandle, error) {
	if !id.Valid() {
		return nil, ErrInvalidID
	}

	h, ok := ti.Receivers[id]
	if !ok {
		return nil, ErrNotRegistered
	}

	return h, nil
}

// SenderCtl creates, queries or releases a sender endpoint of the
// calling task. It returns the id of the acted-upon sender.
func (m *Manager) SenderCtl(t Task, flags CtlFlags, senderID SenderID, buf uint64) (SenderID, error) {
	if flags&^senderCtlMask != 0 {
		return 0, ErrInvalidFlags
	}

	inner, release := t.AcquireInner()
	defer release()

	ti := inner.TrapInfo()
	if ti == nil {
		return 0, ErrNoTrapInfo
	}

	var info SenderInfo

	if flags&CtlCreate != 0 {
		h, err := m.newSenderHandle()
		if err != nil {
			return 0, err
		}

		info = h.Info()

		if err := inner.AddressSpace().MapMMIO(m.hw.SenderAddr(uint16(info.UintcID)), PageSize); err != nil {
			h.Close()
			return 0, fmt.Errorf("uipi: map sender page: %w", err)
		}

		if _, ok := ti.Senders[info.ID]; ok {
			panic(fmt.Sprintf("uipi: allocated an existing sender id %d", info.ID))
		}
		ti.Senders[info.ID] = h

		m.metrics.SendersCreated.Add(1)
	} else {
		h, err := findSender(ti, senderID)
		if err != nil {
			return 0, err
		}

		info = h.Info()
	}

	if flags&CtlGetInfo != 0 {
		b, _ := info.MarshalBinary()

		if err := inner.UserMemory().WriteUser(buf, b); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUserBuffer, err)
		}
	}

	if flags&CtlRelease != 0 {
		if err := inner.AddressSpace().UnmapMMIO(m.hw.SenderAddr(uint16(info.UintcID)), PageSize); err != nil {
			m.log.Warn("sender page already unmapped", "id", info.ID, "uintc_id", info.UintcID)
		}

		h, ok := ti.Senders[info.ID]
		if !ok {
			panic(fmt.Sprintf("uipi: released a nonexistent sender id %d", info.ID))
		}
		delete(ti.Senders, info.ID)

		h.Close()
		m.metrics.SendersReleased.Add(1)
	}

	return info.ID, nil
}

// unlisten clears the calling hart's listening binding along with the
// task's saved receiver slot.
func (m *Manager) unlisten(ti *TrapInfo) {
	ti.ListeningReceiver = 0
	m.hw.SetListening(m.Hart(), 0)
}

// ReceiverCtl creates, queries, binds or releases a receiver endpoint of
// the calling task. It returns the id of the acted-upon receiver, or 0
// for a pure unlisten request, which ignores receiverID entirely.
func (m *Manager) ReceiverCtl(t Task, flags CtlFlags, receiverID ReceiverID, buf uint64) (ReceiverID, error) {
	if flags&^receiverCtlMask != 0 {
		return 0, ErrInvalidFlags
	}

	inner, release := t.AcquireInner()
	defer release()

	ti := inner.TrapInfo()
	if ti == nil {
		return 0, ErrNoTrapInfo
	}

	if flags == CtlUnlisten {
		m.unlisten(ti)
		m.metrics.Unlistens.Add(1)

		return 0, nil
	}

	var info ReceiverInfo

	if flags&CtlCreate != 0 {
		h, err := m.newReceiverHandle()
		if err != nil {
			return 0, err
		}

		info = h.Info()

		if err := inner.AddressSpace().MapMMIO(m.hw.ReceiverAddr(uint16(info.UintcID)), PageSize); err != nil {
			h.Close()
			return 0, fmt.Errorf("uipi: map receiver page: %w", err)
		}

		if _, ok := ti.Receivers[info.ID]; ok {
			panic(fmt.Sprintf("uipi: allocated an existing receiver id %d", info.ID))
		}
		ti.Receivers[info.ID] = h

		m.metrics.ReceiversCreated.Add(1)
	} else {
		h, err := findReceiver(ti, receiverID)
		if err != nil {
			return 0, err
		}

		info = h.Info()
	}

	if flags&CtlGetInfo != 0 {
		b, _ := info.MarshalBinary()

		if err := inner.UserMemory().WriteUser(buf, b); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUserBuffer, err)
		}
	}

	if flags&CtlListen != 0 {
		m.hw.SetListening(m.Hart(), uint16(info.UintcID))
		ti.ListeningReceiver = info.UintcID

		m.metrics.Listens.Add(1)
	}

	if flags&CtlUnlisten != 0 {
		m.unlisten(ti)
		m.metrics.Unlistens.Add(1)
	}

	if flags&CtlRelease != 0 {
		if ti.ListeningReceiver == info.UintcID {
			m.unlisten(ti)
		}

		if err := inner.AddressSpace().UnmapMMIO(m.hw.ReceiverAddr(uint16(info.UintcID)), PageSize); err != nil {
			m.log.Warn("receiver page already unmapped", "id", info.ID, "uintc_id", info.UintcID)
		}

		h, ok := ti.Receivers[info.ID]
		if !ok {
			panic(fmt.Sprintf("uipi: released a nonexistent receiver id %d", info.ID))
		}
		delete(ti.Receivers, info.ID)

		h.Close()
		m.metrics.ReceiversReleased.Add(1)
	}

	return info.ID, nil
}

// ConnectionCtl sets or clears the routing matrix bit authorizing one of
// the calling task's senders to signal one of its receivers. Both
// endpoints must belong to the caller, a receiver held by another
// process cannot be named through this interface.
func (m *Manager) ConnectionCtl(t Task, senderID SenderID, receiverID ReceiverID, connected bool) error {
	inner, release := t.AcquireInner()
	defer release()

	ti := inner.TrapInfo()
	if ti == nil {
		return ErrNoTrapInfo
	}

	sh, err := findSender(ti, senderID)
	if err != nil {
		return err
	}

	rh, err := findReceiver(ti, receiverID)
	if err != nil {
		return err
	}

	m.hw.SetConnected(uint16(sh.Info().UintcID), uint16(rh.Info().UintcID), connected)

	if connected {
		m.metrics.Connects.Add(1)
	} else {
		m.metrics.Disconnects.Add(1)
	}

	return nil
}
