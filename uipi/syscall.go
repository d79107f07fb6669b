// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uipi

import (
	"math"
)

// UIPI syscall numbers (ABI-stable).
const (
	SysSenderCtl     = 700
	SysReceiverCtl   = 701
	SysConnectionCtl = 702
)

// EFAIL is the generic failure return of the UIPI syscalls, any
// non-negative return is success.
const EFAIL int64 = -1

// Syscalls binds the manager to the syscall boundary: word-sized
// arguments in, non-negative id or -1 out.
type Syscalls struct {
	Manager *Manager

	// Current returns the invoking task, it must be set by the embedding
	// kernel.
	Current func() Task
}

// SenderCtl implements syscall 700.
func (s *Syscalls) SenderCtl(flags, senderID, buf uint64) int64 {
	if senderID > math.MaxUint32 {
		s.Manager.metrics.Failures.Add(1)
		return EFAIL
	}

	id, err := s.Manager.SenderCtl(s.Current(), CtlFlags(flags), SenderID(senderID), buf)
	if err != nil {
		s.Manager.log.Debug("sender ctl failed", "flags", flags, "err", err)
		s.Manager.metrics.Failures.Add(1)

		return EFAIL
	}

	return int64(id)
}

// ReceiverCtl implements syscall 701.
func (s *Syscalls) ReceiverCtl(flags, receiverID, buf uint64) int64 {
	if receiverID > math.MaxUint32 {
		s.Manager.metrics.Failures.Add(1)
		return EFAIL
	}

	id, err := s.Manager.ReceiverCtl(s.Current(), CtlFlags(flags), ReceiverID(receiverID), buf)
	if err != nil {
		s.Manager.log.Debug("receiver ctl failed", "flags", flags, "err", err)
		s.Manager.metrics.Failures.Add(1)

		return EFAIL
	}

	return int64(id)
}

// ConnectionCtl implements syscall 702.
func (s *Syscalls) ConnectionCtl(senderID, receiverID, connected uint64) int64 {
	if senderID > math.MaxUint32 || receiverID > math.MaxUint32 {
		s.Manager.metrics.Failures.Add(1)
		return EFAIL
	}

	err := s.Manager.ConnectionCtl(s.Current(), SenderID(senderID), ReceiverID(receiverID), connected != 0)
	if err != nil {
		s.Manager.log.Debug("connection ctl failed", "err", err)
		s.Manager.metrics.Failures.Add(1)

		return EFAIL
	}

	return 0
}

// Dispatch routes a raw UIPI syscall by number, -1 for numbers outside
// the UIPI range.
func (s *Syscalls) Dispatch(num int, a0, a1, a2 uint64) int64 {
	switch num {
	case SysSenderCtl:
		return s.SenderCtl(a0, a1, a2)
	case SysReceiverCtl:
		return s.ReceiverCtl(a0, a1, a2)
	case SysConnectionCtl:
		return s.ConnectionCtl(a0, a1, a2)
	}

	return EFAIL
}
