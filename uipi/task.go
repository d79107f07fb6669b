// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uipi

// The interfaces below are the seams to the external task manager and
// address-space manager. The control plane holds the task's inner lock
// for the whole operation, giving each call a coarse transaction over
// registry state and MMIO writes.

// AddressSpace is the slice of the memory manager the control plane
// needs: mapping and unmapping endpoint hardware pages, user readable
// and writable, at their controller addresses.
type AddressSpace interface {
	MapMMIO(addr uint64, size int) error
	UnmapMMIO(addr uint64, size int) error
}

// UserMemory copies kernel data into the task's address space,
// translating through its page table.
type UserMemory interface {
	WriteUser(addr uint64, p []byte) error
}

// TaskInner is a task's locked inner state.
type TaskInner interface {
	AddressSpace() AddressSpace
	UserMemory() UserMemory

	// TrapInfo returns the task's user trap record, nil when user traps
	// have not been initialized for the task.
	TrapInfo() *TrapInfo
}

// Task is the control-plane view of an invoking task.
type Task interface {
	// AcquireInner locks the task's inner state for the duration of a
	// control-plane transaction, the returned release function unlocks
	// it.
	AcquireInner() (inner TaskInner, release func())
}
