// User-space UIPI library
// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ipi is the user-space side of the kernel UIPI interface: thin
// wrappers over the three control syscalls and the kernel-free fast
// path over the mapped endpoint pages.
//
// The fast path is wire-compatible with the kernel's controller layout:
// a sender signals by storing a receiver id into the send-status word of
// its mapped sender page, a receiver claims the latest delivered sender
// id by loading the claim word of its mapped receiver page.
package ipi

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/karst-os/karst/internal/reg"
	"github.com/karst-os/karst/soc/uintc"
	"github.com/karst-os/karst/uipi"
)

// DefaultBase is the conventional address at which the kernel maps
// endpoint pages into user address spaces.
const DefaultBase = 0x4000000

// Errno is a negative UIPI syscall return.
type Errno int64

func (e Errno) Error() string {
	return fmt.Sprintf("uipi syscall error %d", int64(e))
}

// System is the syscall boundary the library runs on. In a real task it
// is backed by ecall stubs, tests may wire it directly to an in-process
// kernel.
type System interface {
	SenderCtl(flags, senderID, buf uint64) int64
	ReceiverCtl(flags, receiverID, buf uint64) int64
	ConnectionCtl(senderID, receiverID, connected uint64) int64
}

// Env is a task's view of the UIPI interface.
type Env struct {
	// Base is the address at which the kernel maps endpoint pages into
	// this task's address space.
	Base uint64
	Sys  System

	mu sync.Mutex
	// listening holds the slot of the receiver this task is currently
	// listening on, 0 when none.
	listening uipi.ReceiverUintcID
}

// New returns an Env over the argument syscall boundary at DefaultBase.
func New(sys System) *Env {
	return &Env{
		Base: DefaultBase,
		Sys:  sys,
	}
}

// Sender is a live sender endpoint owned by this task.
type Sender struct {
	env  *Env
	info uipi.SenderInfo
}

// Receiver is a live receiver endpoint owned by this task.
type Receiver struct {
	env  *Env
	info uipi.ReceiverInfo
}

// NewSender creates a sender endpoint, combining creation and info
// readback in a single syscall.
func (e *Env) NewSender() (*Sender, error) {
	buf := make([]byte, uipi.InfoSize)

	rc := e.Sys.SenderCtl(uint64(uipi.CtlCreate|uipi.CtlGetInfo), 0, reg.SliceAddr(buf))
	runtime.KeepAlive(buf)

	if rc < 0 {
		return nil, Errno(rc)
	}

	s := &Sender{env: e}
	if err := s.info.UnmarshalBinary(buf); err != nil {
		return nil, err
	}

	return s, nil
}

// Info returns the sender's id pairing.
func (s *Sender) Info() uipi.SenderInfo {
	return s.info
}

// SetConnected authorizes or revokes this sender signalling the argument
// receiver.
func (s *Sender) SetConnected(r *Receiver, connected bool) error {
	var on uint64
	if connected {
		on = 1
	}

	if rc := s.env.Sys.ConnectionCtl(uint64(s.info.ID), uint64(r.info.ID), on); rc < 0 {
		return Errno(rc)
	}

	return nil
}

// Connect authorizes this sender signalling the argument receiver.
func (s *Sender) Connect(r *Receiver) error {
	return s.SetConnected(r, true)
}

// Disconnect revokes the authorization set by Connect.
func (s *Sender) Disconnect(r *Receiver) error {
	return s.SetConnected(r, false)
}

// Send signals the receiver named by the argument id, with no kernel
// involvement. Delivery requires an authorized connection, unauthorized
// sends are silently dropped by the controller.
func (s *Sender) Send(target uipi.ReceiverID) {
	addr := s.env.Base + uintc.SenderBase +
		uintc.SenderStride*uint64(s.info.UintcID) + uintc.SendStatusOffset

	reg.Write(addr, uint32(target))
}

// Close releases the sender endpoint.
func (s *Sender) Close() error {
	if rc := s.env.Sys.SenderCtl(uint64(uipi.CtlRelease), uint64(s.info.ID), 0); rc < 0 {
		return Errno(rc)
	}

	return nil
}

// NewReceiver creates a receiver endpoint, combining creation and info
// readback in a single syscall.
func (e *Env) NewReceiver() (*Receiver, error) {
	buf := make([]byte, uipi.InfoSize)

	rc := e.Sys.ReceiverCtl(uint64(uipi.CtlCreate|uipi.CtlGetInfo), 0, reg.SliceAddr(buf))
	runtime.KeepAlive(buf)

	if rc < 0 {
		return nil, Errno(rc)
	}

	r := &Receiver{env: e}
	if err := r.info.UnmarshalBinary(buf); err != nil {
		return nil, err
	}

	return r, nil
}

// Info returns the receiver's id pairing.
func (r *Receiver) Info() uipi.ReceiverInfo {
	return r.info
}

// Listen binds this receiver to the calling hart, so that its pending
// events raise user-software interrupts. At most one receiver may listen
// per task.
func (r *Receiver) Listen() error {
	r.env.mu.Lock()
	defer r.env.mu.Unlock()

	if r.env.listening.Valid() {
		return fmt.Errorf("ipi: already listening on slot %d", r.env.listening)
	}

	if rc := r.env.Sys.ReceiverCtl(uint64(uipi.CtlListen), uint64(r.info.ID), 0); rc < 0 {
		return Errno(rc)
	}

	r.env.listening = r.info.UintcID

	return nil
}

// Unlisten clears the task's listening binding, a no-op when nothing
// listens.
func (e *Env) Unlisten() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rc := e.Sys.ReceiverCtl(uint64(uipi.CtlUnlisten), 0, 0); rc < 0 {
		return Errno(rc)
	}

	e.listening = 0

	return nil
}

// Receive claims the latest event delivered to the listening receiver,
// returning the sender id that signalled it, 0 when nothing is pending
// or nothing listens. The kernel is not involved.
func (e *Env) Receive() uipi.SenderID {
	e.mu.Lock()
	listening := e.listening
	e.mu.Unlock()

	if !listening.Valid() {
		return 0
	}

	addr := e.Base + uintc.ReceiverBase +
		uintc.ReceiverStride*uint64(listening) + uintc.ClaimOffset

	return uipi.SenderID(reg.Read(addr))
}

// Close releases the receiver endpoint. The kernel clears the hart
// binding if this receiver was listening.
func (r *Receiver) Close() error {
	r.env.mu.Lock()
	if r.env.listening == r.info.UintcID {
		r.env.listening = 0
	}
	r.env.mu.Unlock()

	if rc := r.env.Sys.ReceiverCtl(uint64(uipi.CtlRelease), uint64(r.info.ID), 0); rc < 0 {
		return Errno(rc)
	}

	return nil
}
