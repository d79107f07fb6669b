// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uipi

// The four endpoint identifier kinds. Logical ids are the opaque handles
// a process names endpoints by, uintc ids are hardware slot indices.
// All four reserve 0 as none and are allocated independently, the
// pairing of a logical id with a slot is recorded per endpoint.
type (
	SenderID        uint32
	SenderUintcID   uint16
	ReceiverID      uint32
	ReceiverUintcID uint16
)

// Valid returns whether the id names an endpoint, 0 is reserved as none.
func (id SenderID) Valid() bool { return id != 0 }

// Valid returns whether the id names a hardware slot, 0 is reserved as none.
func (id SenderUintcID) Valid() bool { return id != 0 }

// Valid returns whether the id names an endpoint, 0 is reserved as none.
func (id ReceiverID) Valid() bool { return id != 0 }

// Valid returns whether the id names a hardware slot, 0 is reserved as none.
func (id ReceiverUintcID) Valid() bool { return id != 0 }
