// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uipi

import (
	"encoding/binary"
	"errors"
)

// InfoSize is the wire size of SenderInfo and ReceiverInfo as copied to
// user space: a little-endian u32 logical id, a u16 slot index and two
// bytes of padding. The layout is part of the user ABI and must match
// the user-space library.
const InfoSize = 8

// SenderInfo describes a live sender endpoint.
type SenderInfo struct {
	ID      SenderID
	UintcID SenderUintcID
}

// ReceiverInfo describes a live receiver endpoint.
type ReceiverInfo struct {
	ID      ReceiverID
	UintcID ReceiverUintcID
}

func marshalInfo(id uint32, uintcID uint16) []byte {
	buf := make([]byte, InfoSize)

	binary.LittleEndian.PutUint32(buf[0:], id)
	binary.LittleEndian.PutUint16(buf[4:], uintcID)

	return buf
}

// MarshalBinary encodes the info in its user ABI layout.
func (i SenderInfo) MarshalBinary() ([]byte, error) {
	return marshalInfo(uint32(i.ID), uint16(i.UintcID)), nil
}

// UnmarshalBinary decodes an info record in its user ABI layout.
func (i *SenderInfo) UnmarshalBinary(data []byte) error {
	if len(data) < InfoSize {
		return errors.New("uipi: short sender info buffer")
	}

	i.ID = SenderID(binary.LittleEndian.Uint32(data[0:]))
	i.UintcID = SenderUintcID(binary.LittleEndian.Uint16(data[4:]))

	return nil
}

// MarshalBinary encodes the info in its user ABI layout.
func (i ReceiverInfo) MarshalBinary() ([]byte, error) {
	return marshalInfo(uint32(i.ID), uint16(i.UintcID)), nil
}

// UnmarshalBinary decodes an info record in its user ABI layout.
func (i *ReceiverInfo) UnmarshalBinary(data []byte) error {
	if len(data) < InfoSize {
		return errors.New("uipi: short receiver info buffer")
	}

	i.ID = ReceiverID(binary.LittleEndian.Uint32(data[0:]))
	i.UintcID = ReceiverUintcID(binary.LittleEndian.Uint16(data[4:]))

	return nil
}
