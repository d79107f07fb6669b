// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package reg

import (
	"unsafe"
)

// SliceAddr returns the address of the backing array of a byte slice, for
// use as a register base when a hardware region is modeled over plain
// memory. The caller must keep the slice referenced for as long as the
// address is in use.
func SliceAddr(b []byte) uint64 {
	return uint64(uintptr(unsafe.Pointer(unsafe.SliceData(b))))
}
