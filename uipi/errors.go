// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uipi

import (
	"errors"
)

// Control-plane failure kinds. The syscall boundary folds every error to
// the generic -1 return, the distinct values exist for kernel-internal
// callers and logging.
var (
	// ErrInvalidFlags reports unknown flag bits in a control request.
	ErrInvalidFlags = errors.New("uipi: invalid flags")

	// ErrInvalidID reports an id that cannot name an endpoint, that is 0.
	// Values outside the 32-bit id space are rejected by the syscall
	// layer with the generic -1 return before reaching the manager.
	ErrInvalidID = errors.New("uipi: invalid id")

	// ErrNotRegistered reports an id absent from the calling task's
	// endpoint registry.
	ErrNotRegistered = errors.New("uipi: id not registered")

	// ErrExhausted reports an empty id pool.
	ErrExhausted = errors.New("uipi: id pool exhausted")

	// ErrNoTrapInfo reports a calling task without initialized user trap
	// state.
	ErrNoTrapInfo = errors.New("uipi: user trap info not initialized")

	// ErrUserBuffer reports an unusable user buffer argument.
	ErrUserBuffer = errors.New("uipi: invalid user buffer")
)
