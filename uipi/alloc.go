// https://github.com/karst-os/karst
//
// Copyright (c) The Karst Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uipi

import (
	"fmt"
	"sync"

	"golang.org/x/exp/constraints"
)

// pool is a bounded stack-recycling allocator over the numeric range
// [lo, hi). Returned values are recycled in LIFO order before the
// watermark advances. The only ordering contract is that two live
// allocations differ in value.
type pool[T constraints.Integer] struct {
	mu sync.Mutex

	current  T
	end      T
	recycled []T
}

func newPool[T constraints.Integer](lo, hi T) *pool[T] {
	return &pool[T]{
		current: lo,
		end:     hi,
	}
}

// alloc returns an unused value, or false when the pool is exhausted.
func (p *pool[T]) alloc() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.recycled); n > 0 {
		v := p.recycled[n-1]
		p.recycled = p.recycled[:n-1]
		return v, true
	}

	if p.current == p.end {
		var zero T
		return zero, false
	}

	v := p.current
	p.current++

	return v, true
}

// dealloc returns a value to the pool. Returning a value that was never
// allocated, or returning one twice, is an unrecoverable caller bug.
func (p *pool[T]) dealloc(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v >= p.current {
		panic(fmt.Sprintf("pool: value %v has not been allocated", v))
	}

	for _, r := range p.recycled {
		if r == v {
			panic(fmt.Sprintf("pool: value %v deallocated twice", v))
		}
	}

	p.recycled = append(p.recycled, v)
}

// available returns the number of values that can still be allocated.
func (p *pool[T]) available() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return int(p.end-p.current) + len(p.recycled)
}
