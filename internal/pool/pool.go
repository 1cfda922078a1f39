// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool provides typed object pooling and a shared [*bytes.Buffer] pool.
package pool

import (
	"bytes"
	"sync"
)

// maxPooledBuffer is the capacity above which a buffer is dropped instead of pooled.
const maxPooledBuffer = 1 << 20

// Pool is a generics wrapper around [sync.Pool] to provide strongly-typed object pooling.
type Pool[T any] struct {
	p    sync.Pool
	keep func(T) bool
}

// Resetter is implemented by pooled values that can clear themselves before reuse.
type Resetter interface {
	Reset()
}

// New returns a new [Pool] for T, and will use fn to construct new T's when the pool is empty.
func New[T any](fn func() T) *Pool[T] {
	return &Pool[T]{
		p: sync.Pool{
			New: func() any {
				return fn()
			},
		},
	}
}

// Get gets a T from the pool, or creates a new one if the pool is empty.
func (p *Pool[T]) Get() T {
	return p.p.Get().(T)
}

// Put resets x and returns it into the pool.
func (p *Pool[T]) Put(x T) {
	if p.keep != nil && !p.keep(x) {
		return
	}
	if r, ok := any(x).(Resetter); ok {
		r.Reset()
	}
	p.p.Put(x)
}

// Bytes pools the buffers used to read response bodies.
// Buffers that grew past 1 MiB are not returned to the pool.
var Bytes = &Pool[*bytes.Buffer]{
	p: sync.Pool{
		New: func() any {
			return new(bytes.Buffer)
		},
	},
	keep: func(b *bytes.Buffer) bool {
		return b.Cap() <= maxPooledBuffer
	},
}
