// go-osdp
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-osdp.
//
// go-osdp is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-osdp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-osdp; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package osdp

import "fmt"

const (
	// DefaultQueueSize is the ring capacity used when none is configured
	DefaultQueueSize = 128
	// MinQueueSize is the smallest ring that can hold one LED or TEXT record
	MinQueueSize = 32
	maxRecordLen = 0xFF
)

// CommandQueue is a fixed-capacity single-producer/single-consumer byte ring.
// Each entry is a length byte followed by that many record bytes. head is
// the index of the last byte written and tail the index of the last byte
// consumed; the queue is empty iff head == tail. One slot is always kept
// free so a full ring can be told apart from an empty one.
type CommandQueue struct {
	buf  []byte
	head int
	tail int
}

// NewCommandQueue creates a queue with the given capacity in bytes
func NewCommandQueue(capacity int) (*CommandQueue, error) {
	if capacity < MinQueueSize {
		return nil, fmt.Errorf("%w: queue capacity %d below minimum %d", ErrInvalidParameter, capacity, MinQueueSize)
	}
	return &CommandQueue{buf: make([]byte, capacity)}, nil
}

// Capacity returns the ring size in bytes
func (q *CommandQueue) Capacity() int {
	return len(q.buf)
}

// Len returns the number of bytes held, length prefixes included
func (q *CommandQueue) Len() int {
	return (q.head - q.tail + len(q.buf)) % len(q.buf)
}

// Free returns the number of bytes available for new entries
func (q *CommandQueue) Free() int {
	return len(q.buf) - 1 - q.Len()
}

// Empty reports whether the queue holds no entries
func (q *CommandQueue) Empty() bool {
	return q.head == q.tail
}

// Reset drops all entries
func (q *CommandQueue) Reset() {
	q.head = 0
	q.tail = 0
}

// Enqueue appends record as one entry. Nothing is written on failure.
func (q *CommandQueue) Enqueue(record []byte) error {
	n := len(record)
	if n > maxRecordLen || n+1 > q.Free() {
		return fmt.Errorf("%w: need %d bytes, %d free", ErrQueueFull, n+1, q.Free())
	}

	start := q.next(q.head)
	if start == q.tail && !q.Empty() {
		return ErrQueueCollision
	}

	q.buf[start] = byte(n)
	q.copyIn(q.next(start), record)

	used := q.Len()
	q.head = (start + n) % len(q.buf)
	if err := q.checkInvariant(used + n + 1); err != nil {
		return err
	}
	return nil
}

// Dequeue copies the oldest entry into out and returns its length, or 0 if
// the queue is empty. With readonly set the entry stays queued.
func (q *CommandQueue) Dequeue(readonly bool, out []byte) (int, error) {
	if q.Empty() {
		return 0, nil
	}

	used := q.Len()
	start := q.next(q.tail)
	n := int(q.buf[start])
	if n+1 > used {
		return 0, fmt.Errorf("%w: entry length %d exceeds %d queued bytes", ErrQueueCollision, n, used)
	}
	if n > len(out) {
		return 0, fmt.Errorf("%w: entry is %d bytes, buffer holds %d", ErrBufferTooSmall, n, len(out))
	}

	q.copyOut(out[:n], q.next(start))

	if !readonly {
		q.tail = (start + n) % len(q.buf)
		if err := q.checkInvariant(used - n - 1); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// Peek copies the oldest entry into out without consuming it
func (q *CommandQueue) Peek(out []byte) (int, error) {
	return q.Dequeue(true, out)
}

func (q *CommandQueue) next(i int) int {
	i++
	if i >= len(q.buf) {
		return 0
	}
	return i
}

// copyIn writes src starting at index from, splitting at the physical end.
func (q *CommandQueue) copyIn(from int, src []byte) {
	first := copy(q.buf[from:], src)
	if first < len(src) {
		copy(q.buf, src[first:])
	}
}

// copyOut reads len(dst) bytes starting at index from.
func (q *CommandQueue) copyOut(dst []byte, from int) {
	first := copy(dst, q.buf[from:])
	if first < len(dst) {
		copy(dst[first:], q.buf)
	}
}

func (q *CommandQueue) checkInvariant(wantUsed int) error {
	if used := q.Len(); used != wantUsed || q.Free() < 0 {
		return fmt.Errorf("%w: ring accounting mismatch (used %d, want %d)", ErrQueueCollision, used, wantUsed)
	}
	return nil
}
