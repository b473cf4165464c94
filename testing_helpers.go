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

import (
	"sync"
)

// MockTransport is an in-memory Transport for tests. Sent packets are
// recorded; Receive drains queued reply bytes. With ResponseFunc set, every
// Send queues the bytes it returns.
type MockTransport struct {
	ResponseFunc func(pkt []byte) []byte
	sendErr      error
	receiveErr   error
	sent         [][]byte
	pending      [][]byte
	bauds        []int
	mu           sync.Mutex
	closed       bool
}

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// NewMockTransportWithFunc creates a mock transport that answers every
// packet with fn
func NewMockTransportWithFunc(fn func(pkt []byte) []byte) *MockTransport {
	m := NewMockTransport()
	m.ResponseFunc = fn
	return m
}

// Send records p and queues the ResponseFunc reply, if any
func (m *MockTransport) Send(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrTransportWrite
	}
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.sent = append(m.sent, append([]byte(nil), p...))
	if m.ResponseFunc != nil {
		if reply := m.ResponseFunc(p); len(reply) > 0 {
			m.pending = append(m.pending, reply)
		}
	}
	return len(p), nil
}

// Receive copies out the next queued chunk. A chunk larger than p is
// split across calls.
func (m *MockTransport) Receive(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.receiveErr != nil {
		return 0, m.receiveErr
	}
	if len(m.pending) == 0 {
		return 0, nil
	}
	n := copy(p, m.pending[0])
	if n < len(m.pending[0]) {
		m.pending[0] = m.pending[0][n:]
	} else {
		m.pending = m.pending[1:]
	}
	return n, nil
}

// QueueReceive makes data available to the following Receive calls.
// Each call adds one chunk.
func (m *MockTransport) QueueReceive(data ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range data {
		m.pending = append(m.pending, append([]byte(nil), d...))
	}
}

// SetSendError makes every Send fail with err; nil clears it
func (m *MockTransport) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetReceiveError makes every Receive fail with err; nil clears it
func (m *MockTransport) SetReceiveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receiveErr = err
}

// Sent returns copies of every packet sent so far
func (m *MockTransport) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	for i, p := range m.sent {
		out[i] = append([]byte(nil), p...)
	}
	return out
}

// SetBaudRate records the requested line speed
func (m *MockTransport) SetBaudRate(baud int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bauds = append(m.bauds, baud)
	return nil
}

// BaudRates returns every baud rate requested through SetBaudRate
func (m *MockTransport) BaudRates() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.bauds...)
}

// Close marks the transport closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}
