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

package testing

import (
	"sync"

	"github.com/ZaparooProject/go-osdp/internal/frame"
)

// Simulator plays a peripheral: it answers each command packet with the
// reply payload registered for the command code, wrapped in a reply packet
// carrying the command's sequence number.
type Simulator struct {
	replies  map[byte][][]byte
	fallback []byte
	received [][]byte
	mu       sync.Mutex
	address  byte
	silent   bool
}

// NewSimulator creates a peripheral at address that ACKs every command
func NewSimulator(address byte) *Simulator {
	return &Simulator{
		address:  address,
		replies:  make(map[byte][][]byte),
		fallback: BuildAckResponse(),
	}
}

// SetReply registers payloads for cmd. They are used in order; the last
// one repeats.
func (s *Simulator) SetReply(cmd byte, payloads ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[cmd] = payloads
}

// SetSilent stops the simulator from answering
func (s *Simulator) SetSilent(silent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.silent = silent
}

// Respond returns the reply packet for pkt, or nil if the packet is not a
// valid command for this address
func (s *Simulator) Respond(pkt []byte) []byte {
	addr, seq, payload, err := frame.ParseCommandPacket(pkt)
	if err != nil || len(payload) == 0 {
		return nil
	}
	if addr != s.address && addr != frame.BroadcastAddress {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, append([]byte(nil), payload...))
	if s.silent {
		return nil
	}

	reply := s.fallback
	if queued := s.replies[payload[0]]; len(queued) > 0 {
		reply = queued[0]
		if len(queued) > 1 {
			s.replies[payload[0]] = queued[1:]
		}
	}
	return frame.BuildReply(s.address, seq, reply)
}

// Received returns the command payloads seen so far
func (s *Simulator) Received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.received...)
}
