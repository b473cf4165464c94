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
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/ZaparooProject/go-osdp/internal/frame"
)

const (
	scratchSize = maxRecordLen
	frameSize   = 256
	rxSize      = 512
)

// PDFlags is the status bit-set of a peripheral
type PDFlags uint32

const (
	FlagTamper PDFlags = 1 << iota
	FlagPower
	FlagReaderTamper
	FlagCommSetInProgress
)

// Has reports whether every bit of x is set
func (f PDFlags) Has(x PDFlags) bool {
	return f&x == x
}

func (f *PDFlags) set(x PDFlags, on bool) {
	if on {
		*f |= x
	} else {
		*f &^= x
	}
}

// Peripheral is the control panel's view of one device on the bus: its
// identity, capabilities and status as last reported, plus the command
// queue and link state used to talk to it. A Peripheral is not safe for
// concurrent use.
type Peripheral struct {
	sendTime   time.Time
	transport  Transport
	framer     Framer
	config     *Config
	log        *slog.Logger
	clock      Clock
	onKeypress KeypressHandler
	onCardRead CardReadHandler
	queue      *CommandQueue
	caps       map[CapabilityCode]Capability
	scratch    []byte
	frame      []byte
	rx         []byte
	id         PDID
	scratchLen int
	rxLen      int
	address    int
	baudRate   uint32
	flags      PDFlags
	state      LinkState
	lastNAK    NAKReason
}

// NewPeripheral creates the link to the peripheral at address over
// transport. Without WithFramer the standard OSDP packet framer is used.
func NewPeripheral(address int, transport Transport, opts ...Option) (*Peripheral, error) {
	if address < 0 || address > frame.MaxAddress {
		return nil, fmt.Errorf("%w: address %d out of range", ErrInvalidParameter, address)
	}
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}

	pd := &Peripheral{
		address:   address,
		transport: transport,
		config:    DefaultConfig(),
		caps:      make(map[CapabilityCode]Capability),
		scratch:   make([]byte, scratchSize),
		frame:     make([]byte, frameSize),
		rx:        make([]byte, rxSize),
		state:     LinkIdle,
	}

	for _, opt := range opts {
		if err := opt(pd); err != nil {
			return nil, err
		}
	}

	if pd.framer == nil {
		pd.framer = frame.New(byte(address))
	}
	if pd.clock == nil {
		pd.clock = time.Now
	}
	if pd.log == nil {
		pd.log = Logger()
	}
	pd.log = pd.log.With(slog.Int("pd", address))

	q, err := NewCommandQueue(pd.config.QueueSize)
	if err != nil {
		return nil, err
	}
	pd.queue = q
	return pd, nil
}

func (pd *Peripheral) logger() *slog.Logger {
	if pd == nil || pd.log == nil {
		return Logger()
	}
	return pd.log
}

// Enqueue serializes cmd and appends it to the command queue
func (pd *Peripheral) Enqueue(cmd Command) error {
	rec, err := MarshalRecord(cmd)
	if err != nil {
		return err
	}
	return pd.EnqueueRecord(rec)
}

// EnqueueRecord appends a pre-built [id][payload] record to the queue.
// The record is validated when it is dequeued for sending.
func (pd *Peripheral) EnqueueRecord(rec []byte) error {
	if len(rec) == 0 {
		return fmt.Errorf("%w: empty record", ErrInvalidParameter)
	}
	if err := pd.queue.Enqueue(rec); err != nil {
		return fmt.Errorf("enqueue %s for pd %d: %w", CommandID(rec[0]), pd.address, err)
	}
	return nil
}

// Address returns the bus address
func (pd *Peripheral) Address() int {
	return pd.address
}

// Transport returns the transport the link writes to
func (pd *Peripheral) Transport() Transport {
	return pd.transport
}

// ID returns the identification block from the last PDID reply
func (pd *Peripheral) ID() PDID {
	return pd.id
}

// Capability returns the entry for code if the peripheral reported one
func (pd *Peripheral) Capability(code CapabilityCode) (Capability, bool) {
	c, ok := pd.caps[code]
	return c, ok
}

// Capabilities returns a copy of the capability table
func (pd *Peripheral) Capabilities() map[CapabilityCode]Capability {
	return maps.Clone(pd.caps)
}

// Flags returns the status bit-set
func (pd *Peripheral) Flags() PDFlags {
	return pd.flags
}

// Tamper reports the local tamper input
func (pd *Peripheral) Tamper() bool {
	return pd.flags.Has(FlagTamper)
}

// Power reports the local power-failure input
func (pd *Peripheral) Power() bool {
	return pd.flags.Has(FlagPower)
}

// ReaderTamper reports the reader tamper status
func (pd *Peripheral) ReaderTamper() bool {
	return pd.flags.Has(FlagReaderTamper)
}

// CommSetInProgress reports whether a COMSET reply is waiting to be applied
func (pd *Peripheral) CommSetInProgress() bool {
	return pd.flags.Has(FlagCommSetInProgress)
}

// CompleteCommSet clears the pending COMSET flag once the new line
// settings are in effect
func (pd *Peripheral) CompleteCommSet() {
	pd.flags.set(FlagCommSetInProgress, false)
}

// BaudRate returns the baud rate from the last COM reply, or 0
func (pd *Peripheral) BaudRate() uint32 {
	return pd.baudRate
}

// LastNAK returns the reason of the most recent NAK
func (pd *Peripheral) LastNAK() NAKReason {
	return pd.lastNAK
}

// LinkState returns the current link state
func (pd *Peripheral) LinkState() LinkState {
	return pd.state
}

// Pending returns the number of queued bytes, length prefixes included
func (pd *Peripheral) Pending() int {
	return pd.queue.Len()
}

// inFlight reports whether a command has been dequeued and not yet
// answered
func (pd *Peripheral) inFlight() bool {
	return pd.state == LinkSendCommand || pd.state == LinkAwaitResponse
}

// Queue exposes the command queue
func (pd *Peripheral) Queue() *CommandQueue {
	return pd.queue
}

func (pd *Peripheral) portName() string {
	if s, ok := pd.transport.(fmt.Stringer); ok {
		return s.String()
	}
	return string(pd.transport.Type())
}
