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

import "github.com/ZaparooProject/go-osdp/internal/frame"

// Transport moves bytes between the control panel and the bus. Both calls
// must return promptly: Receive reports 0 bytes when nothing has arrived.
// It is implemented by the serial and websocket backends.
type Transport interface {
	// Send writes p and returns the number of bytes accepted
	Send(p []byte) (int, error)

	// Receive reads whatever bytes are available into p
	Receive(p []byte) (int, error)

	// Close closes the transport connection
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents an RS-485 serial adapter
	TransportUART TransportType = "uart"
	// TransportWebSocket represents a network bridge to a serial bus
	TransportWebSocket TransportType = "websocket"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// BaudRateSetter is implemented by transports whose line speed can change
// after a COMSET exchange
type BaudRateSetter interface {
	SetBaudRate(baud int) error
}

// Framer builds and strips the packet envelope around payloads for one
// peripheral. DecodePacket returns ErrPacketIncomplete until a whole packet
// is buffered.
type Framer interface {
	BuildHead(buf []byte) (int, error)
	BuildTail(buf []byte, n int) (int, error)
	DecodePacket(buf []byte) ([]byte, error)
}

// ErrPacketIncomplete is returned by Framer.DecodePacket while a packet is
// still arriving
var ErrPacketIncomplete = frame.ErrIncomplete

// KeypressHandler receives each key reported by a peripheral keypad
type KeypressHandler func(address int, key byte)

// CardReadHandler receives card data. length is the bit count for raw
// reads and the character count for ASCII reads.
type CardReadHandler func(address int, format CardFormat, data []byte, length int)

type resetter interface {
	Reset()
}
