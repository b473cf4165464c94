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

// Package frame implements the OSDP packet envelope around command and
// reply payloads
package frame

// Packet markers and control bits
const (
	SOM = 0x53 // start of message

	ReplyFlag = 0x80 // set in the address byte of every reply

	CtrlSeqMask = 0x03 // sequence number bits
	CtrlCRC     = 0x04 // trailer is a CRC-16 rather than an 8-bit checksum
	CtrlSCB     = 0x08 // security control block present
)

// Packet size limits
const (
	HeaderLength  = 5 // SOM, address, length (2), control
	TrailerLength = 2 // CRC-16, least significant byte first

	MinPacketLength = HeaderLength + 1 + TrailerLength
	MaxPacketLength = 1440

	// BroadcastAddress reaches every peripheral on the bus
	BroadcastAddress = 0x7F
	// MaxAddress is the highest unicast peripheral address
	MaxAddress = 0x7E
)

// replyBusy is the reply code that must not advance the sequence number
const replyBusy = 0x79
