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

// Package testing provides canned OSDP reply payloads and a scripted
// peripheral for tests
package testing

// Reply codes for reference
const (
	ReplyAck    = 0x40
	ReplyNak    = 0x41
	ReplyPDID   = 0x45
	ReplyPDCap  = 0x46
	ReplyLStatR = 0x48
	ReplyRStatR = 0x4B
	ReplyRaw    = 0x50
	ReplyFmt    = 0x51
	ReplyKeypad = 0x53
	ReplyCom    = 0x54
	ReplyBusy   = 0x79
)

// BuildAckResponse creates an ACK payload
func BuildAckResponse() []byte {
	return []byte{ReplyAck}
}

// BuildNakResponse creates a NAK payload with the given reason
func BuildNakResponse(reason byte) []byte {
	return []byte{ReplyNak, reason}
}

// BuildBusyResponse creates a BUSY payload
func BuildBusyResponse() []byte {
	return []byte{ReplyBusy}
}

// BuildPDIDResponse creates a PDID payload. The vendor code and serial
// number are little-endian; the firmware version is major, minor, build.
func BuildPDIDResponse(vendor uint32, model, version byte, serial, firmware uint32) []byte {
	return []byte{
		ReplyPDID,
		byte(vendor), byte(vendor >> 8), byte(vendor >> 16),
		model, version,
		byte(serial), byte(serial >> 8), byte(serial >> 16), byte(serial >> 24),
		byte(firmware >> 16), byte(firmware >> 8), byte(firmware),
	}
}

// BuildPDCapResponse creates a PDCAP payload from (code, compliance, items)
// triples
func BuildPDCapResponse(triples ...[3]byte) []byte {
	response := []byte{ReplyPDCap}
	for _, t := range triples {
		response = append(response, t[:]...)
	}
	return response
}

// BuildLocalStatusResponse creates an LSTATR payload
func BuildLocalStatusResponse(tamper, power bool) []byte {
	return []byte{ReplyLStatR, flag(tamper), flag(power)}
}

// BuildReaderStatusResponse creates an RSTATR payload
func BuildReaderStatusResponse(tamper bool) []byte {
	return []byte{ReplyRStatR, flag(tamper)}
}

// BuildComResponse creates a COM payload
func BuildComResponse(address byte, baud uint32) []byte {
	return []byte{ReplyCom, address, byte(baud), byte(baud >> 8), byte(baud >> 16), byte(baud >> 24)}
}

// BuildKeypadResponse creates a KEYPAD payload for reader 0
func BuildKeypadResponse(keys ...byte) []byte {
	response := []byte{ReplyKeypad, 0x00, byte(len(keys))}
	return append(response, keys...)
}

// BuildRawCardResponse creates a RAW payload for reader 0
func BuildRawCardResponse(format byte, bits uint16, data []byte) []byte {
	response := []byte{ReplyRaw, 0x00, format, byte(bits), byte(bits >> 8)}
	return append(response, data...)
}

// BuildFormattedCardResponse creates an FMT payload for reader 0
func BuildFormattedCardResponse(data []byte) []byte {
	response := []byte{ReplyFmt, 0x00, 0x00, byte(len(data))}
	return append(response, data...)
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Common values for testing
var (
	// TestWiegandCard is a 26-bit Wiegand credential
	TestWiegandCard = []byte{0x8A, 0x2B, 0x4C, 0x40}

	// TestASCIICard is a formatted card number
	TestASCIICard = []byte("1234567890")
)
