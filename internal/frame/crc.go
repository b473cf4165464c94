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

package frame

import "github.com/sigurn/crc16"

var crcTable = crc16.MakeTable(crc16.CRC16_AUG_CCITT)

// CalculateCRC returns the packet check value over data
func CalculateCRC(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

// ValidateCRC reports whether a packet ending in its two CRC bytes is
// intact. Packets shorter than the trailer never validate.
func ValidateCRC(packet []byte) bool {
	if len(packet) < TrailerLength {
		return false
	}
	body := packet[:len(packet)-TrailerLength]
	want := uint16(packet[len(packet)-2]) | uint16(packet[len(packet)-1])<<8
	return CalculateCRC(body) == want
}
