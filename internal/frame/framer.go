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

import (
	"errors"
	"fmt"
)

// ErrIncomplete means the buffer holds the start of a packet; keep receiving
var ErrIncomplete = errors.New("packet incomplete")

// Packet errors
var (
	ErrBufferTooSmall = errors.New("frame buffer too small")
	ErrBadSOM         = errors.New("missing start of message")
	ErrBadAddress     = errors.New("reply from unexpected address")
	ErrBadLength      = errors.New("invalid packet length")
	ErrBadCRC         = errors.New("packet CRC mismatch")
	ErrBadSequence    = errors.New("unexpected sequence number")
	ErrSecureChannel  = errors.New("secure channel packets not supported")
)

// Framer wraps payloads for one peripheral address and tracks the packet
// sequence number. A Framer is owned by a single link and is not safe for
// concurrent use.
type Framer struct {
	address byte
	seq     byte
}

// New returns a Framer for the peripheral at address
func New(address byte) *Framer {
	return &Framer{address: address & 0x7F}
}

// Address returns the peripheral address the framer writes
func (f *Framer) Address() byte {
	return f.address
}

// Sequence returns the sequence number of the next command packet
func (f *Framer) Sequence() byte {
	return f.seq
}

// Reset restarts the sequence at zero, which tells the peripheral the
// control panel has re-initialised the link
func (f *Framer) Reset() {
	f.seq = 0
}

// BuildHead writes the packet header into buf. The length field is filled
// by BuildTail once the payload size is known.
func (f *Framer) BuildHead(buf []byte) (int, error) {
	if len(buf) < HeaderLength {
		return 0, fmt.Errorf("%w: header needs %d bytes, have %d", ErrBufferTooSmall, HeaderLength, len(buf))
	}
	buf[0] = SOM
	buf[1] = f.address
	buf[2] = 0
	buf[3] = 0
	buf[4] = (f.seq & CtrlSeqMask) | CtrlCRC
	return HeaderLength, nil
}

// BuildTail completes a packet whose header and payload occupy buf[:n],
// writing the length and CRC. It returns the total packet length.
func (f *Framer) BuildTail(buf []byte, n int) (int, error) {
	if n < HeaderLength {
		return 0, fmt.Errorf("%w: %d bytes precede the trailer", ErrBadLength, n)
	}
	total := n + TrailerLength
	if total > len(buf) || total > MaxPacketLength {
		return 0, fmt.Errorf("%w: packet needs %d bytes, have %d", ErrBufferTooSmall, total, len(buf))
	}
	buf[2] = byte(total)
	buf[3] = byte(total >> 8)
	crc := CalculateCRC(buf[:n])
	buf[n] = byte(crc)
	buf[n+1] = byte(crc >> 8)
	return total, nil
}

// DecodePacket validates a reply packet at the start of buf and returns
// its payload, which aliases buf. ErrIncomplete is returned until the
// whole packet has arrived.
func (f *Framer) DecodePacket(buf []byte) ([]byte, error) {
	if len(buf) == 0 {
		return nil, ErrIncomplete
	}
	if buf[0] != SOM {
		return nil, fmt.Errorf("%w: got 0x%02X", ErrBadSOM, buf[0])
	}
	if len(buf) < HeaderLength {
		return nil, ErrIncomplete
	}

	if buf[1] != f.address|ReplyFlag {
		return nil, fmt.Errorf("%w: 0x%02X, want 0x%02X", ErrBadAddress, buf[1], f.address|ReplyFlag)
	}

	total := int(buf[2]) | int(buf[3])<<8
	if total < MinPacketLength || total > MaxPacketLength {
		return nil, fmt.Errorf("%w: %d", ErrBadLength, total)
	}
	if len(buf) < total {
		return nil, ErrIncomplete
	}

	ctrl := buf[4]
	if ctrl&CtrlSCB != 0 {
		return nil, ErrSecureChannel
	}
	if ctrl&CtrlCRC == 0 {
		return nil, fmt.Errorf("%w: checksum trailer not supported", ErrBadCRC)
	}
	if !ValidateCRC(buf[:total]) {
		return nil, ErrBadCRC
	}
	if seq := ctrl & CtrlSeqMask; seq != f.seq&CtrlSeqMask {
		return nil, fmt.Errorf("%w: %d, want %d", ErrBadSequence, seq, f.seq&CtrlSeqMask)
	}

	payload := buf[HeaderLength : total-TrailerLength]
	if payload[0] != replyBusy {
		f.advance()
	}
	return payload, nil
}

// advance moves to the next sequence number; zero is only used after
// a reset.
func (f *Framer) advance() {
	f.seq++
	if f.seq > 3 {
		f.seq = 1
	}
}

// BuildReply wraps payload as a peripheral reply packet. Peripheral
// simulators and tests use it to produce what DecodePacket consumes.
func BuildReply(address, seq byte, payload []byte) []byte {
	total := HeaderLength + len(payload) + TrailerLength
	pkt := make([]byte, 0, total)
	pkt = append(pkt, SOM, address|ReplyFlag, byte(total), byte(total>>8), (seq&CtrlSeqMask)|CtrlCRC)
	pkt = append(pkt, payload...)
	crc := CalculateCRC(pkt)
	return append(pkt, byte(crc), byte(crc>>8))
}

// ParseCommandPacket validates a command packet as a peripheral would and
// returns its address, sequence number and payload.
func ParseCommandPacket(buf []byte) (address, seq byte, payload []byte, err error) {
	if len(buf) < MinPacketLength {
		return 0, 0, nil, ErrIncomplete
	}
	if buf[0] != SOM {
		return 0, 0, nil, fmt.Errorf("%w: got 0x%02X", ErrBadSOM, buf[0])
	}
	total := int(buf[2]) | int(buf[3])<<8
	if total < MinPacketLength || total > MaxPacketLength {
		return 0, 0, nil, fmt.Errorf("%w: %d", ErrBadLength, total)
	}
	if len(buf) < total {
		return 0, 0, nil, ErrIncomplete
	}
	if !ValidateCRC(buf[:total]) {
		return 0, 0, nil, ErrBadCRC
	}
	return buf[1], buf[4] & CtrlSeqMask, buf[HeaderLength : total-TrailerLength], nil
}
