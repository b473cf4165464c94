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
	"encoding"
	"encoding/binary"
)

const pdidLen = 12

// Reply is a parsed peripheral reply. The concrete types below are the only
// implementations; each marshals back to its wire payload.
type Reply interface {
	encoding.BinaryMarshaler
	Code() ReplyID
}

// Ack is a positive acknowledgement
type Ack struct{}

// Nak is a negative acknowledgement with a reason code
type Nak struct {
	Reason NAKReason
}

// PDID is the peripheral identification block
type PDID struct {
	VendorCode      uint32
	SerialNumber    uint32
	FirmwareVersion uint32
	Model           byte
	Version         byte
}

// Capability is one entry of a peripheral's capability table
type Capability struct {
	ComplianceLevel byte
	NumItems        byte
}

// CapabilityEntry is a capability code with its levels, in reply order
type CapabilityEntry struct {
	Capability
	Code CapabilityCode
}

// PDCap lists the peripheral's capabilities
type PDCap struct {
	Entries []CapabilityEntry
}

// LocalStatus reports tamper and power state
type LocalStatus struct {
	Tamper bool
	Power  bool
}

// ReaderStatus reports reader tamper state
type ReaderStatus struct {
	Tamper bool
}

// ComSetReply echoes the address and baud rate a peripheral applied
type ComSetReply struct {
	BaudRate uint32
	Address  byte
}

// KeypadData carries key presses from a reader keypad
type KeypadData struct {
	Keys   []byte
	Reader byte
}

// RawCardData carries an unformatted card read. BitLength is the
// credential length as reported by the reader.
type RawCardData struct {
	Data      []byte
	BitLength uint16
	Reader    byte
	Format    CardFormat
}

// FormattedCardData carries an ASCII card read
type FormattedCardData struct {
	Data      []byte
	Reader    byte
	Direction byte
}

// Busy asks the control panel to resend the last command unchanged
type Busy struct{}

// IgnoredReply is a recognized reply this layer accepts without acting on
type IgnoredReply struct {
	Data       []byte
	ID         ReplyID
	Deprecated bool
}

func (Ack) Code() ReplyID               { return ReplyAck }
func (Nak) Code() ReplyID               { return ReplyNak }
func (PDID) Code() ReplyID              { return ReplyPDID }
func (PDCap) Code() ReplyID             { return ReplyPDCap }
func (LocalStatus) Code() ReplyID       { return ReplyLStatR }
func (ReaderStatus) Code() ReplyID      { return ReplyRStatR }
func (ComSetReply) Code() ReplyID       { return ReplyCom }
func (KeypadData) Code() ReplyID        { return ReplyKeypad }
func (RawCardData) Code() ReplyID       { return ReplyRaw }
func (FormattedCardData) Code() ReplyID { return ReplyFmt }
func (Busy) Code() ReplyID              { return ReplyBusy }
func (r IgnoredReply) Code() ReplyID    { return r.ID }

func (Ack) MarshalBinary() ([]byte, error) {
	return []byte{byte(ReplyAck)}, nil
}

func (r Nak) MarshalBinary() ([]byte, error) {
	return []byte{byte(ReplyNak), byte(r.Reason)}, nil
}

func (r PDID) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 1+pdidLen)
	buf[0] = byte(ReplyPDID)
	putUint24(buf[1:4], r.VendorCode)
	buf[4] = r.Model
	buf[5] = r.Version
	binary.LittleEndian.PutUint32(buf[6:10], r.SerialNumber)
	// firmware is major, minor, build: most significant first
	buf[10] = byte(r.FirmwareVersion >> 16)
	buf[11] = byte(r.FirmwareVersion >> 8)
	buf[12] = byte(r.FirmwareVersion)
	return buf, nil
}

func (r PDCap) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 1+3*len(r.Entries))
	buf = append(buf, byte(ReplyPDCap))
	for _, e := range r.Entries {
		buf = append(buf, byte(e.Code), e.ComplianceLevel, e.NumItems)
	}
	return buf, nil
}

func (r LocalStatus) MarshalBinary() ([]byte, error) {
	return []byte{byte(ReplyLStatR), boolByte(r.Tamper), boolByte(r.Power)}, nil
}

func (r ReaderStatus) MarshalBinary() ([]byte, error) {
	return []byte{byte(ReplyRStatR), boolByte(r.Tamper)}, nil
}

func (r ComSetReply) MarshalBinary() ([]byte, error) {
	buf := []byte{byte(ReplyCom), r.Address}
	return binary.LittleEndian.AppendUint32(buf, r.BaudRate), nil
}

func (r KeypadData) MarshalBinary() ([]byte, error) {
	buf := []byte{byte(ReplyKeypad), r.Reader, byte(len(r.Keys))}
	return append(buf, r.Keys...), nil
}

func (r RawCardData) MarshalBinary() ([]byte, error) {
	buf := []byte{byte(ReplyRaw), r.Reader, byte(r.Format)}
	buf = binary.LittleEndian.AppendUint16(buf, r.BitLength)
	return append(buf, r.Data...), nil
}

func (r FormattedCardData) MarshalBinary() ([]byte, error) {
	buf := []byte{byte(ReplyFmt), r.Reader, r.Direction, byte(len(r.Data))}
	return append(buf, r.Data...), nil
}

func (Busy) MarshalBinary() ([]byte, error) {
	return []byte{byte(ReplyBusy)}, nil
}

func (r IgnoredReply) MarshalBinary() ([]byte, error) {
	return append([]byte{byte(r.ID)}, r.Data...), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// ParseReply decodes a reply payload (frame already stripped) into its
// variant. Truncated or unknown replies yield a *ReplyError.
func ParseReply(buf []byte) (_ Reply, err error) {
	defer deferWrap(&err)

	if len(buf) == 0 {
		return nil, newReplyError(0, "empty reply")
	}
	id := ReplyID(buf[0])
	data := buf[1:]

	switch id {
	case ReplyAck:
		return Ack{}, nil

	case ReplyNak:
		var r Nak
		if len(data) > 0 {
			r.Reason = NAKReason(data[0])
		}
		return r, nil

	case ReplyPDID:
		if len(data) != pdidLen {
			return nil, newReplyError(id, "payload is %d bytes, want %d", len(data), pdidLen)
		}
		return PDID{
			VendorCode:      getUint24(data[0:3]),
			Model:           data[3],
			Version:         data[4],
			SerialNumber:    binary.LittleEndian.Uint32(data[5:9]),
			FirmwareVersion: uint32(data[9])<<16 | uint32(data[10])<<8 | uint32(data[11]),
		}, nil

	case ReplyPDCap:
		if len(data)%3 != 0 {
			return nil, newReplyError(id, "payload of %d bytes is not a multiple of 3", len(data))
		}
		r := PDCap{Entries: make([]CapabilityEntry, 0, len(data)/3)}
		for pos := 0; pos < len(data); pos += 3 {
			r.Entries = append(r.Entries, CapabilityEntry{
				Code:       CapabilityCode(data[pos]),
				Capability: Capability{ComplianceLevel: data[pos+1], NumItems: data[pos+2]},
			})
		}
		return r, nil

	case ReplyLStatR:
		if len(data) < 2 {
			return nil, newReplyError(id, "payload is %d bytes, want 2", len(data))
		}
		return LocalStatus{Tamper: data[0] != 0, Power: data[1] != 0}, nil

	case ReplyRStatR:
		if len(data) < 1 {
			return nil, newReplyError(id, "empty payload")
		}
		return ReaderStatus{Tamper: data[0] != 0}, nil

	case ReplyCom:
		if len(data) < 5 {
			return nil, newReplyError(id, "payload is %d bytes, want 5", len(data))
		}
		return ComSetReply{Address: data[0], BaudRate: binary.LittleEndian.Uint32(data[1:5])}, nil

	case ReplyKeypad:
		if len(data) < 2 || len(data)-2 < int(data[1]) {
			return nil, newReplyError(id, "truncated key data (%d bytes)", len(data))
		}
		count := int(data[1])
		return KeypadData{Reader: data[0], Keys: append([]byte(nil), data[2:2+count]...)}, nil

	case ReplyRaw:
		if len(data) < 4 {
			return nil, newReplyError(id, "truncated header (%d bytes)", len(data))
		}
		return RawCardData{
			Reader:    data[0],
			Format:    CardFormat(data[1]),
			BitLength: binary.LittleEndian.Uint16(data[2:4]),
			Data:      append([]byte(nil), data[4:]...),
		}, nil

	case ReplyFmt:
		if len(data) < 3 || len(data)-3 < int(data[2]) {
			return nil, newReplyError(id, "truncated card data (%d bytes)", len(data))
		}
		keyLen := int(data[2])
		return FormattedCardData{
			Reader:    data[0],
			Direction: data[1],
			Data:      append([]byte(nil), data[3:3+keyLen]...),
		}, nil

	case ReplyBusy:
		return Busy{}, nil

	case ReplyIStatR, ReplyOStatR, ReplyBioReadR, ReplyBioMatchR, ReplyMfgRep, ReplyXRD,
		ReplyCCrypt, ReplyRMACI:
		return IgnoredReply{ID: id, Data: append([]byte(nil), data...)}, nil

	case ReplySCRep, ReplyPres, ReplySPER:
		return IgnoredReply{ID: id, Data: append([]byte(nil), data...), Deprecated: true}, nil

	default:
		return nil, newReplyError(id, "unexpected reply")
	}
}
