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
	"errors"
	"log/slog"
)

const ledWireLen = 14

// BuildCommand encodes a queued command record ([id][payload]) into the
// wire payload for pd, writing into out. It returns the number of bytes
// written; the outer frame is not included. Nothing is written on error.
func BuildCommand(pd *Peripheral, record, out []byte) (int, error) {
	log := pd.logger()
	if len(record) == 0 {
		return 0, newFormatError(0, ErrCommandFormat, "empty record")
	}

	id := CommandID(record[0])
	data := record[1:]

	n, err := buildCommand(id, data, out)
	if err != nil {
		switch {
		case errors.Is(err, ErrObsoleteCommand):
			log.Error("command is obsolete", slog.String("cmd", id.String()))
		case errors.Is(err, ErrUnsupportedCommand):
			log.Error("command isn't supported", slog.String("cmd", id.String()))
		default:
			log.Warn("command format error", slog.String("cmd", id.String()), slog.Any("err", err))
		}
		return 0, err
	}
	return n, nil
}

func buildCommand(id CommandID, data, out []byte) (int, error) {
	need := func(recordLen, wireLen int) error {
		if len(data) != recordLen {
			return newFormatError(id, ErrCommandFormat, "record payload is %d bytes, want %d", len(data), recordLen)
		}
		if len(out) < wireLen {
			return newFormatError(id, ErrBufferTooSmall, "need %d bytes, have %d", wireLen, len(out))
		}
		return nil
	}

	switch id {
	case CmdPoll, CmdLStat, CmdIStat, CmdOStat, CmdRStat:
		if err := need(0, 1); err != nil {
			return 0, err
		}
		out[0] = byte(id)
		return 1, nil

	case CmdID, CmdCap, CmdDiag:
		if err := need(0, 2); err != nil {
			return 0, err
		}
		out[0] = byte(id)
		out[1] = 0x00
		return 2, nil

	case CmdOut:
		if err := need(outputRecordLen, 1+outputRecordLen); err != nil {
			return 0, err
		}
		out[0] = byte(id)
		out[1] = data[0] // output number
		out[2] = data[1] // control code
		out[3] = data[2] // timer LSB
		out[4] = data[3] // timer MSB
		return 5, nil

	case CmdLED:
		if err := need(ledRecordLen, 1+ledWireLen); err != nil {
			return 0, err
		}
		out[0] = byte(id)
		copy(out[1:1+ledWireLen], data[:ledWireLen])
		return 1 + ledWireLen, nil

	case CmdBuz:
		if err := need(buzzerRecordLen, 1+buzzerRecordLen); err != nil {
			return 0, err
		}
		out[0] = byte(id)
		copy(out[1:], data[:buzzerRecordLen])
		return 1 + buzzerRecordLen, nil

	case CmdText:
		if len(data) != textRecordLen {
			return 0, newFormatError(id, ErrCommandFormat, "record payload is %d bytes, want %d", len(data), textRecordLen)
		}
		length := int(data[5])
		if length > MaxTextLength {
			return 0, newFormatError(id, ErrCommandFormat, "text length %d exceeds %d", length, MaxTextLength)
		}
		wireLen := 1 + textHeaderLen + length
		if len(out) < wireLen {
			return 0, newFormatError(id, ErrBufferTooSmall, "need %d bytes, have %d", wireLen, len(out))
		}
		out[0] = byte(id)
		copy(out[1:], data[:textHeaderLen+length])
		return wireLen, nil

	case CmdComSet:
		if err := need(comSetRecordLen, 1+comSetRecordLen); err != nil {
			return 0, err
		}
		out[0] = byte(id)
		out[1] = data[0] // address
		copy(out[2:6], data[1:5])
		return 6, nil

	case CmdSCDone, CmdXWR, CmdSPE, CmdCont, CmdRMode, CmdXmit:
		return 0, newFormatError(id, ErrObsoleteCommand, "")

	default:
		return 0, newFormatError(id, ErrUnsupportedCommand, "")
	}
}

// EncodeCommand serializes cmd and encodes it for pd in one step
func EncodeCommand(pd *Peripheral, cmd Command, out []byte) (int, error) {
	rec, err := MarshalRecord(cmd)
	if err != nil {
		return 0, err
	}
	return BuildCommand(pd, rec, out)
}
