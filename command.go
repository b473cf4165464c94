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
	"encoding/binary"
	"fmt"
)

// Record payload sizes (bytes after the command id) of each command kind.
// A queued record whose payload differs from its kind's size is rejected
// by BuildCommand.
const (
	outputRecordLen = 4
	ledRecordLen    = 16
	buzzerRecordLen = 5
	textHeaderLen   = 6
	textRecordLen   = 38
	comSetRecordLen = 5

	// MaxTextLength is the longest character run a TEXT command carries
	MaxTextLength = textRecordLen - textHeaderLen
)

// Command is a logical command addressed to a peripheral. The concrete
// types below are the only implementations.
type Command interface {
	Code() CommandID
	marshalRecord(rec []byte) []byte
}

// Poll asks the peripheral for pending events
type Poll struct{}

// LocalStatusQuery requests tamper and power status
type LocalStatusQuery struct{}

// InputStatusQuery requests input status
type InputStatusQuery struct{}

// OutputStatusQuery requests output status
type OutputStatusQuery struct{}

// ReaderStatusQuery requests reader tamper status
type ReaderStatusQuery struct{}

// IDReport requests the peripheral identification block
type IDReport struct{}

// CapabilitiesReport requests the capability table
type CapabilitiesReport struct{}

// Diagnose requests a diagnostic run
type Diagnose struct{}

// OutputControl drives one output
type OutputControl struct {
	Output      byte
	ControlCode byte
	Timer       uint16
}

// LEDTemporary is the temporary blink pattern of an LED command
type LEDTemporary struct {
	ControlCode byte
	OnCount     byte
	OffCount    byte
	OnColor     byte
	OffColor    byte
	Timer       uint16
}

// LEDPermanent is the permanent pattern of an LED command
type LEDPermanent struct {
	ControlCode byte
	OnCount     byte
	OffCount    byte
	OnColor     byte
	OffColor    byte
}

// LEDControl sets one reader LED
type LEDControl struct {
	Temporary LEDTemporary
	Permanent LEDPermanent
	Reader    byte
	LED       byte
}

// BuzzerControl drives the reader buzzer
type BuzzerControl struct {
	Reader      byte
	ToneCode    byte
	OnCount     byte
	OffCount    byte
	RepeatCount byte
}

// TextOutput writes characters to a reader display
type TextOutput struct {
	Text     []byte
	Reader   byte
	Command  byte
	TempTime byte
	Row      byte
	Column   byte
}

// CommSet changes the peripheral address and baud rate
type CommSet struct {
	BaudRate uint32
	Address  byte
}

// RawCommand carries an arbitrary id and record payload. It lets callers
// queue command kinds this package has no typed form for; BuildCommand
// still applies the kind's contract.
type RawCommand struct {
	Data []byte
	ID   CommandID
}

func (Poll) Code() CommandID               { return CmdPoll }
func (LocalStatusQuery) Code() CommandID   { return CmdLStat }
func (InputStatusQuery) Code() CommandID   { return CmdIStat }
func (OutputStatusQuery) Code() CommandID  { return CmdOStat }
func (ReaderStatusQuery) Code() CommandID  { return CmdRStat }
func (IDReport) Code() CommandID           { return CmdID }
func (CapabilitiesReport) Code() CommandID { return CmdCap }
func (Diagnose) Code() CommandID           { return CmdDiag }
func (OutputControl) Code() CommandID      { return CmdOut }
func (LEDControl) Code() CommandID         { return CmdLED }
func (BuzzerControl) Code() CommandID      { return CmdBuz }
func (TextOutput) Code() CommandID         { return CmdText }
func (CommSet) Code() CommandID            { return CmdComSet }
func (c RawCommand) Code() CommandID       { return c.ID }

func (Poll) marshalRecord(rec []byte) []byte               { return rec }
func (LocalStatusQuery) marshalRecord(rec []byte) []byte   { return rec }
func (InputStatusQuery) marshalRecord(rec []byte) []byte   { return rec }
func (OutputStatusQuery) marshalRecord(rec []byte) []byte  { return rec }
func (ReaderStatusQuery) marshalRecord(rec []byte) []byte  { return rec }
func (IDReport) marshalRecord(rec []byte) []byte           { return rec }
func (CapabilitiesReport) marshalRecord(rec []byte) []byte { return rec }
func (Diagnose) marshalRecord(rec []byte) []byte           { return rec }

func (c OutputControl) marshalRecord(rec []byte) []byte {
	rec = append(rec, c.Output, c.ControlCode)
	return binary.LittleEndian.AppendUint16(rec, c.Timer)
}

func (c LEDControl) marshalRecord(rec []byte) []byte {
	t, p := c.Temporary, c.Permanent
	rec = append(rec, c.Reader, c.LED,
		t.ControlCode, t.OnCount, t.OffCount, t.OnColor, t.OffColor)
	rec = binary.LittleEndian.AppendUint16(rec, t.Timer)
	rec = append(rec, p.ControlCode, p.OnCount, p.OffCount, p.OnColor, p.OffColor)
	// two reserved bytes pad the record to its fixed size
	return append(rec, 0x00, 0x00)
}

func (c BuzzerControl) marshalRecord(rec []byte) []byte {
	return append(rec, c.Reader, c.ToneCode, c.OnCount, c.OffCount, c.RepeatCount)
}

func (c TextOutput) marshalRecord(rec []byte) []byte {
	rec = append(rec, c.Reader, c.Command, c.TempTime, c.Row, c.Column, byte(len(c.Text)))
	var slot [MaxTextLength]byte
	copy(slot[:], c.Text)
	return append(rec, slot[:]...)
}

func (c CommSet) marshalRecord(rec []byte) []byte {
	rec = append(rec, c.Address)
	return binary.LittleEndian.AppendUint32(rec, c.BaudRate)
}

func (c RawCommand) marshalRecord(rec []byte) []byte {
	return append(rec, c.Data...)
}

// MarshalRecord serializes cmd into the queue record form [id][payload].
func MarshalRecord(cmd Command) (_ []byte, err error) {
	defer deferWrap(&err)

	if cmd == nil {
		return nil, fmt.Errorf("%w: nil command", ErrInvalidParameter)
	}
	if text, ok := cmd.(TextOutput); ok && len(text.Text) > MaxTextLength {
		return nil, newFormatError(CmdText, ErrCommandFormat,
			"text is %d bytes, limit %d", len(text.Text), MaxTextLength)
	}

	rec := cmd.marshalRecord([]byte{byte(cmd.Code())})
	if len(rec) > maxRecordLen {
		return nil, newFormatError(cmd.Code(), ErrCommandFormat, "record is %d bytes", len(rec))
	}
	return rec, nil
}

// ParseCommand decodes a command payload as a peripheral would receive it.
// It is the inverse of BuildCommand for every supported kind.
func ParseCommand(wire []byte) (_ Command, err error) {
	defer deferWrap(&err)

	if len(wire) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrCommandFormat)
	}
	id := CommandID(wire[0])
	data := wire[1:]

	expect := func(n int) error {
		if len(data) != n {
			return newFormatError(id, ErrCommandFormat, "payload is %d bytes, want %d", len(data), n)
		}
		return nil
	}

	switch id {
	case CmdPoll, CmdLStat, CmdIStat, CmdOStat, CmdRStat:
		if err := expect(0); err != nil {
			return nil, err
		}
		return queryCommand(id), nil
	case CmdID, CmdCap, CmdDiag:
		if err := expect(1); err != nil {
			return nil, err
		}
		return queryCommand(id), nil
	case CmdOut:
		if err := expect(outputRecordLen); err != nil {
			return nil, err
		}
		return OutputControl{
			Output:      data[0],
			ControlCode: data[1],
			Timer:       binary.LittleEndian.Uint16(data[2:4]),
		}, nil
	case CmdLED:
		if err := expect(ledWireLen); err != nil {
			return nil, err
		}
		return LEDControl{
			Reader: data[0],
			LED:    data[1],
			Temporary: LEDTemporary{
				ControlCode: data[2],
				OnCount:     data[3],
				OffCount:    data[4],
				OnColor:     data[5],
				OffColor:    data[6],
				Timer:       binary.LittleEndian.Uint16(data[7:9]),
			},
			Permanent: LEDPermanent{
				ControlCode: data[9],
				OnCount:     data[10],
				OffCount:    data[11],
				OnColor:     data[12],
				OffColor:    data[13],
			},
		}, nil
	case CmdBuz:
		if err := expect(buzzerRecordLen); err != nil {
			return nil, err
		}
		return BuzzerControl{
			Reader:      data[0],
			ToneCode:    data[1],
			OnCount:     data[2],
			OffCount:    data[3],
			RepeatCount: data[4],
		}, nil
	case CmdText:
		if len(data) < textHeaderLen || len(data) != textHeaderLen+int(data[5]) {
			return nil, newFormatError(id, ErrCommandFormat, "text payload is %d bytes", len(data))
		}
		return TextOutput{
			Reader:   data[0],
			Command:  data[1],
			TempTime: data[2],
			Row:      data[3],
			Column:   data[4],
			Text:     append([]byte(nil), data[textHeaderLen:]...),
		}, nil
	case CmdComSet:
		if err := expect(comSetRecordLen); err != nil {
			return nil, err
		}
		return CommSet{
			Address:  data[0],
			BaudRate: binary.LittleEndian.Uint32(data[1:5]),
		}, nil
	default:
		return RawCommand{ID: id, Data: append([]byte(nil), data...)}, nil
	}
}

func queryCommand(id CommandID) Command {
	switch id {
	case CmdPoll:
		return Poll{}
	case CmdLStat:
		return LocalStatusQuery{}
	case CmdIStat:
		return InputStatusQuery{}
	case CmdOStat:
		return OutputStatusQuery{}
	case CmdRStat:
		return ReaderStatusQuery{}
	case CmdID:
		return IDReport{}
	case CmdCap:
		return CapabilitiesReport{}
	default:
		return Diagnose{}
	}
}
