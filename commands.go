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

import "fmt"

// CommandID is the first byte of a command payload
type CommandID byte

// Command codes sent by the control panel
const (
	CmdPoll     CommandID = 0x60
	CmdID       CommandID = 0x61
	CmdCap      CommandID = 0x62
	CmdDiag     CommandID = 0x63
	CmdLStat    CommandID = 0x64
	CmdIStat    CommandID = 0x65
	CmdOStat    CommandID = 0x66
	CmdRStat    CommandID = 0x67
	CmdOut      CommandID = 0x68
	CmdLED      CommandID = 0x69
	CmdBuz      CommandID = 0x6A
	CmdText     CommandID = 0x6B
	CmdRMode    CommandID = 0x6C
	CmdTDSet    CommandID = 0x6D
	CmdComSet   CommandID = 0x6E
	CmdData     CommandID = 0x6F
	CmdXmit     CommandID = 0x70
	CmdPrompt   CommandID = 0x71
	CmdSPE      CommandID = 0x72
	CmdBioRead  CommandID = 0x73
	CmdBioMatch CommandID = 0x74
	CmdKeySet   CommandID = 0x75
	CmdChlng    CommandID = 0x76
	CmdSCrypt   CommandID = 0x77
	CmdCont     CommandID = 0x79
	CmdAbort    CommandID = 0x7A
	CmdMaxReply CommandID = 0x7B
	CmdMfg      CommandID = 0x80
	CmdSCDone   CommandID = 0xA0
	CmdXWR      CommandID = 0xA1
)

var commandNames = map[CommandID]string{
	CmdPoll:     "POLL",
	CmdID:       "ID",
	CmdCap:      "CAP",
	CmdDiag:     "DIAG",
	CmdLStat:    "LSTAT",
	CmdIStat:    "ISTAT",
	CmdOStat:    "OSTAT",
	CmdRStat:    "RSTAT",
	CmdOut:      "OUT",
	CmdLED:      "LED",
	CmdBuz:      "BUZ",
	CmdText:     "TEXT",
	CmdRMode:    "RMODE",
	CmdTDSet:    "TDSET",
	CmdComSet:   "COMSET",
	CmdData:     "DATA",
	CmdXmit:     "XMIT",
	CmdPrompt:   "PROMPT",
	CmdSPE:      "SPE",
	CmdBioRead:  "BIOREAD",
	CmdBioMatch: "BIOMATCH",
	CmdKeySet:   "KEYSET",
	CmdChlng:    "CHLNG",
	CmdSCrypt:   "SCRYPT",
	CmdCont:     "CONT",
	CmdAbort:    "ABORT",
	CmdMaxReply: "MAXREPLY",
	CmdMfg:      "MFG",
	CmdSCDone:   "SCDONE",
	CmdXWR:      "XWR",
}

func (c CommandID) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CMD(0x%02X)", byte(c))
}

// ReplyID is the first byte of a reply payload
type ReplyID byte

// Reply codes sent by a peripheral
const (
	ReplyAck       ReplyID = 0x40
	ReplyNak       ReplyID = 0x41
	ReplyPDID      ReplyID = 0x45
	ReplyPDCap     ReplyID = 0x46
	ReplyLStatR    ReplyID = 0x48
	ReplyIStatR    ReplyID = 0x49
	ReplyOStatR    ReplyID = 0x4A
	ReplyRStatR    ReplyID = 0x4B
	ReplyRaw       ReplyID = 0x50
	ReplyFmt       ReplyID = 0x51
	ReplyPres      ReplyID = 0x52
	ReplyKeypad    ReplyID = 0x53
	ReplyCom       ReplyID = 0x54
	ReplySCRep     ReplyID = 0x55
	ReplySPER      ReplyID = 0x56
	ReplyBioReadR  ReplyID = 0x57
	ReplyBioMatchR ReplyID = 0x58
	ReplyCCrypt    ReplyID = 0x76
	ReplyRMACI     ReplyID = 0x78
	ReplyBusy      ReplyID = 0x79
	ReplyMfgRep    ReplyID = 0x90
	ReplyXRD       ReplyID = 0xB1
)

var replyNames = map[ReplyID]string{
	ReplyAck:       "ACK",
	ReplyNak:       "NAK",
	ReplyPDID:      "PDID",
	ReplyPDCap:     "PDCAP",
	ReplyLStatR:    "LSTATR",
	ReplyIStatR:    "ISTATR",
	ReplyOStatR:    "OSTATR",
	ReplyRStatR:    "RSTATR",
	ReplyRaw:       "RAW",
	ReplyFmt:       "FMT",
	ReplyPres:      "PRES",
	ReplyKeypad:    "KEYPAD",
	ReplyCom:       "COM",
	ReplySCRep:     "SCREP",
	ReplySPER:      "SPER",
	ReplyBioReadR:  "BIOREADR",
	ReplyBioMatchR: "BIOMATCHR",
	ReplyCCrypt:    "CCRYPT",
	ReplyRMACI:     "RMAC_I",
	ReplyBusy:      "BUSY",
	ReplyMfgRep:    "MFGREP",
	ReplyXRD:       "XRD",
}

func (r ReplyID) String() string {
	if name, ok := replyNames[r]; ok {
		return name
	}
	return fmt.Sprintf("REPLY(0x%02X)", byte(r))
}

// NAKReason is the error code carried by a NAK reply
type NAKReason byte

const (
	NAKNone NAKReason = iota
	NAKCheckCharacter
	NAKCommandLength
	NAKUnknownCommand
	NAKSequenceNumber
	NAKSecurityBlock
	NAKEncryptionRequired
	NAKBioType
	NAKBioFormat
	NAKRecord
)

func (r NAKReason) String() string {
	switch r {
	case NAKNone:
		return "no error"
	case NAKCheckCharacter:
		return "message check character(s) error"
	case NAKCommandLength:
		return "command length error"
	case NAKUnknownCommand:
		return "unknown command code"
	case NAKSequenceNumber:
		return "unexpected sequence number"
	case NAKSecurityBlock:
		return "unsupported security block"
	case NAKEncryptionRequired:
		return "encrypted communication required"
	case NAKBioType:
		return "biometric type not supported"
	case NAKBioFormat:
		return "biometric format not supported"
	case NAKRecord:
		return "unable to process command record"
	default:
		return fmt.Sprintf("unknown reason 0x%02X", byte(r))
	}
}

// CapabilityCode identifies a PD capability function
type CapabilityCode byte

const (
	CapContactStatusMonitoring CapabilityCode = iota + 1
	CapOutputControl
	CapCardDataFormat
	CapReaderLEDControl
	CapReaderAudibleOutput
	CapReaderTextOutput
	CapTimeKeeping
	CapCheckCharacterSupport
	CapCommunicationSecurity
	CapReceiveBufferSize
	CapLargestCombinedMessageSize
	CapSmartCardSupport
	CapReaders
	CapBiometrics
)

var capabilityNames = map[CapabilityCode]string{
	CapContactStatusMonitoring:    "contact status monitoring",
	CapOutputControl:              "output control",
	CapCardDataFormat:             "card data format",
	CapReaderLEDControl:           "reader LED control",
	CapReaderAudibleOutput:        "reader audible output",
	CapReaderTextOutput:           "reader text output",
	CapTimeKeeping:                "time keeping",
	CapCheckCharacterSupport:      "check character support",
	CapCommunicationSecurity:      "communication security",
	CapReceiveBufferSize:          "receive buffer size",
	CapLargestCombinedMessageSize: "largest combined message size",
	CapSmartCardSupport:           "smart card support",
	CapReaders:                    "readers",
	CapBiometrics:                 "biometrics",
}

func (c CapabilityCode) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capability(%d)", byte(c))
}

// CardFormat tags the data passed to a CardReadHandler
type CardFormat byte

const (
	CardFormatRawUnspecified CardFormat = 0x00
	CardFormatRawWiegand     CardFormat = 0x01
	CardFormatASCII          CardFormat = 0x02
)

func (f CardFormat) String() string {
	switch f {
	case CardFormatRawUnspecified:
		return "raw"
	case CardFormatRawWiegand:
		return "wiegand"
	case CardFormatASCII:
		return "ascii"
	default:
		return fmt.Sprintf("format(0x%02X)", byte(f))
	}
}
