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

// Outcome is the verdict of decoding one reply
type Outcome int

const (
	// OutcomeOK means the reply completed the command
	OutcomeOK Outcome = iota
	// OutcomeRetry means the peripheral was busy; resend the same command
	OutcomeRetry
	// OutcomeMalformed means the reply could not be used
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRetry:
		return "retry"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// DecodeReply parses a reply payload (frame stripped) and applies it to pd.
// The returned error is non-nil exactly when the outcome is OutcomeMalformed.
func DecodeReply(pd *Peripheral, buf []byte) (Outcome, error) {
	log := pd.logger()

	reply, err := ParseReply(buf)
	if err != nil {
		var re *ReplyError
		if errors.As(err, &re) {
			log.Warn("unexpected reply", slog.String("reply", re.Reply.String()),
				slog.String("reason", re.Reason), logHex("data", buf))
		}
		return OutcomeMalformed, err
	}

	log.Debug("processing reply", slog.String("reply", reply.Code().String()), logHex("data", buf))
	if pd == nil {
		return outcomeOf(reply), nil
	}
	pd.apply(reply)
	return outcomeOf(reply), nil
}

func outcomeOf(r Reply) Outcome {
	if _, ok := r.(Busy); ok {
		return OutcomeRetry
	}
	return OutcomeOK
}

// apply folds a parsed reply into the peripheral state and dispatches
// event callbacks.
func (pd *Peripheral) apply(reply Reply) {
	log := pd.logger()

	switch r := reply.(type) {
	case Nak:
		pd.lastNAK = r.Reason
		if r.Reason != NAKNone {
			log.Warn("PD replied with NAK", slog.String("reason", r.Reason.String()))
		}

	case PDID:
		pd.id = r

	case PDCap:
		for _, e := range r.Entries {
			pd.caps[e.Code] = e.Capability
		}

	case LocalStatus:
		pd.flags.set(FlagTamper, r.Tamper)
		pd.flags.set(FlagPower, r.Power)

	case ReaderStatus:
		pd.flags.set(FlagReaderTamper, r.Tamper)

	case ComSetReply:
		log.Warn("COMSET responded with new settings",
			slog.Int("address", int(r.Address)), slog.Uint64("baud", uint64(r.BaudRate)))
		pd.baudRate = r.BaudRate
		pd.flags.set(FlagCommSetInProgress, true)

	case KeypadData:
		if pd.onKeypress == nil {
			return
		}
		for _, key := range r.Keys {
			pd.onKeypress(pd.address, key)
		}

	case RawCardData:
		if pd.onCardRead != nil {
			pd.onCardRead(pd.address, r.Format, r.Data, int(r.BitLength))
		}

	case FormattedCardData:
		if pd.onCardRead != nil {
			pd.onCardRead(pd.address, CardFormatASCII, r.Data, len(r.Data))
		}

	case Busy:
		log.Info("PD is busy; will retry last command")

	case IgnoredReply:
		if r.Deprecated {
			log.Warn("deprecated reply", slog.String("reply", r.ID.String()))
		} else {
			log.Warn("unsupported reply", slog.String("reply", r.ID.String()))
		}
	}
}
