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
	"fmt"
	"log/slog"
)

// LinkState is the state of the command/reply exchange with a peripheral
type LinkState int

const (
	LinkIdle LinkState = iota
	LinkSendCommand
	LinkAwaitResponse
	LinkError
)

func (s LinkState) String() string {
	switch s {
	case LinkIdle:
		return "idle"
	case LinkSendCommand:
		return "send-command"
	case LinkAwaitResponse:
		return "await-response"
	case LinkError:
		return "error"
	default:
		return fmt.Sprintf("LinkState(%d)", int(s))
	}
}

// StepResult tells the owning loop what one Step accomplished
type StepResult int

const (
	// StepNothingToDo means the queue was empty and the link idle
	StepNothingToDo StepResult = iota
	// StepInProgress means a command is on the wire or awaiting its reply
	StepInProgress
	// StepCommandBoundary means a command completed and the link is idle
	StepCommandBoundary
	// StepFault means the link entered, or remains in, the error state
	StepFault
)

func (r StepResult) String() string {
	switch r {
	case StepNothingToDo:
		return "nothing-to-do"
	case StepInProgress:
		return "in-progress"
	case StepCommandBoundary:
		return "command-boundary"
	case StepFault:
		return "fault"
	default:
		return fmt.Sprintf("StepResult(%d)", int(r))
	}
}

// Step advances the link by at most one transition and never blocks.
// A fault leaves the link in LinkError; every later Step returns
// ErrLinkDown until ResetLink is called.
func (pd *Peripheral) Step() (StepResult, error) {
	switch pd.state {
	case LinkIdle:
		n, err := pd.queue.Dequeue(false, pd.scratch)
		if err != nil {
			return pd.fault(fmt.Errorf("dequeue: %w", err))
		}
		if n == 0 {
			return StepNothingToDo, nil
		}
		pd.scratchLen = n
		pd.state = LinkSendCommand
		fallthrough

	case LinkSendCommand:
		if err := pd.sendCommand(); err != nil {
			return pd.fault(err)
		}
		pd.state = LinkAwaitResponse
		pd.sendTime = pd.clock()
		pd.rxLen = 0
		return StepInProgress, nil

	case LinkAwaitResponse:
		return pd.awaitResponse()

	default:
		return StepFault, ErrLinkDown
	}
}

// ResetLink drops the in-flight command and returns the link to idle.
// Queued commands are kept. The framer restarts its sequence if it can.
func (pd *Peripheral) ResetLink() {
	pd.state = LinkIdle
	pd.scratchLen = 0
	pd.rxLen = 0
	if r, ok := pd.framer.(resetter); ok {
		r.Reset()
	}
}

func (pd *Peripheral) fault(err error) (StepResult, error) {
	pd.state = LinkError
	return StepFault, err
}

func (pd *Peripheral) sendCommand() error {
	port := pd.portName()
	record := pd.scratch[:pd.scratchLen]

	head, err := pd.framer.BuildHead(pd.frame)
	if err != nil {
		return NewTransportError("build head", port, err, ErrorTypePermanent)
	}

	n, err := BuildCommand(pd, record, pd.frame[head:])
	if err != nil {
		return err
	}

	total, err := pd.framer.BuildTail(pd.frame, head+n)
	if err != nil {
		return NewTransportError("build tail", port, err, ErrorTypePermanent)
	}

	pkt := pd.frame[:total]
	sent, err := pd.transport.Send(pkt)
	if err != nil {
		return NewTransportError("send", port, fmt.Errorf("%w: %w", ErrTransportWrite, err), ErrorTypeTransient)
	}
	if sent != total {
		return NewTransportError("send", port,
			fmt.Errorf("%w: short write %d of %d bytes", ErrTransportWrite, sent, total), ErrorTypeTransient)
	}

	pd.log.Debug("sent command", slog.String("cmd", CommandID(record[0]).String()), logHex("packet", pkt))
	return nil
}

func (pd *Peripheral) awaitResponse() (StepResult, error) {
	port := pd.portName()

	n, err := pd.transport.Receive(pd.rx[pd.rxLen:])
	if err != nil {
		return pd.fault(NewTransportError("receive", port,
			fmt.Errorf("%w: %w", ErrTransportRead, err), ErrorTypeTransient))
	}
	pd.rxLen += n

	if pd.rxLen > 0 {
		payload, err := pd.framer.DecodePacket(pd.rx[:pd.rxLen])
		switch {
		case err == nil:
			return pd.handleReply(payload)
		case !errors.Is(err, ErrPacketIncomplete):
			pd.log.Info("dropping packet", slog.Any("err", err), logHex("data", pd.rx[:pd.rxLen]))
			return pd.fault(NewTransportError("decode packet", port,
				fmt.Errorf("%w: %w", ErrPacketDecode, err), ErrorTypeTransient))
		case pd.rxLen == len(pd.rx):
			return pd.fault(NewTransportError("decode packet", port,
				fmt.Errorf("%w: receive buffer full", ErrPacketDecode), ErrorTypeTransient))
		}
	}

	if elapsed := pd.clock().Sub(pd.sendTime); elapsed > pd.config.ResponseTimeout {
		pd.log.Info("response timeout", slog.Duration("elapsed", elapsed),
			slog.String("cmd", CommandID(pd.scratch[0]).String()))
		return pd.fault(NewTimeoutError("receive", port))
	}
	return StepInProgress, nil
}

func (pd *Peripheral) handleReply(payload []byte) (StepResult, error) {
	outcome, err := DecodeReply(pd, payload)
	switch outcome {
	case OutcomeOK:
		pd.state = LinkIdle
		pd.rxLen = 0
		return StepCommandBoundary, nil
	case OutcomeRetry:
		pd.state = LinkSendCommand
		pd.rxLen = 0
		return StepInProgress, nil
	default:
		return pd.fault(err)
	}
}
