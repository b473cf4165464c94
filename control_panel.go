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
	"slices"
)

// RefreshSummary counts the step results of one Refresh pass
type RefreshSummary struct {
	Idle       int
	InProgress int
	Boundaries int
	Faults     int
	// Deferred counts peripherals with queued commands that waited for
	// another exchange on their shared transport
	Deferred int
}

// ControlPanel owns the peripherals on a bus and steps their links. It is
// not safe for concurrent use; see polling.Runner.
type ControlPanel struct {
	peripherals map[int]*Peripheral
	lastErr     map[int]error
	log         *slog.Logger
	order       []int
	autoRecover bool
	idlePoll    bool
}

// CPOption is a functional option for configuring a ControlPanel
type CPOption func(*ControlPanel) error

// WithAutoRecover re-arms a link after a retryable fault (timeout, lost or
// corrupt packet) on the same Refresh. Non-retryable faults still need
// ResetLink.
func WithAutoRecover(enabled bool) CPOption {
	return func(cp *ControlPanel) error {
		cp.autoRecover = enabled
		return nil
	}
}

// WithIdlePoll queues a POLL whenever a peripheral has nothing else to do,
// which keeps event replies flowing
func WithIdlePoll(enabled bool) CPOption {
	return func(cp *ControlPanel) error {
		cp.idlePoll = enabled
		return nil
	}
}

// WithPanelLogger sets the control panel logger
func WithPanelLogger(logger *slog.Logger) CPOption {
	return func(cp *ControlPanel) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidParameter)
		}
		cp.log = logger
		return nil
	}
}

// NewControlPanel creates a control panel managing pds
func NewControlPanel(pds []*Peripheral, opts ...CPOption) (*ControlPanel, error) {
	cp := &ControlPanel{
		peripherals: make(map[int]*Peripheral, len(pds)),
		lastErr:     make(map[int]error),
		log:         Logger(),
	}
	for _, opt := range opts {
		if err := opt(cp); err != nil {
			return nil, err
		}
	}
	for _, pd := range pds {
		if err := cp.Add(pd); err != nil {
			return nil, err
		}
	}
	return cp, nil
}

// Add registers a peripheral
func (cp *ControlPanel) Add(pd *Peripheral) error {
	if pd == nil {
		return fmt.Errorf("%w: nil peripheral", ErrInvalidParameter)
	}
	if _, ok := cp.peripherals[pd.address]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicatePeripheral, pd.address)
	}
	cp.peripherals[pd.address] = pd
	cp.order = append(cp.order, pd.address)
	slices.Sort(cp.order)
	return nil
}

// Peripheral returns the peripheral at address
func (cp *ControlPanel) Peripheral(address int) (*Peripheral, error) {
	pd, ok := cp.peripherals[address]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPeripheralNotFound, address)
	}
	return pd, nil
}

// Addresses returns the peripheral addresses in refresh order
func (cp *ControlPanel) Addresses() []int {
	return slices.Clone(cp.order)
}

// SendCommand queues cmd for the peripheral at address
func (cp *ControlPanel) SendCommand(address int, cmd Command) error {
	pd, err := cp.Peripheral(address)
	if err != nil {
		return err
	}
	return pd.Enqueue(cmd)
}

// LastError returns the error of the most recent fault on address, or nil
func (cp *ControlPanel) LastError(address int) error {
	return cp.lastErr[address]
}

// Online reports whether the peripheral link is not in the error state
func (cp *ControlPanel) Online(address int) bool {
	pd, ok := cp.peripherals[address]
	return ok && pd.LinkState() != LinkError
}

// ResetLink re-arms the link of the peripheral at address
func (cp *ControlPanel) ResetLink(address int) error {
	pd, err := cp.Peripheral(address)
	if err != nil {
		return err
	}
	pd.ResetLink()
	delete(cp.lastErr, address)
	return nil
}

// Refresh steps every peripheral once, in address order. Peripherals that
// share a transport take turns: while one has a command in flight, the
// others keep their queued commands until the next pass.
func (cp *ControlPanel) Refresh() RefreshSummary {
	var sum RefreshSummary
	busy := make(map[Transport]bool, 1)
	for _, pd := range cp.peripherals {
		if pd.inFlight() {
			busy[pd.transport] = true
		}
	}

	for _, addr := range cp.order {
		pd := cp.peripherals[addr]
		wasInFlight := pd.inFlight()
		if !wasInFlight && busy[pd.transport] && pd.LinkState() == LinkIdle && pd.Pending() > 0 {
			sum.Deferred++
			continue
		}

		res, err := pd.Step()
		switch res {
		case StepNothingToDo:
			sum.Idle++
			if cp.idlePoll {
				if err := pd.Enqueue(Poll{}); err != nil {
					cp.log.Warn("queue poll", slog.Int("pd", addr), slog.Any("err", err))
				}
			}
		case StepInProgress:
			sum.InProgress++
		case StepCommandBoundary:
			sum.Boundaries++
			cp.finishCommSet(pd)
		case StepFault:
			sum.Faults++
			cp.handleFault(pd, err)
		}

		switch {
		case pd.inFlight():
			busy[pd.transport] = true
		case wasInFlight:
			busy[pd.transport] = false
		}
	}
	return sum
}

func (cp *ControlPanel) handleFault(pd *Peripheral, err error) {
	if errors.Is(err, ErrLinkDown) {
		return
	}
	cp.lastErr[pd.address] = err
	cp.log.Info("link fault", slog.Int("pd", pd.address),
		slog.String("type", GetErrorType(err).String()), slog.Any("err", err))

	if cp.autoRecover && IsRetryable(err) {
		pd.ResetLink()
	}
}

// finishCommSet moves the transport to the baud rate a peripheral
// accepted in its COM reply
func (cp *ControlPanel) finishCommSet(pd *Peripheral) {
	if !pd.CommSetInProgress() {
		return
	}
	defer pd.CompleteCommSet()

	setter, ok := pd.transport.(BaudRateSetter)
	if !ok {
		cp.log.Warn("transport cannot change baud rate", slog.Int("pd", pd.address))
		return
	}
	if err := setter.SetBaudRate(int(pd.BaudRate())); err != nil {
		cp.lastErr[pd.address] = fmt.Errorf("apply baud %d: %w", pd.BaudRate(), err)
		cp.log.Error("apply baud rate", slog.Int("pd", pd.address), slog.Any("err", err))
		return
	}
	cp.log.Info("baud rate changed", slog.Int("pd", pd.address), slog.Uint64("baud", uint64(pd.BaudRate())))
}
