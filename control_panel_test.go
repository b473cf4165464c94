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
	"testing"
	"time"

	testutil "github.com/ZaparooProject/go-osdp/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bus routes packets to whichever simulator owns the addressed peripheral
func newBus(sims ...*testutil.Simulator) *MockTransport {
	return NewMockTransportWithFunc(func(pkt []byte) []byte {
		for _, s := range sims {
			if reply := s.Respond(pkt); reply != nil {
				return reply
			}
		}
		return nil
	})
}

func TestControlPanel_RefreshOrderAndBoundaries(t *testing.T) {
	t.Parallel()
	simA := testutil.NewSimulator(0x05)
	simB := testutil.NewSimulator(0x02)
	bus := newBus(simA, simB)

	pdA, err := NewPeripheral(5, bus)
	require.NoError(t, err)
	pdB, err := NewPeripheral(2, bus)
	require.NoError(t, err)

	cp, err := NewControlPanel([]*Peripheral{pdA, pdB})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, cp.Addresses())

	require.NoError(t, cp.SendCommand(5, Poll{}))
	require.NoError(t, cp.SendCommand(2, IDReport{}))

	// pd 2 goes first; pd 5 waits for the shared bus
	sum := cp.Refresh()
	assert.Equal(t, RefreshSummary{InProgress: 1, Deferred: 1}, sum)
	require.Len(t, bus.Sent(), 1)
	assert.Equal(t, byte(0x02), bus.Sent()[0][1])

	sum = cp.Refresh()
	assert.Equal(t, RefreshSummary{Boundaries: 1, InProgress: 1}, sum)
	sent := bus.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, byte(0x05), sent[1][1])

	sum = cp.Refresh()
	assert.Equal(t, RefreshSummary{Idle: 1, Boundaries: 1}, sum)
	assert.Equal(t, [][]byte{{0x61, 0x00}}, simB.Received())
	assert.Equal(t, [][]byte{{0x60}}, simA.Received())
}

func TestControlPanel_SeparateTransportsNotDeferred(t *testing.T) {
	t.Parallel()
	pdA, err := NewPeripheral(1, newBus(testutil.NewSimulator(0x01)))
	require.NoError(t, err)
	pdB, err := NewPeripheral(2, newBus(testutil.NewSimulator(0x02)))
	require.NoError(t, err)

	cp, err := NewControlPanel([]*Peripheral{pdA, pdB})
	require.NoError(t, err)
	require.NoError(t, cp.SendCommand(1, Poll{}))
	require.NoError(t, cp.SendCommand(2, Poll{}))

	assert.Equal(t, RefreshSummary{InProgress: 2}, cp.Refresh())
	assert.Equal(t, RefreshSummary{Boundaries: 2}, cp.Refresh())
}

func TestControlPanel_Errors(t *testing.T) {
	t.Parallel()
	pd, err := NewPeripheral(1, NewMockTransport())
	require.NoError(t, err)
	dup, err := NewPeripheral(1, NewMockTransport())
	require.NoError(t, err)

	_, err = NewControlPanel([]*Peripheral{pd, dup})
	require.ErrorIs(t, err, ErrDuplicatePeripheral)

	cp, err := NewControlPanel([]*Peripheral{pd})
	require.NoError(t, err)

	require.ErrorIs(t, cp.SendCommand(9, Poll{}), ErrPeripheralNotFound)
	require.ErrorIs(t, cp.ResetLink(9), ErrPeripheralNotFound)
	_, err = cp.Peripheral(9)
	require.ErrorIs(t, err, ErrPeripheralNotFound)
	require.ErrorIs(t, cp.Add(nil), ErrInvalidParameter)

	_, err = NewControlPanel(nil, WithPanelLogger(nil))
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestControlPanel_FaultAndAutoRecover(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		autoRecover bool
		wantState   LinkState
	}{
		{name: "manual", autoRecover: false, wantState: LinkError},
		{name: "auto recover", autoRecover: true, wantState: LinkIdle},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sim := testutil.NewSimulator(0x01)
			sim.SetSilent(true)
			clk := &fakeClock{now: time.Unix(0, 0)}
			pd, err := NewPeripheral(1, newBus(sim), WithClock(clk.Now))
			require.NoError(t, err)

			cp, err := NewControlPanel([]*Peripheral{pd}, WithAutoRecover(tt.autoRecover))
			require.NoError(t, err)
			require.NoError(t, cp.SendCommand(1, Poll{}))

			cp.Refresh()
			clk.Advance(time.Second)
			sum := cp.Refresh()
			assert.Equal(t, 1, sum.Faults)
			require.ErrorIs(t, cp.LastError(1), ErrTimeout)
			assert.Equal(t, tt.wantState, pd.LinkState())
			assert.Equal(t, tt.autoRecover, cp.Online(1))

			// link-down faults do not replace the recorded cause
			cp.Refresh()
			require.ErrorIs(t, cp.LastError(1), ErrTimeout)

			require.NoError(t, cp.ResetLink(1))
			assert.NoError(t, cp.LastError(1))
			assert.True(t, cp.Online(1))
		})
	}
}

func TestControlPanel_MalformedNotAutoRecovered(t *testing.T) {
	t.Parallel()
	sim := testutil.NewSimulator(0x01)
	sim.SetReply(byte(CmdPoll), []byte{0x99})
	pd, err := NewPeripheral(1, newBus(sim))
	require.NoError(t, err)

	cp, err := NewControlPanel([]*Peripheral{pd}, WithAutoRecover(true))
	require.NoError(t, err)
	require.NoError(t, cp.SendCommand(1, Poll{}))

	cp.Refresh()
	sum := cp.Refresh()
	assert.Equal(t, 1, sum.Faults)
	require.ErrorIs(t, cp.LastError(1), ErrMalformedReply)
	assert.False(t, cp.Online(1))
}

func TestControlPanel_IdlePoll(t *testing.T) {
	t.Parallel()
	sim := testutil.NewSimulator(0x03)
	sim.SetReply(byte(CmdPoll), testutil.BuildKeypadResponse('7'))

	var keys []byte
	pd, err := NewPeripheral(3, newBus(sim), WithKeypressHandler(func(_ int, key byte) {
		keys = append(keys, key)
	}))
	require.NoError(t, err)

	cp, err := NewControlPanel([]*Peripheral{pd}, WithIdlePoll(true))
	require.NoError(t, err)

	assert.Equal(t, 1, cp.Refresh().Idle)
	assert.Equal(t, 1, cp.Refresh().InProgress)
	assert.Equal(t, 1, cp.Refresh().Boundaries)
	assert.Equal(t, []byte{'7'}, keys)
}

func TestControlPanel_CommSetChangesBaud(t *testing.T) {
	t.Parallel()
	sim := testutil.NewSimulator(0x01)
	sim.SetReply(byte(CmdComSet), testutil.BuildComResponse(0x01, 115200))
	bus := newBus(sim)
	pd, err := NewPeripheral(1, bus)
	require.NoError(t, err)

	cp, err := NewControlPanel([]*Peripheral{pd})
	require.NoError(t, err)
	require.NoError(t, cp.SendCommand(1, CommSet{Address: 1, BaudRate: 115200}))

	cp.Refresh()
	sum := cp.Refresh()
	assert.Equal(t, 1, sum.Boundaries)
	assert.Equal(t, []int{115200}, bus.BaudRates())
	assert.False(t, pd.CommSetInProgress())
	assert.Equal(t, uint32(115200), pd.BaudRate())
}
