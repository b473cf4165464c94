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
	"testing"
	"time"

	"github.com/ZaparooProject/go-osdp/internal/frame"
	testutil "github.com/ZaparooProject/go-osdp/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type linkFixture struct {
	pd        *Peripheral
	transport *MockTransport
	sim       *testutil.Simulator
	clock     *fakeClock
}

func newLinkFixture(t *testing.T) *linkFixture {
	t.Helper()
	sim := testutil.NewSimulator(0x01)
	mock := NewMockTransportWithFunc(sim.Respond)
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	pd, err := NewPeripheral(1, mock, WithClock(clk.Now), WithResponseTimeout(200*time.Millisecond))
	require.NoError(t, err)
	return &linkFixture{pd: pd, transport: mock, sim: sim, clock: clk}
}

func (f *linkFixture) step(t *testing.T, want StepResult) {
	t.Helper()
	got, err := f.pd.Step()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestStep_NothingToDo(t *testing.T) {
	t.Parallel()
	f := newLinkFixture(t)

	f.step(t, StepNothingToDo)
	assert.Equal(t, LinkIdle, f.pd.LinkState())
	assert.Empty(t, f.transport.Sent())
}

func TestStep_CommandExchange(t *testing.T) {
	t.Parallel()
	f := newLinkFixture(t)
	f.sim.SetReply(byte(CmdID), testutil.BuildPDIDResponse(0x010203, 1, 2, 3, 4))

	require.NoError(t, f.pd.Enqueue(IDReport{}))
	require.NoError(t, f.pd.Enqueue(Poll{}))

	f.step(t, StepInProgress)
	assert.Equal(t, LinkAwaitResponse, f.pd.LinkState())
	f.step(t, StepCommandBoundary)
	assert.Equal(t, uint32(0x010203), f.pd.ID().VendorCode)

	f.step(t, StepInProgress)
	f.step(t, StepCommandBoundary)
	f.step(t, StepNothingToDo)

	assert.Equal(t, [][]byte{{0x61, 0x00}, {0x60}}, f.sim.Received())
}

func TestStep_BusyRetryResendsIdenticalBytes(t *testing.T) {
	t.Parallel()
	f := newLinkFixture(t)
	f.sim.SetReply(byte(CmdLStat), testutil.BuildBusyResponse(), testutil.BuildLocalStatusResponse(true, false))

	require.NoError(t, f.pd.Enqueue(LocalStatusQuery{}))
	require.NoError(t, f.pd.Enqueue(Poll{}))

	f.step(t, StepInProgress)
	pending := f.pd.Pending()
	tail := f.pd.Queue().tail

	// busy reply
	f.step(t, StepInProgress)
	assert.Equal(t, LinkSendCommand, f.pd.LinkState())
	assert.Equal(t, pending, f.pd.Pending())
	assert.Equal(t, tail, f.pd.Queue().tail)

	// retransmission
	f.step(t, StepInProgress)
	sent := f.transport.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, sent[0], sent[1])
	assert.Equal(t, tail, f.pd.Queue().tail)

	f.step(t, StepCommandBoundary)
	assert.True(t, f.pd.Tamper())

	f.step(t, StepInProgress)
	sent = f.transport.Sent()
	require.Len(t, sent, 3)
	assert.NotEqual(t, sent[0], sent[2])
}

func TestStep_TimeoutReportedOnce(t *testing.T) {
	t.Parallel()
	f := newLinkFixture(t)
	f.sim.SetSilent(true)
	require.NoError(t, f.pd.Enqueue(Poll{}))

	f.step(t, StepInProgress)
	f.step(t, StepInProgress)
	f.clock.Advance(200 * time.Millisecond)
	f.step(t, StepInProgress)

	f.clock.Advance(time.Millisecond)
	res, err := f.pd.Step()
	assert.Equal(t, StepFault, res)
	require.ErrorIs(t, err, ErrTimeout)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(err))
	assert.Equal(t, LinkError, f.pd.LinkState())

	for i := 0; i < 3; i++ {
		res, err = f.pd.Step()
		assert.Equal(t, StepFault, res)
		require.ErrorIs(t, err, ErrLinkDown)
		assert.NotErrorIs(t, err, ErrTimeout)
	}

	f.pd.ResetLink()
	assert.Equal(t, LinkIdle, f.pd.LinkState())
	f.step(t, StepNothingToDo)
}

func TestStep_ResetRestartsSequence(t *testing.T) {
	t.Parallel()
	f := newLinkFixture(t)
	require.NoError(t, f.pd.Enqueue(Poll{}))
	f.step(t, StepInProgress)
	f.step(t, StepCommandBoundary)

	f.sim.SetSilent(true)
	require.NoError(t, f.pd.Enqueue(Poll{}))
	f.step(t, StepInProgress)
	f.clock.Advance(time.Second)
	res, _ := f.pd.Step()
	require.Equal(t, StepFault, res)

	f.pd.ResetLink()
	f.sim.SetSilent(false)
	require.NoError(t, f.pd.Enqueue(Poll{}))
	f.step(t, StepInProgress)
	f.step(t, StepCommandBoundary)

	sent := f.transport.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, byte(0), sent[0][4]&frame.CtrlSeqMask)
	assert.Equal(t, byte(1), sent[1][4]&frame.CtrlSeqMask)
	assert.Equal(t, byte(0), sent[2][4]&frame.CtrlSeqMask)
}

func TestStep_MalformedReplyFaults(t *testing.T) {
	t.Parallel()
	f := newLinkFixture(t)
	f.sim.SetReply(byte(CmdCap), []byte{byte(ReplyPDCap), 0x01, 0x01})
	require.NoError(t, f.pd.Enqueue(CapabilitiesReport{}))

	f.step(t, StepInProgress)
	res, err := f.pd.Step()
	assert.Equal(t, StepFault, res)
	require.ErrorIs(t, err, ErrMalformedReply)
	assert.False(t, IsRetryable(err))
	assert.Empty(t, f.pd.Capabilities())
	assert.Equal(t, LinkError, f.pd.LinkState())
}

func TestStep_FormatErrorFaults(t *testing.T) {
	t.Parallel()
	f := newLinkFixture(t)
	require.NoError(t, f.pd.EnqueueRecord([]byte{byte(CmdOut), 0x01, 0x02}))

	res, err := f.pd.Step()
	assert.Equal(t, StepFault, res)
	require.ErrorIs(t, err, ErrCommandFormat)
	assert.Empty(t, f.transport.Sent())

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, CmdOut, fe.Command)
}

func TestStep_ObsoleteCommandFaults(t *testing.T) {
	t.Parallel()
	f := newLinkFixture(t)
	require.NoError(t, f.pd.Enqueue(RawCommand{ID: CmdSPE}))

	res, err := f.pd.Step()
	assert.Equal(t, StepFault, res)
	require.ErrorIs(t, err, ErrObsoleteCommand)
	assert.Empty(t, f.transport.Sent())
}

func TestStep_SendErrorFaults(t *testing.T) {
	t.Parallel()
	f := newLinkFixture(t)
	f.transport.SetSendError(errors.New("line down"))
	require.NoError(t, f.pd.Enqueue(Poll{}))

	res, err := f.pd.Step()
	assert.Equal(t, StepFault, res)
	require.ErrorIs(t, err, ErrTransportWrite)
	assert.True(t, IsRetryable(err))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "send", te.Op)
}

func TestStep_ReceiveErrorFaults(t *testing.T) {
	t.Parallel()
	f := newLinkFixture(t)
	f.sim.SetSilent(true)
	require.NoError(t, f.pd.Enqueue(Poll{}))
	f.step(t, StepInProgress)

	f.transport.SetReceiveError(errors.New("port closed"))
	res, err := f.pd.Step()
	assert.Equal(t, StepFault, res)
	require.ErrorIs(t, err, ErrTransportRead)
}

func TestStep_PartialReceive(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	clk := &fakeClock{now: time.Unix(0, 0)}
	pd, err := NewPeripheral(1, mock, WithClock(clk.Now))
	require.NoError(t, err)
	require.NoError(t, pd.Enqueue(ReaderStatusQuery{}))

	res, err := pd.Step()
	require.NoError(t, err)
	require.Equal(t, StepInProgress, res)

	pkt := frame.BuildReply(0x01, 0, testutil.BuildReaderStatusResponse(true))
	mock.QueueReceive(pkt[:3])
	res, err = pd.Step()
	require.NoError(t, err)
	assert.Equal(t, StepInProgress, res)

	mock.QueueReceive(pkt[3:])
	res, err = pd.Step()
	require.NoError(t, err)
	assert.Equal(t, StepCommandBoundary, res)
	assert.True(t, pd.ReaderTamper())
}

func TestStep_CorruptPacketFaults(t *testing.T) {
	t.Parallel()
	mock := NewMockTransport()
	pd, err := NewPeripheral(1, mock)
	require.NoError(t, err)
	require.NoError(t, pd.Enqueue(Poll{}))

	_, err = pd.Step()
	require.NoError(t, err)

	pkt := frame.BuildReply(0x01, 0, testutil.BuildAckResponse())
	pkt[len(pkt)-1] ^= 0xFF
	mock.QueueReceive(pkt)

	res, err := pd.Step()
	assert.Equal(t, StepFault, res)
	require.ErrorIs(t, err, ErrPacketDecode)
	assert.True(t, IsRetryable(err))
}

func TestLinkState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "await-response", LinkAwaitResponse.String())
	assert.Equal(t, "command-boundary", StepCommandBoundary.String())
	assert.Equal(t, "LinkState(9)", LinkState(9).String())
}

func TestNewPeripheral_Options(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		address int
		opts    []Option
		wantErr bool
	}{
		{name: "defaults", address: 0},
		{name: "highest address", address: 126},
		{name: "broadcast address", address: 127, wantErr: true},
		{name: "negative address", address: -1, wantErr: true},
		{name: "queue too small", address: 1, opts: []Option{WithQueueSize(8)}, wantErr: true},
		{name: "zero timeout", address: 1, opts: []Option{WithResponseTimeout(0)}, wantErr: true},
		{name: "nil logger", address: 1, opts: []Option{WithLogger(nil)}, wantErr: true},
		{name: "nil framer", address: 1, opts: []Option{WithFramer(nil)}, wantErr: true},
		{name: "bigger queue", address: 1, opts: []Option{WithQueueSize(1024)}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pd, err := NewPeripheral(tt.address, NewMockTransport(), tt.opts...)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.address, pd.Address())
			assert.Equal(t, LinkIdle, pd.LinkState())
		})
	}

	_, err := NewPeripheral(1, nil)
	require.ErrorIs(t, err, ErrInvalidParameter)
}
