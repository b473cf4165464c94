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

package uart

import (
	"bytes"
	"errors"
	"testing"
	"time"

	osdp "github.com/ZaparooProject/go-osdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakePort is an in-memory serial port. Writes land in written; reads
// drain input. maxWrite limits bytes accepted per Write call.
type fakePort struct {
	readErr     error
	modeErr     error
	mode        *serial.Mode
	input       bytes.Buffer
	written     bytes.Buffer
	readTimeout time.Duration
	maxWrite    int
	closed      bool
}

func (f *fakePort) Read(p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	if f.input.Len() == 0 {
		return 0, nil
	}
	return f.input.Read(p)
}

func (f *fakePort) Write(p []byte) (int, error) {
	if f.maxWrite > 0 && len(p) > f.maxWrite {
		p = p[:f.maxWrite]
	}
	return f.written.Write(p)
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func (f *fakePort) SetMode(mode *serial.Mode) error {
	if f.modeErr != nil {
		return f.modeErr
	}
	f.mode = mode
	return nil
}

func (f *fakePort) SetReadTimeout(t time.Duration) error {
	f.readTimeout = t
	return nil
}

func (*fakePort) ResetInputBuffer() error {
	return nil
}

func newFakeTransport(t *testing.T) (*Transport, *fakePort) {
	t.Helper()
	fp := &fakePort{}
	tr, err := newTransport(fp, "/dev/ttyUSB0", &serial.Mode{BaudRate: DefaultBaudRate, DataBits: 8})
	require.NoError(t, err)
	return tr, fp
}

// TestTransportCreation verifies basic transport creation and properties
func TestTransportCreation(t *testing.T) {
	t.Parallel()

	testPortName := "/dev/ttyUSB0"
	transport := &Transport{
		portName: testPortName,
	}

	assert.Equal(t, testPortName, transport.String())
	assert.Equal(t, osdp.TransportUART, transport.Type())
	assert.False(t, transport.IsConnected(), "uninitialized transport must not report connected")

	_, err := transport.Send([]byte{0x53})
	require.ErrorIs(t, err, osdp.ErrTransportWrite)
	_, err = transport.Receive(make([]byte, 4))
	require.ErrorIs(t, err, osdp.ErrTransportRead)
	require.NoError(t, transport.Close())
}

func TestTransport_PollTimeout(t *testing.T) {
	t.Parallel()
	tr, fp := newFakeTransport(t)
	assert.Equal(t, pollTimeout, fp.readTimeout)
	assert.True(t, tr.IsConnected())
}

func TestTransport_SendWritesAll(t *testing.T) {
	t.Parallel()
	tr, fp := newFakeTransport(t)
	fp.maxWrite = 3

	pkt := []byte{0x53, 0x01, 0x08, 0x00, 0x04, 0x60, 0xAA, 0xBB}
	n, err := tr.Send(pkt)
	require.NoError(t, err)
	assert.Equal(t, len(pkt), n)
	assert.Equal(t, pkt, fp.written.Bytes())
}

func TestTransport_Receive(t *testing.T) {
	t.Parallel()
	tr, fp := newFakeTransport(t)
	buf := make([]byte, 16)

	n, err := tr.Receive(buf)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing available yet")

	fp.input.Write([]byte{0x53, 0x81})
	n, err = tr.Receive(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x53, 0x81}, buf[:n])

	fp.readErr = errors.New("device unplugged")
	_, err = tr.Receive(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
}

func TestTransport_SetBaudRate(t *testing.T) {
	t.Parallel()
	tr, fp := newFakeTransport(t)

	require.NoError(t, tr.SetBaudRate(115200))
	assert.Equal(t, 115200, fp.mode.BaudRate)
	assert.Equal(t, 8, fp.mode.DataBits)
	assert.Equal(t, 115200, tr.BaudRate())

	fp.modeErr = errors.New("invalid speed")
	err := tr.SetBaudRate(1)
	require.Error(t, err)
	assert.Equal(t, 115200, tr.BaudRate())
	assert.Equal(t, osdp.ErrorTypePermanent, osdp.GetErrorType(err))
}

func TestTransport_Close(t *testing.T) {
	t.Parallel()
	tr, fp := newFakeTransport(t)

	require.NoError(t, tr.Close())
	assert.True(t, fp.closed)
	assert.False(t, tr.IsConnected())
	require.NoError(t, tr.Close())
}

func TestTransport_ImplementsInterfaces(t *testing.T) {
	t.Parallel()
	var tr osdp.Transport = &Transport{}
	_, ok := tr.(osdp.BaudRateSetter)
	assert.True(t, ok)
}

func TestNew_MissingPort(t *testing.T) {
	t.Parallel()
	_, err := New("/dev/osdp-does-not-exist", DefaultBaudRate)
	require.Error(t, err)
	assert.False(t, osdp.IsRetryable(err))
}
