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

// Package uart provides an RS-485 serial transport for OSDP peripherals
package uart

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	osdp "github.com/ZaparooProject/go-osdp"
	"github.com/ZaparooProject/go-osdp/internal/transport"
	"go.bug.st/serial"
)

// DefaultBaudRate is the OSDP default line speed
const DefaultBaudRate = 9600

// pollTimeout bounds how long Receive may wait for a byte
const pollTimeout = time.Millisecond

// openRetries is how often a busy port is retried before giving up
const openRetries = 3

// port is the subset of serial.Port the transport uses
type port interface {
	io.ReadWriteCloser
	SetMode(mode *serial.Mode) error
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Transport implements osdp.Transport over a serial port
type Transport struct {
	port     port
	mode     *serial.Mode
	portName string
	mu       sync.Mutex
}

// New opens portName at baud, 8N1
func New(portName string, baud int) (*Transport, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := transport.WithRetry(transport.RetryConfig{
		Description: "open",
		Port:        portName,
		MaxRetries:  openRetries,
		RetryDelay:  100 * time.Millisecond,
	}, func() (serial.Port, bool, error) {
		p, err := serial.Open(portName, mode)
		if err != nil {
			var pe *serial.PortError
			if errors.As(err, &pe) && pe.Code() == serial.PortBusy {
				return nil, true, nil
			}
			return nil, false, osdp.NewTransportError("open", portName, err, osdp.ErrorTypePermanent)
		}
		return p, false, nil
	})
	if err != nil {
		return nil, err
	}

	t, err := newTransport(p, portName, mode)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return t, nil
}

func newTransport(p port, portName string, mode *serial.Mode) (*Transport, error) {
	if err := p.SetReadTimeout(pollTimeout); err != nil {
		return nil, osdp.NewTransportError("set read timeout", portName, err, osdp.ErrorTypePermanent)
	}
	if err := p.ResetInputBuffer(); err != nil {
		return nil, osdp.NewTransportError("reset input", portName, err, osdp.ErrorTypeTransient)
	}
	return &Transport{port: p, portName: portName, mode: mode}, nil
}

// Send writes the whole packet
func (t *Transport) Send(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return 0, osdp.NewTransportError("send", t.portName, osdp.ErrTransportWrite, osdp.ErrorTypePermanent)
	}

	written := 0
	for written < len(p) {
		n, err := t.port.Write(p[written:])
		if err != nil {
			return written, fmt.Errorf("write %s: %w", t.portName, err)
		}
		if n == 0 {
			return written, fmt.Errorf("write %s: no progress", t.portName)
		}
		written += n
	}
	return written, nil
}

// Receive returns the bytes available within the short poll timeout;
// 0 means nothing has arrived
func (t *Transport) Receive(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return 0, osdp.NewTransportError("receive", t.portName, osdp.ErrTransportRead, osdp.ErrorTypePermanent)
	}

	n, err := t.port.Read(p)
	if err != nil {
		return n, fmt.Errorf("read %s: %w", t.portName, err)
	}
	return n, nil
}

// SetBaudRate switches the line speed after a COMSET exchange
func (t *Transport) SetBaudRate(baud int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return osdp.NewTransportError("set baud", t.portName, osdp.ErrTransportWrite, osdp.ErrorTypePermanent)
	}

	mode := *t.mode
	mode.BaudRate = baud
	if err := t.port.SetMode(&mode); err != nil {
		return osdp.NewTransportError("set baud", t.portName, err, osdp.ErrorTypePermanent)
	}
	t.mode = &mode
	return nil
}

// BaudRate returns the current line speed
func (t *Transport) BaudRate() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == nil {
		return 0
	}
	return t.mode.BaudRate
}

// Close closes the serial port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", t.portName, err)
	}
	return nil
}

// IsConnected returns true if the port is open
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

// Type returns the transport type
func (*Transport) Type() osdp.TransportType {
	return osdp.TransportUART
}

// String returns the port name
func (t *Transport) String() string {
	return t.portName
}
