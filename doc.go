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

/*
Package osdp provides the control panel side of the Open Supervised Device
Protocol link layer for talking to card readers, keypads and I/O modules on
an RS-485 bus.

Features:
  - Fixed-size command queue per peripheral
  - Command encoding and reply decoding for the plain-text command set
  - Per-peripheral link state machine with busy retry and response timeout
  - Keypad and card read event callbacks
  - Serial and WebSocket bridge transports

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-osdp"
	    "github.com/ZaparooProject/go-osdp/transport/uart"
	)

	transport, err := uart.New("/dev/ttyUSB0", 9600)
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	pd, err := osdp.NewPeripheral(1, transport,
	    osdp.WithResponseTimeout(200*time.Millisecond),
	    osdp.WithCardReadHandler(func(addr int, f osdp.CardFormat, data []byte, n int) {
	        fmt.Printf("pd %d: %s card, %d bits\n", addr, f, n)
	    }),
	)
	if err != nil {
	    log.Fatal(err)
	}

	if err := pd.Enqueue(osdp.IDReport{}); err != nil {
	    log.Fatal(err)
	}

	for {
	    res, err := pd.Step()
	    if res == osdp.StepFault {
	        log.Printf("link fault: %v", err)
	        pd.ResetLink()
	    }
	    if res == osdp.StepCommandBoundary {
	        fmt.Printf("vendor %06X\n", pd.ID().VendorCode)
	    }
	    time.Sleep(5 * time.Millisecond)
	}

A ControlPanel steps several peripherals together, and polling.Runner
refreshes one periodically from a background goroutine.

Error Handling:

Link faults carry the underlying cause:

	if errors.Is(err, osdp.ErrTimeout) {
	    // peripheral did not answer; osdp.IsRetryable(err) is true
	}
	var fe *osdp.FormatError
	if errors.As(err, &fe) {
	    // the queued command could not be encoded
	}

Thread Safety:

Peripheral and ControlPanel are not safe for concurrent use. polling.Runner
serializes access for applications that queue commands from other
goroutines.
*/
package osdp
