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

package main

import (
	"context"
	"errors"
	"os"

	osdp "github.com/ZaparooProject/go-osdp"
	"github.com/ZaparooProject/go-osdp/internal/config"
	"github.com/ZaparooProject/go-osdp/transport/uart"
	"github.com/ZaparooProject/go-osdp/transport/websocket"
)

const passwordEnv = "OSDP_PASSWORD"

// connectionFlags returns the transport selected on the command line
func connectionFlags() config.TransportConfig {
	return config.TransportConfig{
		Port:          portName,
		Baud:          baudRate,
		URL:           wsURL,
		Username:      wsUsername,
		Password:      os.Getenv(passwordEnv),
		SkipTLSVerify: wsNoSSLVerify,
	}
}

// openTransport connects to the bus described by tc
func openTransport(ctx context.Context, tc config.TransportConfig) (osdp.Transport, error) {
	switch {
	case tc.Port != "" && tc.URL != "":
		return nil, errors.New("--port and --url are mutually exclusive")
	case tc.URL != "":
		if tc.Username != "" && tc.Password == "" {
			return nil, errors.New(passwordEnv + " must be set with --username")
		}
		return websocket.Dial(ctx, tc.URL, websocket.DialOptions{
			Username:      tc.Username,
			Password:      tc.Password,
			SkipTLSVerify: tc.SkipTLSVerify,
		})
	case tc.Port != "":
		return uart.New(tc.Port, tc.Baud)
	default:
		return nil, errors.New("either --port or --url is required")
	}
}
