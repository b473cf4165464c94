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

package config

// Defaults applied by Normalize to unset fields
const (
	DefaultBaud              = 9600
	DefaultResponseTimeoutMs = 200
	DefaultPollIntervalMs    = 20
	DefaultQueueSize         = 128
)

// Normalize fills unset fields with their defaults. It runs before
// Validate, so zero values never reach validation as "invalid".
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	cp := &cfg.ControlPanel

	// baud only matters for serial ports
	if cp.Transport.Port != "" && cp.Transport.Baud == 0 {
		cp.Transport.Baud = DefaultBaud
	}
	if cp.ResponseTimeoutMs == 0 {
		cp.ResponseTimeoutMs = DefaultResponseTimeoutMs
	}
	if cp.PollIntervalMs == 0 {
		cp.PollIntervalMs = DefaultPollIntervalMs
	}
	if cp.QueueSize == 0 {
		cp.QueueSize = DefaultQueueSize
	}
}
