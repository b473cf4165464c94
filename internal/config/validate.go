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

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

const (
	maxAddress   = 0x7E
	maxQueueSize = 4096
	minQueueSize = 32
)

// SupportedBaudRates lists the line speeds a peripheral may be set to
var SupportedBaudRates = []int{9600, 19200, 38400, 57600, 115200, 230400}

// Validate checks configuration correctness.
// It performs declarative validation only and never mutates cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	cp := cfg.ControlPanel

	if err := validateTransport(cp.Transport); err != nil {
		return err
	}

	if cp.ResponseTimeoutMs <= 0 {
		return fmt.Errorf("response_timeout_ms must be positive, got %d", cp.ResponseTimeoutMs)
	}
	if cp.PollIntervalMs <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive, got %d", cp.PollIntervalMs)
	}
	if cp.QueueSize < minQueueSize || cp.QueueSize > maxQueueSize {
		return fmt.Errorf("queue_size must be in %d..%d, got %d", minQueueSize, maxQueueSize, cp.QueueSize)
	}

	if len(cp.Peripherals) == 0 {
		return errors.New("at least one peripheral is required")
	}
	seen := make(map[int]string, len(cp.Peripherals))
	for i, pd := range cp.Peripherals {
		if pd.Address < 0 || pd.Address > maxAddress {
			return fmt.Errorf("peripheral %d (%q): address %d out of range 0..%d", i, pd.Name, pd.Address, maxAddress)
		}
		if prev, exists := seen[pd.Address]; exists {
			return fmt.Errorf("address %d used by peripherals %q and %q", pd.Address, prev, pd.Name)
		}
		seen[pd.Address] = pd.Name
	}
	return nil
}

func validateTransport(t TransportConfig) error {
	switch {
	case t.Port == "" && t.URL == "":
		return errors.New("transport: one of port or url is required")
	case t.Port != "" && t.URL != "":
		return errors.New("transport: port and url are mutually exclusive")
	case t.URL != "":
		u, err := url.Parse(t.URL)
		if err != nil {
			return fmt.Errorf("transport: invalid url: %w", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("transport: url scheme %q, want ws or wss", u.Scheme)
		}
		if (t.Username == "") != (t.Password == "") {
			return errors.New("transport: username and password must be set together")
		}
		return nil
	}

	if !slices.Contains(SupportedBaudRates, t.Baud) {
		return fmt.Errorf("transport: unsupported baud %d", t.Baud)
	}
	return nil
}
