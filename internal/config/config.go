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

// Package config loads the control panel configuration file
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ControlPanel ControlPanelConfig `yaml:"control_panel"`
}

type ControlPanelConfig struct {
	Transport         TransportConfig    `yaml:"transport"`
	Peripherals       []PeripheralConfig `yaml:"peripherals"`
	ResponseTimeoutMs int                `yaml:"response_timeout_ms"`
	PollIntervalMs    int                `yaml:"poll_interval_ms"`
	QueueSize         int                `yaml:"queue_size"`
	AutoRecover       *bool              `yaml:"auto_recover"`
}

// ---- TRANSPORT ----

// TransportConfig selects the bus connection. Exactly one of Port and URL
// is set.
type TransportConfig struct {
	Port          string `yaml:"port"`
	URL           string `yaml:"url"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	Baud          int    `yaml:"baud"`
	SkipTLSVerify bool   `yaml:"skip_tls_verify"`
}

// ---- PERIPHERALS ----

type PeripheralConfig struct {
	Name    string `yaml:"name"`
	Address int    `yaml:"address"`
}

// ResponseTimeout returns the reply timeout as a duration
func (c ControlPanelConfig) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutMs) * time.Millisecond
}

// PollInterval returns the refresh period as a duration
func (c ControlPanelConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Recover reports whether retryable faults are re-armed automatically
func (c ControlPanelConfig) Recover() bool {
	return c.AutoRecover == nil || *c.AutoRecover
}

// Load reads, normalizes and validates the file at path
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("config is empty")
		}
		return nil, fmt.Errorf("decode config: %w", err)
	}

	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
