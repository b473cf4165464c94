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
	"fmt"
	"log/slog"
	"time"
)

// Config holds the tunables of a Peripheral link
type Config struct {
	ResponseTimeout time.Duration
	QueueSize       int
}

// DefaultConfig returns the default link configuration
func DefaultConfig() *Config {
	return &Config{
		ResponseTimeout: 200 * time.Millisecond,
		QueueSize:       DefaultQueueSize,
	}
}

// Clock returns the current monotonic time
type Clock func() time.Time

// Option is a functional option for configuring a Peripheral
type Option func(*Peripheral) error

// WithLogger sets the logger; it is tagged with the peripheral address
func WithLogger(logger *slog.Logger) Option {
	return func(pd *Peripheral) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidParameter)
		}
		pd.log = logger
		return nil
	}
}

// WithResponseTimeout sets how long the link waits for a reply
func WithResponseTimeout(timeout time.Duration) Option {
	return func(pd *Peripheral) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: response timeout %v", ErrInvalidParameter, timeout)
		}
		pd.config.ResponseTimeout = timeout
		return nil
	}
}

// WithQueueSize sets the command queue capacity in bytes
func WithQueueSize(size int) Option {
	return func(pd *Peripheral) error {
		if size < MinQueueSize {
			return fmt.Errorf("%w: queue size %d below %d", ErrInvalidParameter, size, MinQueueSize)
		}
		pd.config.QueueSize = size
		return nil
	}
}

// WithFramer replaces the default OSDP packet framer
func WithFramer(f Framer) Option {
	return func(pd *Peripheral) error {
		if f == nil {
			return fmt.Errorf("%w: nil framer", ErrInvalidParameter)
		}
		pd.framer = f
		return nil
	}
}

// WithClock replaces time.Now for timeout measurement
func WithClock(clock Clock) Option {
	return func(pd *Peripheral) error {
		pd.clock = clock
		return nil
	}
}

// WithKeypressHandler sets the keypad event callback
func WithKeypressHandler(h KeypressHandler) Option {
	return func(pd *Peripheral) error {
		pd.onKeypress = h
		return nil
	}
}

// WithCardReadHandler sets the card read event callback
func WithCardReadHandler(h CardReadHandler) Option {
	return func(pd *Peripheral) error {
		pd.onCardRead = h
		return nil
	}
}
