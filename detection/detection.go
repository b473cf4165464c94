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

// Package detection finds serial ports that may lead to an OSDP bus
package detection

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Options controls port detection
type Options struct {
	// Blocklist holds VID:PID pairs that are never reported
	Blocklist []string
	// IgnorePaths holds device paths that are never reported
	IgnorePaths []string
	// USBOnly drops ports that are not USB adapters
	USBOnly bool
	// CheckAccess drops ports the current user cannot open
	CheckAccess bool
}

// DefaultOptions returns the detection defaults
func DefaultOptions() Options {
	return Options{
		Blocklist:   DefaultBlocklist(),
		CheckAccess: true,
	}
}

// Port describes a candidate serial port
type Port struct {
	Name         string
	VIDPID       string
	Product      string
	SerialNumber string
	USB          bool
	Known        bool
}

// String returns a one-line description of the port
func (p Port) String() string {
	if !p.USB {
		return p.Name
	}
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "%s [%s]", p.Name, p.VIDPID)
	if p.Product != "" {
		_, _ = fmt.Fprintf(&b, " %s", p.Product)
	}
	if p.SerialNumber != "" {
		_, _ = fmt.Fprintf(&b, " s/n %s", p.SerialNumber)
	}
	return b.String()
}

type portLister func() ([]*enumerator.PortDetails, error)

// Detect lists candidate serial ports, known RS-485 adapters first
func Detect(ctx context.Context, opts Options) ([]Port, error) {
	return detect(ctx, opts, enumerator.GetDetailedPortsList, accessible)
}

func detect(ctx context.Context, opts Options, listPorts portLister, canAccess func(string) bool) ([]Port, error) {
	details, err := listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	known := KnownAdapters()
	ports := make([]Port, 0, len(details))
	for _, d := range details {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d == nil || IsPathIgnored(d.Name, opts.IgnorePaths) {
			continue
		}
		if opts.USBOnly && !d.IsUSB {
			continue
		}

		p := Port{Name: d.Name, USB: d.IsUSB}
		if d.IsUSB {
			p.VIDPID = FormatVIDPID(d.VID, d.PID)
			p.Product = d.Product
			p.SerialNumber = d.SerialNumber
			if IsBlocked(p.VIDPID, opts.Blocklist) {
				continue
			}
			p.Known = IsBlocked(p.VIDPID, known)
		}
		if opts.CheckAccess && !canAccess(d.Name) {
			continue
		}
		ports = append(ports, p)
	}

	slices.SortStableFunc(ports, func(a, b Port) int {
		if a.Known != b.Known {
			if a.Known {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return ports, nil
}
