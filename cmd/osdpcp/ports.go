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
	"fmt"

	"github.com/ZaparooProject/go-osdp/detection"
	"github.com/spf13/cobra"
)

var (
	portsAll    bool
	portsIgnore []string
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports that may lead to an OSDP bus",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		opts := detection.DefaultOptions()
		opts.IgnorePaths = portsIgnore
		if portsAll {
			opts.Blocklist = nil
			opts.CheckAccess = false
		}

		ports, err := detection.Detect(ctx, opts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(ports) == 0 {
			_, _ = fmt.Fprintln(out, "no serial ports found")
			return nil
		}
		for _, p := range ports {
			line := p.String()
			if p.Known {
				line += " (rs485 adapter)"
			}
			_, _ = fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	portsCmd.Flags().BoolVar(&portsAll, "all", false, "Include blocked and inaccessible ports")
	portsCmd.Flags().StringSliceVar(&portsIgnore, "ignore", nil, "Device paths to skip")
	rootCmd.AddCommand(portsCmd)
}
