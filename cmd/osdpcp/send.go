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
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	osdp "github.com/ZaparooProject/go-osdp"
	"github.com/ZaparooProject/go-osdp/internal/transport"
	"github.com/spf13/cobra"
)

// Output control codes
const (
	outputPermanentOff = 0x01
	outputPermanentOn  = 0x02
	outputTemporaryOn  = 0x05
)

var sendFlags struct {
	text       string
	duration   time.Duration
	address    int
	reader     int
	led        int
	color      int
	output     int
	newAddress int
	newBaud    int
	on         bool
}

var sendKinds = []string{"id", "cap", "lstat", "rstat", "poll", "led", "buzzer", "output", "text", "comset"}

var sendCmd = &cobra.Command{
	Use:       "send <" + strings.Join(sendKinds, "|") + ">",
	Short:     "Send one command to a peripheral and print the result",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: sendKinds,
	RunE:      runSend,
}

func init() {
	f := sendCmd.Flags()
	f.IntVarP(&sendFlags.address, "address", "a", 0, "Peripheral address (0-126)")
	f.IntVar(&sendFlags.reader, "reader", 0, "Reader number")
	f.IntVar(&sendFlags.led, "led", 0, "LED number (led)")
	f.IntVar(&sendFlags.color, "color", 2, "LED color code: 0 black, 1 red, 2 green, 3 amber, 4 blue (led)")
	f.IntVar(&sendFlags.output, "output", 0, "Output number (output)")
	f.BoolVar(&sendFlags.on, "on", true, "Switch the output on or off (output)")
	f.DurationVar(&sendFlags.duration, "duration", 0, "Pulse the output for this long (output)")
	f.StringVar(&sendFlags.text, "text", "", "Text to display (text)")
	f.IntVar(&sendFlags.newAddress, "new-address", -1, "New peripheral address (comset)")
	f.IntVar(&sendFlags.newBaud, "new-baud", 0, "New baud rate (comset)")
	rootCmd.AddCommand(sendCmd)
}

// buildCommand maps a command kind and the send flags to a Command
func buildCommand(kind string) (osdp.Command, error) {
	fl := sendFlags
	switch kind {
	case "id":
		return osdp.IDReport{}, nil
	case "cap":
		return osdp.CapabilitiesReport{}, nil
	case "lstat":
		return osdp.LocalStatusQuery{}, nil
	case "rstat":
		return osdp.ReaderStatusQuery{}, nil
	case "poll":
		return osdp.Poll{}, nil
	case "led":
		return osdp.LEDControl{
			Reader: byte(fl.reader),
			LED:    byte(fl.led),
			Permanent: osdp.LEDPermanent{
				ControlCode: 0x01,
				OnCount:     1,
				OnColor:     byte(fl.color),
			},
		}, nil
	case "buzzer":
		return osdp.BuzzerControl{
			Reader:      byte(fl.reader),
			ToneCode:    0x02,
			OnCount:     5,
			OffCount:    5,
			RepeatCount: 1,
		}, nil
	case "output":
		cmd := osdp.OutputControl{Output: byte(fl.output), ControlCode: outputPermanentOff}
		switch {
		case fl.duration > 0:
			cmd.ControlCode = outputTemporaryOn
			cmd.Timer = uint16(min(fl.duration/(100*time.Millisecond), 0xFFFF)) //nolint:gosec // clamped
		case fl.on:
			cmd.ControlCode = outputPermanentOn
		}
		return cmd, nil
	case "text":
		if fl.text == "" {
			return nil, fmt.Errorf("%w: --text is required", osdp.ErrInvalidParameter)
		}
		return osdp.TextOutput{
			Reader:  byte(fl.reader),
			Command: 0x01,
			Row:     1,
			Column:  1,
			Text:    []byte(fl.text),
		}, nil
	case "comset":
		if fl.newAddress < 0 || fl.newAddress > 0x7E {
			return nil, fmt.Errorf("%w: --new-address must be 0-126", osdp.ErrInvalidParameter)
		}
		if fl.newBaud <= 0 {
			return nil, fmt.Errorf("%w: --new-baud is required", osdp.ErrInvalidParameter)
		}
		return osdp.CommSet{Address: byte(fl.newAddress), BaudRate: uint32(fl.newBaud)}, nil //nolint:gosec // positive
	}
	return nil, fmt.Errorf("%w: unknown command %q", osdp.ErrInvalidParameter, kind)
}

func runSend(cmd *cobra.Command, args []string) error {
	command, err := buildCommand(args[0])
	if err != nil {
		return err
	}

	t, err := openTransport(cmd.Context(), connectionFlags())
	if err != nil {
		return err
	}
	defer func() { _ = t.Close() }()

	out := cmd.OutOrStdout()
	opts := append(eventOptions(out), osdp.WithResponseTimeout(timeout))
	pd, err := osdp.NewPeripheral(sendFlags.address, t, opts...)
	if err != nil {
		return err
	}
	panel, err := osdp.NewControlPanel([]*osdp.Peripheral{pd})
	if err != nil {
		return err
	}
	if err := panel.SendCommand(pd.Address(), command); err != nil {
		return err
	}

	// the link reports its own timeout; the outer bound only guards a
	// transport that never fails
	_, err = transport.TimeoutRetry(2*timeout, time.Millisecond, func() (osdp.RefreshSummary, bool, error) {
		sum := panel.Refresh()
		switch {
		case sum.Faults > 0:
			return sum, false, panel.LastError(pd.Address())
		case sum.Boundaries > 0:
			return sum, false, nil
		}
		return sum, true, nil
	})
	if err != nil {
		return fmt.Errorf("%s to pd %d: %w", command.Code(), pd.Address(), err)
	}

	printResult(out, pd, command.Code())
	return nil
}

func printResult(w io.Writer, pd *osdp.Peripheral, id osdp.CommandID) {
	if nak := pd.LastNAK(); nak != 0 {
		_, _ = fmt.Fprintf(w, "pd %d: NAK %s\n", pd.Address(), nak)
		return
	}

	switch id {
	case osdp.CmdID:
		printID(w, pd)
	case osdp.CmdCap:
		caps := pd.Capabilities()
		codes := make([]osdp.CapabilityCode, 0, len(caps))
		for code := range caps {
			codes = append(codes, code)
		}
		slices.Sort(codes)
		for _, code := range codes {
			c := caps[code]
			_, _ = fmt.Fprintf(w, "%-32s compliance=%d items=%d\n", code, c.ComplianceLevel, c.NumItems)
		}
	case osdp.CmdLStat:
		_, _ = fmt.Fprintf(w, "pd %d: tamper=%t power=%t\n", pd.Address(), pd.Tamper(), pd.Power())
	case osdp.CmdRStat:
		_, _ = fmt.Fprintf(w, "pd %d: reader tamper=%t\n", pd.Address(), pd.ReaderTamper())
	case osdp.CmdComSet:
		_, _ = fmt.Fprintf(w, "pd %d: now at %d baud\n", pd.Address(), pd.BaudRate())
	default:
		_, _ = fmt.Fprintf(w, "pd %d: %s acknowledged\n", pd.Address(), id)
	}
}

func printID(w io.Writer, pd *osdp.Peripheral) {
	id := pd.ID()
	_, _ = fmt.Fprintf(w, "pd %d: vendor=%06X model=%d version=%d serial=%08X firmware=%d.%d.%d\n",
		pd.Address(), id.VendorCode, id.Model, id.Version, id.SerialNumber,
		id.FirmwareVersion>>16, (id.FirmwareVersion>>8)&0xFF, id.FirmwareVersion&0xFF)
}
