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
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	osdp "github.com/ZaparooProject/go-osdp"
	"github.com/ZaparooProject/go-osdp/internal/config"
	"github.com/ZaparooProject/go-osdp/polling"
	"github.com/spf13/cobra"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the peripherals of a configuration file and print their events",
	RunE:  runPanel,
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "Control panel configuration file")
	_ = runCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(runCmd)
}

// eventOptions prints keypad and card events to w
func eventOptions(w io.Writer) []osdp.Option {
	return []osdp.Option{
		osdp.WithKeypressHandler(func(address int, key byte) {
			_, _ = fmt.Fprintf(w, "pd %d: key %q\n", address, rune(key))
		}),
		osdp.WithCardReadHandler(func(address int, format osdp.CardFormat, data []byte, length int) {
			if format == osdp.CardFormatASCII {
				_, _ = fmt.Fprintf(w, "pd %d: card %q\n", address, data)
				return
			}
			_, _ = fmt.Fprintf(w, "pd %d: card %s %d bits % X\n", address, format, length, data)
		}),
	}
}

func runPanel(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cpCfg := cfg.ControlPanel

	// connection flags override the file
	tc := cpCfg.Transport
	if portName != "" || wsURL != "" {
		tc = connectionFlags()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t, err := openTransport(ctx, tc)
	if err != nil {
		return err
	}
	defer func() { _ = t.Close() }()

	out := cmd.OutOrStdout()
	panel, err := osdp.NewControlPanel(nil,
		osdp.WithIdlePoll(true),
		osdp.WithAutoRecover(cpCfg.Recover()))
	if err != nil {
		return err
	}
	names := make(map[int]string, len(cpCfg.Peripherals))
	for _, pc := range cpCfg.Peripherals {
		opts := append(eventOptions(out),
			osdp.WithResponseTimeout(cpCfg.ResponseTimeout()),
			osdp.WithQueueSize(cpCfg.QueueSize))
		pd, err := osdp.NewPeripheral(pc.Address, t, opts...)
		if err != nil {
			return fmt.Errorf("peripheral %q: %w", pc.Name, err)
		}
		if err := panel.Add(pd); err != nil {
			return fmt.Errorf("peripheral %q: %w", pc.Name, err)
		}
		// identify the peripheral before polling starts
		if err := errors.Join(pd.Enqueue(osdp.IDReport{}), pd.Enqueue(osdp.CapabilitiesReport{})); err != nil {
			return fmt.Errorf("peripheral %q: %w", pc.Name, err)
		}
		names[pc.Address] = pc.Name
	}

	monitor := newLinkMonitor(panel, names, out)
	runner, err := polling.NewRunner(panel, &polling.Config{
		PollInterval: cpCfg.PollInterval(),
		OnRefresh:    func(osdp.RefreshSummary) { monitor.check() },
	})
	if err != nil {
		return err
	}
	if err := runner.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	if err := runner.Stop(); err != nil && !errors.Is(err, polling.ErrRunnerNotRunning) {
		return err
	}

	m := runner.GetMetrics()
	_, _ = fmt.Fprintf(out, "%d refresh cycles, %d commands, %d faults\n", m.RefreshCycles, m.Boundaries, m.Faults)
	return nil
}

// linkMonitor prints identity and fault changes. check runs inside the
// runner's refresh, so it may read the panel directly.
type linkMonitor struct {
	panel      *osdp.ControlPanel
	names      map[int]string
	lastErr    map[int]error
	identified map[int]bool
	out        io.Writer
}

func newLinkMonitor(panel *osdp.ControlPanel, names map[int]string, out io.Writer) *linkMonitor {
	return &linkMonitor{
		panel:      panel,
		names:      names,
		lastErr:    make(map[int]error),
		identified: make(map[int]bool),
		out:        out,
	}
}

func (m *linkMonitor) check() {
	for _, addr := range m.panel.Addresses() {
		pd, err := m.panel.Peripheral(addr)
		if err != nil {
			continue
		}
		if !m.identified[addr] && pd.ID() != (osdp.PDID{}) {
			m.identified[addr] = true
			_, _ = fmt.Fprintf(m.out, "%s: ", m.names[addr])
			printID(m.out, pd)
		}

		err = m.panel.LastError(addr)
		if err != nil && !errors.Is(err, m.lastErr[addr]) {
			_, _ = fmt.Fprintf(m.out, "%s: pd %d link fault: %v\n", m.names[addr], addr, err)
		}
		m.lastErr[addr] = err
	}
}

