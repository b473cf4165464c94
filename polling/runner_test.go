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

package polling

import (
	"context"
	"testing"
	"time"

	osdp "github.com/ZaparooProject/go-osdp"
	testutil "github.com/ZaparooProject/go-osdp/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestPanel creates a control panel with one simulated peripheral
func createTestPanel(t *testing.T) (*osdp.ControlPanel, *testutil.Simulator) {
	t.Helper()
	sim := testutil.NewSimulator(0x01)
	pd, err := osdp.NewPeripheral(1, osdp.NewMockTransportWithFunc(sim.Respond))
	require.NoError(t, err)
	cp, err := osdp.NewControlPanel([]*osdp.Peripheral{pd})
	require.NoError(t, err)
	return cp, sim
}

func TestNewRunner(t *testing.T) {
	t.Parallel()

	t.Run("NilPanel", func(t *testing.T) {
		t.Parallel()
		_, err := NewRunner(nil, nil)
		require.Error(t, err)
	})

	t.Run("WithDefaultConfig", func(t *testing.T) {
		t.Parallel()
		cp, _ := createTestPanel(t)
		runner, err := NewRunner(cp, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultPollInterval, runner.config.PollInterval)
		assert.False(t, runner.IsRunning())
	})

	t.Run("ZeroIntervalUsesDefault", func(t *testing.T) {
		t.Parallel()
		cp, _ := createTestPanel(t)
		runner, err := NewRunner(cp, &Config{})
		require.NoError(t, err)
		assert.Equal(t, DefaultPollInterval, runner.config.PollInterval)
	})
}

func TestRunner_StartStop(t *testing.T) {
	t.Parallel()
	cp, _ := createTestPanel(t)
	runner, err := NewRunner(cp, &Config{PollInterval: time.Millisecond})
	require.NoError(t, err)

	require.ErrorIs(t, runner.Stop(), ErrRunnerNotRunning)

	require.NoError(t, runner.Start(context.Background()))
	require.ErrorIs(t, runner.Start(context.Background()), ErrRunnerRunning)
	assert.True(t, runner.IsRunning())

	require.NoError(t, runner.Stop())
	assert.False(t, runner.IsRunning())
	require.ErrorIs(t, runner.Stop(), ErrRunnerNotRunning)
}

func TestRunner_CompletesCommands(t *testing.T) {
	t.Parallel()
	cp, sim := createTestPanel(t)
	sim.SetReply(0x64, testutil.BuildLocalStatusResponse(true, true))

	runner, err := NewRunner(cp, &Config{PollInterval: time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, runner.Start(context.Background()))
	defer func() {
		if stopErr := runner.Stop(); stopErr != nil {
			t.Errorf("Failed to stop runner: %v", stopErr)
		}
	}()

	require.NoError(t, runner.SendCommand(1, osdp.LocalStatusQuery{}))

	assert.Eventually(t, func() bool {
		return runner.GetMetrics().Boundaries >= 1
	}, time.Second, time.Millisecond)

	var tamper bool
	require.NoError(t, runner.Do(func(cp *osdp.ControlPanel) error {
		pd, err := cp.Peripheral(1)
		if err != nil {
			return err
		}
		tamper = pd.Tamper()
		return nil
	}))
	assert.True(t, tamper)

	metrics := runner.GetMetrics()
	assert.Positive(t, metrics.RefreshCycles)
	assert.Zero(t, metrics.Faults)
}

func TestRunner_ContextCancelStopsLoop(t *testing.T) {
	t.Parallel()
	cp, _ := createTestPanel(t)
	runner, err := NewRunner(cp, &Config{PollInterval: time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, runner.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool {
		return !runner.IsRunning()
	}, time.Second, time.Millisecond)
	require.NoError(t, runner.Stop())
}

func TestRunner_RefreshCallback(t *testing.T) {
	t.Parallel()
	cp, _ := createTestPanel(t)

	var summaries []osdp.RefreshSummary
	runner, err := NewRunner(cp, &Config{
		PollInterval: time.Hour,
		OnRefresh: func(sum osdp.RefreshSummary) {
			summaries = append(summaries, sum)
		},
	})
	require.NoError(t, err)

	require.ErrorIs(t, runner.SendCommand(7, osdp.Poll{}), osdp.ErrPeripheralNotFound)
	require.NoError(t, runner.SendCommand(1, osdp.Poll{}))

	runner.Refresh()
	runner.Refresh()
	runner.Refresh()

	require.Len(t, summaries, 3)
	assert.Equal(t, osdp.RefreshSummary{InProgress: 1}, summaries[0])
	assert.Equal(t, osdp.RefreshSummary{Boundaries: 1}, summaries[1])
	assert.Equal(t, osdp.RefreshSummary{Idle: 1}, summaries[2])
	assert.Equal(t, int64(3), runner.GetMetrics().RefreshCycles)
}
