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

// Package polling drives a control panel from a background loop
package polling

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	osdp "github.com/ZaparooProject/go-osdp"
)

// DefaultPollInterval is the refresh period of the control panel loop
const DefaultPollInterval = 20 * time.Millisecond

// Config holds the runner settings
type Config struct {
	// OnRefresh, if set, is called after every refresh pass with the lock
	// held; it must not call Runner methods
	OnRefresh    func(osdp.RefreshSummary)
	PollInterval time.Duration
}

// DefaultConfig returns the default runner configuration
func DefaultConfig() *Config {
	return &Config{PollInterval: DefaultPollInterval}
}

// Metrics tracks operational metrics of a Runner
type Metrics struct {
	RefreshCycles      int64         // Total number of refresh passes
	Boundaries         int64         // Commands completed
	Faults             int64         // Fault results, link-down repeats included
	LastRefreshLatency time.Duration // Duration of the last refresh pass
}

// Runner errors
var (
	ErrRunnerRunning    = errors.New("runner is already running")
	ErrRunnerNotRunning = errors.New("runner is not running")
)

// Runner refreshes a ControlPanel periodically. All access to the panel
// goes through the runner's lock, so application goroutines may queue
// commands with Do or SendCommand while the loop is running.
type Runner struct {
	panel      *osdp.ControlPanel
	config     *Config
	cancelFunc context.CancelFunc
	done       chan struct{}
	// Atomic counters for metrics
	refreshCycles int64
	boundaries    int64
	faults        int64
	lastLatency   int64 // in nanoseconds
	mu            sync.Mutex
	stopMutex     sync.Mutex
	running       atomic.Bool
}

// NewRunner creates a runner for panel
func NewRunner(panel *osdp.ControlPanel, config *Config) (*Runner, error) {
	if panel == nil {
		return nil, errors.New("control panel cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	return &Runner{panel: panel, config: config}, nil
}

// Start begins the refresh loop (non-blocking)
func (r *Runner) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrRunnerRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.stopMutex.Lock()
	r.cancelFunc = cancel
	r.done = done
	r.stopMutex.Unlock()

	go func() {
		defer close(done)
		defer r.running.Store(false)
		r.loop(loopCtx)
	}()
	return nil
}

// Stop ends the refresh loop and waits for it to exit
func (r *Runner) Stop() error {
	r.stopMutex.Lock()
	cancel, done := r.cancelFunc, r.done
	r.cancelFunc = nil
	r.stopMutex.Unlock()

	if cancel == nil {
		return ErrRunnerNotRunning
	}
	cancel()
	<-done
	return nil
}

// IsRunning reports whether the loop is active
func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

func (r *Runner) loop(ctx context.Context) {
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Refresh()
		case <-ctx.Done():
			return
		}
	}
}

// Refresh runs one refresh pass under the lock and records metrics
func (r *Runner) Refresh() osdp.RefreshSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	sum := r.panel.Refresh()
	atomic.StoreInt64(&r.lastLatency, time.Since(start).Nanoseconds())

	atomic.AddInt64(&r.refreshCycles, 1)
	atomic.AddInt64(&r.boundaries, int64(sum.Boundaries))
	atomic.AddInt64(&r.faults, int64(sum.Faults))

	if r.config.OnRefresh != nil {
		r.config.OnRefresh(sum)
	}
	return sum
}

// Do runs fn with exclusive access to the control panel
func (r *Runner) Do(fn func(cp *osdp.ControlPanel) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.panel)
}

// SendCommand queues cmd for the peripheral at address
func (r *Runner) SendCommand(address int, cmd osdp.Command) error {
	return r.Do(func(cp *osdp.ControlPanel) error {
		return cp.SendCommand(address, cmd)
	})
}

// GetMetrics returns current operational metrics
func (r *Runner) GetMetrics() Metrics {
	return Metrics{
		RefreshCycles:      atomic.LoadInt64(&r.refreshCycles),
		Boundaries:         atomic.LoadInt64(&r.boundaries),
		Faults:             atomic.LoadInt64(&r.faults),
		LastRefreshLatency: time.Duration(atomic.LoadInt64(&r.lastLatency)),
	}
}
