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

package transport

import (
	"errors"
	"testing"
	"time"

	osdp "github.com/ZaparooProject/go-osdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	t.Parallel()
	errBoom := errors.New("boom")

	tests := []struct {
		wantErr     error
		name        string
		results     []bool
		wantCalls   int
		wantRetries int
		maxRetries  int
	}{
		{name: "first attempt", results: []bool{false}, maxRetries: 3, wantCalls: 1},
		{name: "succeeds after retries", results: []bool{true, true, false}, maxRetries: 3, wantCalls: 3, wantRetries: 2},
		{
			name:        "retries exhausted",
			results:     []bool{true, true, true},
			maxRetries:  2,
			wantCalls:   3,
			wantRetries: 2,
			wantErr:     osdp.ErrRetriesExhausted,
		},
		{name: "permanent error", results: nil, maxRetries: 3, wantCalls: 1, wantErr: errBoom},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			calls, retries := 0, 0
			got, err := WithRetry(RetryConfig{
				MaxRetries:  tt.maxRetries,
				Description: "open",
				OnRetry: func() error {
					retries++
					return nil
				},
			}, func() (int, bool, error) {
				calls++
				if tt.results == nil {
					return 0, false, errBoom
				}
				return calls, tt.results[calls-1], nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantRetries, retries)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, got)
		})
	}
}

func TestWithRetry_ExhaustedIsRetryable(t *testing.T) {
	t.Parallel()
	_, err := WithRetry(RetryConfig{MaxRetries: 0, Port: "/dev/ttyUSB0"}, func() (struct{}, bool, error) {
		return struct{}{}, true, nil
	})
	require.Error(t, err)
	assert.True(t, osdp.IsRetryable(err))

	var te *osdp.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "retry", te.Op)
	assert.Equal(t, "/dev/ttyUSB0", te.Port)
}

func TestWithRetry_OnRetryFailed(t *testing.T) {
	t.Parallel()
	errFailed := errors.New("gave up")
	_, err := WithRetry(RetryConfig{
		MaxRetries:    1,
		OnRetryFailed: func() error { return errFailed },
	}, func() (int, bool, error) {
		return 0, true, nil
	})
	require.ErrorIs(t, err, errFailed)
}

func TestTimeoutRetry(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := TimeoutRetry(time.Second, time.Millisecond, func() (string, bool, error) {
		calls++
		return "done", calls < 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, 3, calls)

	_, err = TimeoutRetry(5*time.Millisecond, time.Millisecond, func() (string, bool, error) {
		return "", true, nil
	})
	require.ErrorIs(t, err, osdp.ErrTimeout)
}
