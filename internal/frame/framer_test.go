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

package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCRC(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{
			name: "check string",
			data: []byte("123456789"),
			want: 0xE5CC,
		},
		{
			name: "empty data",
			data: []byte{},
			want: 0x1D0F,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CalculateCRC(tt.data))
		})
	}
}

func TestValidateCRC(t *testing.T) {
	t.Parallel()
	pkt := BuildReply(0x01, 0, []byte{0x40})
	assert.True(t, ValidateCRC(pkt))

	corrupted := append([]byte(nil), pkt...)
	corrupted[5] ^= 0xFF
	assert.False(t, ValidateCRC(corrupted))

	assert.False(t, ValidateCRC([]byte{0x01}))
}

func TestFramer_BuildPacket(t *testing.T) {
	t.Parallel()
	f := New(0x05)
	buf := make([]byte, 64)

	n, err := f.BuildHead(buf)
	require.NoError(t, err)
	require.Equal(t, HeaderLength, n)

	buf[n] = 0x60 // POLL
	total, err := f.BuildTail(buf, n+1)
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	assert.Equal(t, []byte{SOM, 0x05, 0x08, 0x00, CtrlCRC, 0x60}, buf[:6])
	assert.True(t, ValidateCRC(buf[:total]))

	addr, seq, payload, err := ParseCommandPacket(buf[:total])
	require.NoError(t, err)
	assert.Equal(t, byte(0x05), addr)
	assert.Equal(t, byte(0), seq)
	assert.Equal(t, []byte{0x60}, payload)
}

func TestFramer_BuildErrors(t *testing.T) {
	t.Parallel()
	f := New(0x01)

	_, err := f.BuildHead(make([]byte, 3))
	require.ErrorIs(t, err, ErrBufferTooSmall)

	buf := make([]byte, 6)
	n, err := f.BuildHead(buf)
	require.NoError(t, err)
	_, err = f.BuildTail(buf, n+1)
	require.ErrorIs(t, err, ErrBufferTooSmall)

	_, err = f.BuildTail(buf, 2)
	require.ErrorIs(t, err, ErrBadLength)
}

func TestFramer_DecodePacket(t *testing.T) {
	t.Parallel()
	good := BuildReply(0x01, 0, []byte{0x40})

	badCRC := append([]byte(nil), good...)
	badCRC[len(badCRC)-1] ^= 0x01

	tests := []struct {
		wantErr error
		name    string
		buf     []byte
		want    []byte
	}{
		{name: "ack", buf: good, want: []byte{0x40}},
		{name: "empty", buf: nil, wantErr: ErrIncomplete},
		{name: "header only", buf: good[:4], wantErr: ErrIncomplete},
		{name: "missing trailer", buf: good[:len(good)-1], wantErr: ErrIncomplete},
		{name: "bad SOM", buf: []byte{0xFF, 0x81}, wantErr: ErrBadSOM},
		{name: "wrong address", buf: BuildReply(0x02, 0, []byte{0x40}), wantErr: ErrBadAddress},
		{name: "bad crc", buf: badCRC, wantErr: ErrBadCRC},
		{name: "wrong sequence", buf: BuildReply(0x01, 2, []byte{0x40}), wantErr: ErrBadSequence},
		{name: "short length field", buf: []byte{SOM, 0x81, 0x03, 0x00, CtrlCRC, 0x00, 0x00}, wantErr: ErrBadLength},
		{name: "secure channel", buf: []byte{SOM, 0x81, 0x08, 0x00, CtrlCRC | CtrlSCB, 0x40, 0, 0}, wantErr: ErrSecureChannel},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			payload, err := New(0x01).DecodePacket(tt.buf)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, payload)
		})
	}
}

func TestFramer_SequenceAdvance(t *testing.T) {
	t.Parallel()
	f := New(0x01)

	_, err := f.DecodePacket(BuildReply(0x01, 0, []byte{0x40}))
	require.NoError(t, err)
	assert.Equal(t, byte(1), f.Sequence())

	// busy replies keep the sequence so the same packet goes out again
	_, err = f.DecodePacket(BuildReply(0x01, 1, []byte{0x79}))
	require.NoError(t, err)
	assert.Equal(t, byte(1), f.Sequence())

	for _, want := range []byte{2, 3, 1} {
		_, err = f.DecodePacket(BuildReply(0x01, f.Sequence(), []byte{0x40}))
		require.NoError(t, err)
		assert.Equal(t, want, f.Sequence())
	}

	f.Reset()
	assert.Equal(t, byte(0), f.Sequence())
}
