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

// Package websocket provides a transport that reaches an RS-485 bus
// through a network bridge exchanging binary WebSocket messages
package websocket

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	osdp "github.com/ZaparooProject/go-osdp"
	gws "github.com/gorilla/websocket"
)

// ErrConnectionClosed is returned once the bridge connection has failed
var ErrConnectionClosed = errors.New("websocket connection closed")

const handshakeTimeout = 10 * time.Second

// DialOptions configures the bridge connection
type DialOptions struct {
	Username      string
	Password      string
	SkipTLSVerify bool
}

// Transport implements osdp.Transport over a WebSocket. A background
// reader buffers incoming binary messages so Receive never blocks.
type Transport struct {
	conn    *gws.Conn
	readErr error
	done    chan struct{}
	url     string
	buf     []byte
	mu      sync.Mutex
	writeMu sync.Mutex
}

// Dial connects to the bridge at wsURL (ws:// or wss://)
func Dial(ctx context.Context, wsURL string, opts DialOptions) (*Transport, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL: %w", osdp.ErrInvalidParameter, err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("%w: unsupported URL scheme %q (use ws:// or wss://)", osdp.ErrInvalidParameter, u.Scheme)
	}

	dialer := gws.Dialer{HandshakeTimeout: handshakeTimeout}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: opts.SkipTLSVerify, //nolint:gosec // opt-in for bridges with self-signed certs
		}
	}

	headers := http.Header{}
	if opts.Username != "" && opts.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(opts.Username + ":" + opts.Password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, osdp.NewTransportError("dial", wsURL,
				fmt.Errorf("HTTP %d: %w", resp.StatusCode, err), osdp.ErrorTypePermanent)
		}
		return nil, osdp.NewTransportError("dial", wsURL, err, osdp.ErrorTypeTransient)
	}

	return New(conn, wsURL), nil
}

// New wraps an established connection and starts its reader
func New(conn *gws.Conn, name string) *Transport {
	t := &Transport{
		conn: conn,
		url:  name,
		done: make(chan struct{}),
	}
	go t.readLoop()
	return t
}

func (t *Transport) readLoop() {
	defer close(t.done)
	for {
		messageType, data, err := t.conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			t.readErr = fmt.Errorf("%w: %w", ErrConnectionClosed, err)
			t.mu.Unlock()
			return
		}
		if messageType != gws.BinaryMessage {
			continue
		}
		t.mu.Lock()
		t.buf = append(t.buf, data...)
		t.mu.Unlock()
	}
}

// Send writes p as one binary message
func (t *Transport) Send(p []byte) (int, error) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.WriteMessage(gws.BinaryMessage, p); err != nil {
		return 0, fmt.Errorf("write %s: %w", t.url, err)
	}
	return len(p), nil
}

// Receive drains buffered bytes. Buffered data is returned before a
// connection error is reported.
func (t *Transport) Receive(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.buf) == 0 {
		return 0, t.readErr
	}
	n := copy(p, t.buf)
	t.buf = t.buf[n:]
	return n, nil
}

// Close closes the connection and waits for the reader to exit
func (t *Transport) Close() error {
	t.writeMu.Lock()
	_ = t.conn.WriteControl(gws.CloseMessage,
		gws.FormatCloseMessage(gws.CloseNormalClosure, ""), time.Now().Add(time.Second))
	t.writeMu.Unlock()

	err := t.conn.Close()
	<-t.done
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", t.url, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() osdp.TransportType {
	return osdp.TransportWebSocket
}

// String returns the bridge URL
func (t *Transport) String() string {
	return t.url
}
