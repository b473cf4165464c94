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
	"errors"
	"fmt"
)

// Queue errors.
var (
	ErrQueueFull      = errors.New("command queue full")
	ErrQueueCollision = errors.New("command queue index collision")
	ErrBufferTooSmall = errors.New("buffer too small")
)

// Codec errors.
var (
	ErrCommandFormat      = errors.New("command format error")
	ErrObsoleteCommand    = errors.New("command is obsolete")
	ErrUnsupportedCommand = errors.New("command not supported")
	ErrMalformedReply     = errors.New("malformed reply")
)

// Link and transport errors.
var (
	ErrTimeout             = errors.New("response timeout")
	ErrTransportWrite      = errors.New("transport write failed")
	ErrTransportRead       = errors.New("transport read failed")
	ErrPacketDecode        = errors.New("packet decode failed")
	ErrLinkDown            = errors.New("link in error state")
	ErrPeripheralNotFound  = errors.New("peripheral not found")
	ErrDuplicatePeripheral = errors.New("duplicate peripheral address")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrRetriesExhausted    = errors.New("retries exhausted")
)

// ErrorType categorizes errors for recovery decisions by the owning loop
type ErrorType int

const (
	// ErrorTypePermanent errors will not resolve by re-arming the link
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors may resolve on a later exchange
	ErrorTypeTransient
	// ErrorTypeTimeout indicates the peripheral did not answer in time
	ErrorTypeTimeout
)

// String returns the name of the error type
func (t ErrorType) String() string {
	switch t {
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// TransportError wraps failures of the framing or transport collaborators
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError; retryability follows the type
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a retryable timeout error
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTimeout, ErrorTypeTimeout)
}

// FormatError reports a logical command that cannot be encoded.
// It is a programming error: the command is never sent.
type FormatError struct {
	Err     error
	Reason  string
	Command CommandID
}

func (e *FormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("command %s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %s: %v: %s", e.Command, e.Err, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func newFormatError(id CommandID, err error, format string, args ...any) *FormatError {
	return &FormatError{Command: id, Err: err, Reason: fmt.Sprintf(format, args...)}
}

// ReplyError reports a reply the peripheral sent that could not be parsed
type ReplyError struct {
	Reason string
	Reply  ReplyID
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("reply %s: %s", e.Reply, e.Reason)
}

func (e *ReplyError) Unwrap() error {
	return ErrMalformedReply
}

func newReplyError(id ReplyID, format string, args ...any) *ReplyError {
	return &ReplyError{Reply: id, Reason: fmt.Sprintf(format, args...)}
}

// IsRetryable reports whether the owning loop may re-arm the link after err
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrPacketDecode):
		return true
	default:
		return false
	}
}

// GetErrorType returns the ErrorType for err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrPacketDecode):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
