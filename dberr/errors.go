// Copyright 2026 The Databank Authors
// This file is part of Databank.
//
// Databank is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Databank is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Databank. If not, see <http://www.gnu.org/licenses/>.

// Package dberr defines the closed failure taxonomy shared by every
// databank package, wrapped with github.com/pkg/errors so call sites retain
// a stack trace on the underlying cause.
package dberr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind discriminates the closed set of failure categories.
type Kind uint8

const (
	KindVectorWidthMismatch Kind = iota
	KindBankFull
	KindEntryNotFound
	KindEdgeLimitReached
	KindBankNotFound
	KindIo
	KindCodec
	KindChecksumMismatch
)

func (k Kind) String() string {
	switch k {
	case KindVectorWidthMismatch:
		return "VectorWidthMismatch"
	case KindBankFull:
		return "BankFull"
	case KindEntryNotFound:
		return "EntryNotFound"
	case KindEdgeLimitReached:
		return "EdgeLimitReached"
	case KindBankNotFound:
		return "BankNotFound"
	case KindIo:
		return "Io"
	case KindCodec:
		return "Codec"
	case KindChecksumMismatch:
		return "ChecksumMismatch"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Error is the single error type returned by every databank package. It
// carries a closed Kind plus whatever structured detail that kind needs.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause, if any, for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target shares this error's Kind, so callers can write
// errors.Is(err, dberr.New(dberr.KindEntryNotFound, "")).
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == te.Kind
}

// New constructs an Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind, annotating cause with a
// pkg/errors stack trace.
func Wrap(kind Kind, message string, cause error) *Error {
	if cause == nil {
		return New(kind, message)
	}
	return &Error{Kind: kind, Message: message, cause: errors.WithStack(cause)}
}

// VectorWidthMismatch reports a vector whose length does not match a bank's
// configured width.
func VectorWidthMismatch(expected, got int) *Error {
	return New(KindVectorWidthMismatch, fmt.Sprintf("expected width %d, got %d", expected, got))
}

// BankFull reports that a bank could not accept an insert even after
// eviction.
func BankFull(capacity uint32) *Error {
	return New(KindBankFull, fmt.Sprintf("capacity %d exhausted", capacity))
}

// EntryNotFound reports that an operation named an absent entry.
func EntryNotFound(id fmt.Stringer) *Error {
	return New(KindEntryNotFound, fmt.Sprintf("entry %s not found", id))
}

// EdgeLimitReached reports that an entry already holds the maximum
// configured edge count.
func EdgeLimitReached(max uint16) *Error {
	return New(KindEdgeLimitReached, fmt.Sprintf("edge limit %d reached", max))
}

// BankNotFound reports that a cluster operation named an absent bank.
func BankNotFound(id fmt.Stringer) *Error {
	return New(KindBankNotFound, fmt.Sprintf("bank %s not found", id))
}

// Io wraps an underlying filesystem error.
func Io(context string, cause error) *Error {
	return Wrap(KindIo, context, cause)
}

// Codec reports malformed, truncated, or version-mismatched binary data.
func Codec(message string) *Error {
	return New(KindCodec, message)
}

// ChecksumMismatch reports that a decoded snapshot's content hash did not
// match its header.
func ChecksumMismatch(expected, actual uint64) *Error {
	return New(KindChecksumMismatch, fmt.Sprintf("expected %016x, got %016x", expected, actual))
}

// Is is a convenience wrapper around errors.Is for the common case of
// testing a Kind without constructing a throwaway Error.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
