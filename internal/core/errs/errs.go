// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package errs defines the error taxonomy consumed by the Service API and
// the orchestrator (spec.md §7), generalized from the teacher's
// sentinel-error style in pkg/providers/*/registry.go (ErrUnknownProvider,
// ErrDuplicateProvider, ErrEmptyProviderID) into a typed Kind.
package errs

import "fmt"

// Kind is one of the seven error kinds named in spec.md §7.
type Kind string

const (
	Validation      Kind = "VALIDATION"
	NotFound        Kind = "NOT_FOUND"
	Conflict        Kind = "CONFLICT"
	LeaseContention Kind = "LEASE_CONTENTION"
	ProviderFailure Kind = "PROVIDER_FAILURE"
	Corruption      Kind = "CORRUPTION"
	Fatal           Kind = "FATAL"
)

// statusCodeByKind maps each kind to the HTTP-shaped status code the
// Service API surfaces in Result.StatusCode (spec.md §6.3, §7).
var statusCodeByKind = map[Kind]int{
	Validation:      400,
	NotFound:        404,
	Conflict:        400,
	LeaseContention: 409,
	ProviderFailure: 502,
	Corruption:      500,
	Fatal:           500,
}

// Error is a typed, stable error the Service API can render without
// leaking internal detail.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows errors.Is/As to see through to the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// StatusCode returns the HTTP-shaped status code for this error's kind.
func (e *Error) StatusCode() int {
	return statusCodeByKind[e.Kind]
}

// New builds a typed Error with no wrapped cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap builds a typed Error wrapping an underlying cause.
func Wrap(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, cause: cause}
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		return false
	}
	return e.Kind == kind
}
