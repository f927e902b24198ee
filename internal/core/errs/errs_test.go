// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_ErrorString(t *testing.T) {
	err := New(Validation, "RELEASE_001", "tenantId is required")
	assert.Equal(t, "RELEASE_001: tenantId is required", err.Error())
}

func TestWrap_ErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ProviderFailure, "PROV_001", "github request failed", cause)
	assert.Equal(t, "PROV_001: github request failed: connection refused", err.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Fatal, "FATAL_001", "unrecoverable", cause)
	assert.ErrorIs(t, err, cause)
}

func TestError_StatusCode(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Validation, 400},
		{NotFound, 404},
		{Conflict, 400},
		{LeaseContention, 409},
		{ProviderFailure, 502},
		{Corruption, 500},
		{Fatal, 500},
	}
	for _, tc := range cases {
		err := New(tc.kind, "CODE", "msg")
		assert.Equal(t, tc.want, err.StatusCode(), "kind %s", tc.kind)
	}
}

func TestIsKind(t *testing.T) {
	err := New(NotFound, "NOT_FOUND_001", "release not found")
	assert.True(t, IsKind(err, NotFound))
	assert.False(t, IsKind(err, Conflict))
}

func TestIsKind_NonTypedError(t *testing.T) {
	assert.False(t, IsKind(errors.New("plain error"), Validation))
}
