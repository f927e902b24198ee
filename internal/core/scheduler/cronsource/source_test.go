// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package cronsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_KeepsExpression(t *testing.T) {
	s := New("*/5 * * * *")
	assert.Equal(t, "*/5 * * * *", s.expr)
}

func TestSource_StartReturnsUsableChannelAndStopIsIdempotentSafe(t *testing.T) {
	s := New("* * * * *")
	out := s.Start()
	require.NotNil(t, out)
	assert.NotNil(t, s.cron, "Start must initialize the underlying cron.Cron")

	s.Stop()
}

func TestSource_StopWithoutStartIsNoop(t *testing.T) {
	s := New("* * * * *")
	assert.NotPanics(t, func() { s.Stop() })
}
