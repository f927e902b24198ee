// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_UsesDefaultPeriodWhenNonPositive(t *testing.T) {
	tk := New(0)
	assert.Equal(t, DefaultPeriod, tk.period)

	tk = New(-time.Second)
	assert.Equal(t, DefaultPeriod, tk.period)
}

func TestNew_KeepsExplicitPeriod(t *testing.T) {
	tk := New(5 * time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, tk.period)
}

func TestTicker_DeliversTicks(t *testing.T) {
	tk := New(5 * time.Millisecond)
	out := tk.Start()
	defer tk.Stop()

	select {
	case <-out:
	case <-time.After(time.Second):
		t.Fatal("expected a tick within the timeout")
	}
}

func TestTicker_StopClosesDone(t *testing.T) {
	tk := New(5 * time.Millisecond)
	tk.Start()
	tk.Stop()

	_, open := <-tk.done
	assert.False(t, open, "done channel must be closed after Stop")
}
