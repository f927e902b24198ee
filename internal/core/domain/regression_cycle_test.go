// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegressionCycle_IsActive(t *testing.T) {
	c := &RegressionCycle{Status: RegressionCycleInProgress}
	assert.True(t, c.IsActive())

	c.Status = RegressionCycleDone
	assert.False(t, c.IsActive())
}

func TestRegressionCycle_IsActive_Nil(t *testing.T) {
	var c *RegressionCycle
	assert.False(t, c.IsActive())
}

func TestNextCycleTag(t *testing.T) {
	assert.Equal(t, "v1.0.0_rc_0", NextCycleTag("1.0.0", 0))
	assert.Equal(t, "v1.0.0_rc_3", NextCycleTag("1.0.0", 3))
}
