// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package service

import "releaseorchestrator/internal/core/errs"

// Feature: CORE_SERVICE_RESULT
// Spec: spec/core/service.md

// Result is the uniform envelope every Service API operation returns
// (spec.md §6.3: "{success, data?, error?, statusCode?}").
type Result[T any] struct {
	Success    bool
	Data       T
	Error      string
	ErrorCode  string
	StatusCode int
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data, StatusCode: 200}
}

func fail[T any](err error) Result[T] {
	var zero T
	if e, ok := asTyped(err); ok {
		return Result[T]{
			Data:       zero,
			Error:      e.Error(),
			ErrorCode:  string(e.Kind),
			StatusCode: e.StatusCode(),
		}
	}
	return Result[T]{Data: zero, Error: err.Error(), ErrorCode: string(errs.Fatal), StatusCode: 500}
}

func asTyped(err error) (*errs.Error, bool) {
	e, ok := err.(*errs.Error)
	return e, ok
}
