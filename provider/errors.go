/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package provider

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmptyResponse = errors.New("model returned an empty response")
	ErrNoJSON        = errors.New("no JSON object found in model response")
	errModelRequired = errors.New("model is required")
)

// retryableStatuses are the HTTP codes worth another attempt.
var retryableStatuses = []int{429, 500, 502, 503, 529}

// StatusError is a non-200 response from the completion endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the status is transient.
func (e *StatusError) Retryable() bool {
	return slices.Contains(retryableStatuses, e.Code)
}
