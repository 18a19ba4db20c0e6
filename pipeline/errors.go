/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package pipeline

import (
	"errors"
	"fmt"
)

var (
	errExtractorRequired  = errors.New("pipeline requires an extractor")
	errSummarizerRequired = errors.New("summary requested but no summarizer is configured")
	errNilReport          = errors.New("extractor returned no report")
)

// ValidationError reports an image rejected before extraction.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "image validation failed: " + e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
