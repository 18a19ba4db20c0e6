/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errInvalidSummaryParam = errors.New("summary must be true or false")
	errReadUpload          = errors.New("failed to read uploaded file")
)
