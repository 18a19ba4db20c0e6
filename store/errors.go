/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package store

import "errors"

var (
	errDirRequired     = errors.New("store directory is required")
	errImageIDRequired = errors.New("image id is required")
)
