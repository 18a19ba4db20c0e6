/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import "errors"

var (
	errNoInputs        = errors.New("at least one image file or directory is required")
	errNoImagesInInput = errors.New("no supported images found")
)
