/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package store

import "github.com/humaidq/labx/logging"

var logger = logging.Logger(logging.SourceStore)

// shortID trims an image hash for log output.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
