/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package logging

import "errors"

// ErrUnknownFormat is returned by SetFormat for unsupported formats.
var ErrUnknownFormat = errors.New("unknown log format")
