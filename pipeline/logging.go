/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package pipeline

import "github.com/humaidq/labx/logging"

var logger = logging.Logger(logging.SourcePipeline)
