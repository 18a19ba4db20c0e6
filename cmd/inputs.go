/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/humaidq/labx/pipeline"
)

// expandInputs replaces every directory argument with the supported images
// directly inside it, sorted by name. Other arguments are kept as given so
// missing files are reported by the pipeline.
func expandInputs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errNoInputs
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}

		var found []string
		for _, e := range entries {
			if e.IsDir() || !pipeline.SupportedExtension(e.Name()) {
				continue
			}
			found = append(found, filepath.Join(arg, e.Name()))
		}
		slices.Sort(found)

		if len(found) == 0 {
			appLogger.Warn("Directory has no supported images", "dir", arg)
		}
		paths = append(paths, found...)
	}

	if len(paths) == 0 {
		return nil, errNoImagesInInput
	}

	return paths, nil
}
