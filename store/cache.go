/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/humaidq/labx/lab"
)

const cacheExt = ".json"

// DiskCache stores one extracted report per image content hash. Entries are
// content-addressed, so concurrent writers for the same key are harmless.
type DiskCache struct {
	dir string
}

// NewDiskCache creates the cache directory if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errDirRequired
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	return c.dir
}

func (c *DiskCache) path(imageID string) string {
	return filepath.Join(c.dir, imageID+cacheExt)
}

// Get returns the cached report for imageID. Missing, unreadable and corrupt
// entries are all reported as a miss.
func (c *DiskCache) Get(imageID string) (*lab.Report, bool) {
	if imageID == "" {
		return nil, false
	}

	data, err := os.ReadFile(c.path(imageID))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Cache read failed, ignoring", "image_id", shortID(imageID), "error", err)
		}
		return nil, false
	}

	var report lab.Report
	if err := json.Unmarshal(data, &report); err != nil {
		logger.Warn("Cache entry corrupt, ignoring", "image_id", shortID(imageID), "error", err)
		return nil, false
	}

	logger.Debug("Cache hit", "image_id", shortID(imageID))
	return &report, true
}

// Put stores report under imageID. Failures are logged and otherwise ignored.
func (c *DiskCache) Put(imageID string, report *lab.Report) {
	if err := c.put(imageID, report); err != nil {
		logger.Warn("Cache write failed", "image_id", shortID(imageID), "error", err)
		return
	}

	logger.Debug("Cached report", "image_id", shortID(imageID))
}

func (c *DiskCache) put(imageID string, report *lab.Report) error {
	if imageID == "" {
		return errImageIDRequired
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, imageID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, c.path(imageID)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move cache entry into place: %w", err)
	}

	return nil
}

func (c *DiskCache) entries() ([]string, error) {
	items, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var names []string
	for _, item := range items {
		if item.IsDir() || filepath.Ext(item.Name()) != cacheExt {
			continue
		}
		names = append(names, item.Name())
	}

	return names, nil
}

// Len returns the number of cached entries.
func (c *DiskCache) Len() (int, error) {
	names, err := c.entries()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Clear removes every cached entry and returns how many were removed.
func (c *DiskCache) Clear() (int, error) {
	names, err := c.entries()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("failed to remove cache entry %s: %w", name, err)
		}
		removed++
	}

	logger.Info("Cleared cache", "dir", c.dir, "removed", removed)
	return removed, nil
}
