/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/humaidq/labx/lab"
)

const artifactTimeLayout = "20060102T150405Z"

// ArtifactStore keeps raw model responses and validated reports on disk for
// auditing extraction results.
type ArtifactStore struct {
	dir string
	now func() time.Time
}

// NewArtifactStore creates the artifact directory if needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errDirRequired
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	return &ArtifactStore{dir: dir, now: time.Now}, nil
}

func (s *ArtifactStore) stem(imageID string) string {
	id := imageID
	if len(id) > 16 {
		id = id[:16]
	}
	return s.now().UTC().Format(artifactTimeLayout) + "_" + id
}

// SaveRawResponse writes the raw model text and, when meta is non-empty, a
// JSON sidecar. It returns the path of the response file.
func (s *ArtifactStore) SaveRawResponse(imageID, raw string, meta map[string]any) (string, error) {
	if imageID == "" {
		return "", errImageIDRequired
	}

	stem := s.stem(imageID)
	responsePath := filepath.Join(s.dir, stem+"_response.txt")

	if err := os.WriteFile(responsePath, []byte(raw), 0o600); err != nil {
		return "", fmt.Errorf("failed to write raw response: %w", err)
	}

	if len(meta) > 0 {
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal artifact metadata: %w", err)
		}

		if err := os.WriteFile(filepath.Join(s.dir, stem+"_meta.json"), data, 0o600); err != nil {
			return "", fmt.Errorf("failed to write artifact metadata: %w", err)
		}
	}

	logger.Debug("Saved raw response artifact", "image_id", shortID(imageID), "path", responsePath)
	return responsePath, nil
}

// SaveReport writes the validated report as indented JSON.
func (s *ArtifactStore) SaveReport(imageID string, report *lab.Report) (string, error) {
	if imageID == "" {
		return "", errImageIDRequired
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(s.dir, s.stem(imageID)+"_report.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write report artifact: %w", err)
	}

	logger.Debug("Saved report artifact", "image_id", shortID(imageID), "path", path)
	return path, nil
}
