/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/flamego/flamego"

	"github.com/humaidq/labx/config"
	"github.com/humaidq/labx/pipeline"
)

const (
	uploadField     = "files"
	multipartMemory = 32 << 20
)

// UploadBodyLimit is the largest request body accepted for cfg: every image
// at its size limit plus room for the form itself.
func UploadBodyLimit(cfg config.Config) int64 {
	return int64(cfg.MaxImages)*cfg.MaxImageBytes() + 1<<20
}

// readUploads parses the multipart form and validates every uploaded image.
func readUploads(c flamego.Context, cfg config.Config) ([]pipeline.Image, error) {
	r := c.Request().Request

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &pipeline.ValidationError{
				Reason: fmt.Sprintf("upload exceeds %d MB", tooLarge.Limit>>20),
			}
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, pipeline.CheckImageCount(0, cfg.MaxImages)
		}
		return nil, &pipeline.ValidationError{Reason: "invalid upload: " + err.Error()}
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Warn("Failed to remove multipart temp files", "error", err)
		}
	}()

	files := r.MultipartForm.File[uploadField]
	if err := pipeline.CheckImageCount(len(files), cfg.MaxImages); err != nil {
		return nil, err
	}

	images := make([]pipeline.Image, 0, len(files))
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			return nil, err
		}

		img, err := pipeline.PrepareImage(fh.Filename, data, cfg.MaxImageMB)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", errReadUpload, fh.Filename, err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", errReadUpload, fh.Filename, err)
	}

	return data, nil
}
