/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder for dimension probing
	_ "image/jpeg" // register decoder for dimension probing
	_ "image/png"  // register decoder for dimension probing
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/webp" // register decoder for dimension probing
)

// Supported image media types.
const (
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
	MediaTypeWEBP = "image/webp"
	MediaTypeGIF  = "image/gif"
)

var supportedMediaTypes = []string{MediaTypeGIF, MediaTypeJPEG, MediaTypePNG, MediaTypeWEBP}

var extensionMediaTypes = map[string]string{
	".jpg":  MediaTypeJPEG,
	".jpeg": MediaTypeJPEG,
	".png":  MediaTypePNG,
	".webp": MediaTypeWEBP,
	".gif":  MediaTypeGIF,
}

var magicSignatures = []struct {
	prefix    []byte
	mediaType string
}{
	{[]byte{0xff, 0xd8, 0xff}, MediaTypeJPEG},
	{[]byte("\x89PNG\r\n\x1a\n"), MediaTypePNG},
	{[]byte("RIFF"), MediaTypeWEBP},
	{[]byte("GIF87a"), MediaTypeGIF},
	{[]byte("GIF89a"), MediaTypeGIF},
}

// Image is a validated input image ready for extraction.
type Image struct {
	// ID is the SHA-256 hex digest of Data.
	ID        string
	MediaType string
	FileName  string
	Data      []byte

	// Width and Height are zero when the image header could not be decoded.
	Width  int
	Height int
}

// Base64 returns the standard base64 encoding of the image bytes.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data: URL.
func (img Image) DataURL() string {
	return "data:" + img.MediaType + ";base64," + img.Base64()
}

// SupportedExtension reports whether name has an image file extension.
func SupportedExtension(name string) bool {
	_, ok := extensionMediaTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

func sniffMediaType(data []byte) string {
	for _, sig := range magicSignatures {
		if !bytes.HasPrefix(data, sig.prefix) {
			continue
		}
		// RIFF is only WEBP when the form type says so
		if sig.mediaType == MediaTypeWEBP && (len(data) < 12 || string(data[8:12]) != "WEBP") {
			continue
		}
		return sig.mediaType
	}
	return ""
}

// PrepareImage validates in-memory image data. maxMB limits the size.
func PrepareImage(name string, data []byte, maxMB float64) (Image, error) {
	sizeMB := float64(len(data)) / (1024 * 1024)
	if sizeMB > maxMB {
		return Image{}, validationErrorf("image %s is %.1f MB (limit %g MB)", name, sizeMB, maxMB)
	}

	if len(data) == 0 {
		return Image{}, validationErrorf("image %s is empty", name)
	}

	mediaType := sniffMediaType(data)
	if mediaType == "" {
		mediaType = extensionMediaTypes[strings.ToLower(filepath.Ext(name))]
	}
	if !slices.Contains(supportedMediaTypes, mediaType) {
		shown := mediaType
		if shown == "" {
			shown = "unknown"
		}
		return Image{}, validationErrorf("unsupported image type %q for %s; supported: %s",
			shown, name, strings.Join(supportedMediaTypes, ", "))
	}

	sum := sha256.Sum256(data)
	img := Image{
		ID:        hex.EncodeToString(sum[:]),
		MediaType: mediaType,
		FileName:  name,
		Data:      data,
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	} else {
		logger.Debug("Could not read image dimensions", "file", name, "error", err)
	}

	return img, nil
}

// LoadImage reads and validates a single image file.
func LoadImage(path string, maxMB float64) (Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Image{}, validationErrorf("file not found: %s", path)
		}
		return Image{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Image{}, validationErrorf("not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return PrepareImage(filepath.Base(path), data, maxMB)
}

// LoadImages validates the image count and then loads every path in order.
func LoadImages(paths []string, maxImages int, maxMB float64) ([]Image, error) {
	if err := CheckImageCount(len(paths), maxImages); err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(paths))
	for _, p := range paths {
		img, err := LoadImage(p, maxMB)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, nil
}

// CheckImageCount validates the number of images in a batch.
func CheckImageCount(n, maxImages int) error {
	if n == 0 {
		return validationErrorf("no images provided")
	}
	if n > maxImages {
		return validationErrorf("too many images (%d); max allowed is %d", n, maxImages)
	}
	return nil
}
