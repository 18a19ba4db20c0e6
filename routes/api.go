/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/flamego/flamego"

	"github.com/humaidq/labx/lab"
	"github.com/humaidq/labx/pipeline"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type extractResponse struct {
	Reports    []lab.Report `json:"reports"`
	ImageCount int          `json:"image_count"`
}

type analyseResponse struct {
	Analysis *lab.AnalysisReport `json:"analysis"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Health reports liveness and the running version.
func Health(c flamego.Context, info BuildInfo) {
	writeJSON(c, http.StatusOK, healthResponse{Status: "ok", Version: info.Version})
}

// Extract runs extraction only on the uploaded images.
func Extract(c flamego.Context, p *pipeline.Pipeline) {
	images, err := readUploads(c, p.Config())
	if err != nil {
		writeFailure(c, err)
		return
	}

	reports, err := p.ExtractOnly(c.Request().Context(), images)
	if err != nil {
		writeFailure(c, err)
		return
	}

	writeJSON(c, http.StatusOK, extractResponse{Reports: reports, ImageCount: len(images)})
}

// Analyse runs the full pipeline on the uploaded images. The summary query
// parameter defaults to true and is ignored when no summarizer is configured.
func Analyse(c flamego.Context, p *pipeline.Pipeline) {
	summary := true
	if raw := c.Query("summary"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(c, http.StatusBadRequest, errorResponse{Error: "bad_request", Detail: errInvalidSummaryParam.Error()})
			return
		}
		summary = parsed
	}

	if summary && !p.CanSummarize() {
		logger.Info("Summary requested but disabled, skipping")
		summary = false
	}

	images, err := readUploads(c, p.Config())
	if err != nil {
		writeFailure(c, err)
		return
	}

	analysis, err := p.Analyse(c.Request().Context(), images, summary)
	if err != nil {
		writeFailure(c, err)
		return
	}

	writeJSON(c, http.StatusOK, analyseResponse{Analysis: analysis})
}

// NotFound answers unknown paths with a JSON error.
func NotFound(c flamego.Context) {
	writeJSON(c, http.StatusNotFound, errorResponse{Error: "not_found", Detail: c.Request().URL.Path})
}

func writeFailure(c flamego.Context, err error) {
	var ve *pipeline.ValidationError
	if errors.As(err, &ve) {
		logUploadRejected(c, ve.Reason)
		writeJSON(c, http.StatusUnprocessableEntity, errorResponse{Error: "image_validation", Detail: ve.Error()})
		return
	}

	logger.Error("Request failed", "path", c.Request().URL.Path, "error", err)
	writeJSON(c, http.StatusInternalServerError, errorResponse{Error: "internal", Detail: err.Error()})
}

func writeJSON(c flamego.Context, status int, v any) {
	c.ResponseWriter().Header().Set("Content-Type", "application/json")
	c.ResponseWriter().WriteHeader(status)
	if err := json.NewEncoder(c.ResponseWriter()).Encode(v); err != nil {
		logger.Warn("Failed to write JSON response", "error", err)
	}
}
