/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/google/uuid"
)

const (
	requestIDHeader    = "X-Request-ID"
	responseTimeHeader = "X-Response-Time-Ms"
	maxRequestIDLength = 128
)

// CSRFInjector automatically injects CSRF token into template data for all routes
func CSRFInjector() flamego.Handler {
	return func(x csrf.CSRF, data template.Data) {
		data["csrf_token"] = x.Token()
	}
}

// FlashInjector exposes the flash message of the previous request to templates.
func FlashInjector() flamego.Handler {
	return func(flash session.Flash, data template.Data) {
		if msg, ok := flash.(FlashMessage); ok {
			data["Flash"] = msg
		}
	}
}

// NoCacheHeaders disables caching for all page responses and blocks indexing.
func NoCacheHeaders() flamego.Handler {
	return func(c flamego.Context) {
		header := c.ResponseWriter().Header()
		header.Set("X-Robots-Tag", "noindex, nofollow, noarchive, nosnippet")

		if c.Request().Method == http.MethodGet || c.Request().Method == http.MethodHead {
			header.Set("Cache-Control", "no-store, max-age=0")
			header.Set("Pragma", "no-cache")
			header.Set("Expires", "0")
		}

		c.Next()
	}
}

// RequestID honors an incoming X-Request-ID or generates one, echoing it on
// the response together with the handling time.
func RequestID() flamego.Handler {
	return func(c flamego.Context) {
		id := strings.TrimSpace(c.Request().Header.Get(requestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = newRequestID()
		}

		start := time.Now()
		c.ResponseWriter().Header().Set(requestIDHeader, id)
		c.ResponseWriter().Before(func(w flamego.ResponseWriter) {
			elapsed := float64(time.Since(start).Microseconds()) / 1000
			w.Header().Set(responseTimeHeader, fmt.Sprintf("%.1f", elapsed))
		})

		c.Next()
	}
}

func newRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// UploadLimit caps request bodies so oversized uploads fail while parsing.
func UploadLimit(maxBytes int64) flamego.Handler {
	return func(c flamego.Context) {
		r := c.Request().Request
		r.Body = http.MaxBytesReader(c.ResponseWriter(), r.Body, maxBytes)
		c.Next()
	}
}
