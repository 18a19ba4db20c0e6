/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Log source tags used in structured logger contexts.
const (
	SourceApp        = "app"
	SourcePipeline   = "pipeline"
	SourceProvider   = "provider"
	SourceStore      = "store"
	SourceWeb        = "web"
	SourceWebRequest = "web_request"
)

// Output formats accepted by SetFormat.
const (
	FormatText   = "text"
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"
)

var (
	initOnce   sync.Once
	baseLogger *log.Logger

	mu     sync.Mutex
	issued []*log.Logger
)

// Init configures the base logger and stdlib log output.
func Init() {
	initOnce.Do(func() {
		baseLogger = newBase(os.Stderr)

		stdLogger := baseLogger.With("source", SourceApp).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})

		stdlog.SetFlags(0)
		stdlog.SetOutput(stdLogger.Writer())
	})
}

func newBase(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		TimeFunction:    log.NowUTC,
		TimeFormat:      time.RFC3339Nano,
		Level:           log.InfoLevel,
		ReportTimestamp: true,
		Formatter:       log.LogfmtFormatter,
	})
}

// Logger returns a logfmt logger tagged with the provided source.
func Logger(source string) *log.Logger {
	Init()

	l := baseLogger.With("source", source)

	mu.Lock()
	issued = append(issued, l)
	mu.Unlock()

	return l
}

// StdLogger returns a stdlib logger that writes logfmt output with a source.
func StdLogger(source string) *stdlog.Logger {
	return Logger(source).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
}

// SetLevel parses level and applies it to the base logger and every logger
// handed out by Logger.
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	Init()
	mu.Lock()
	defer mu.Unlock()

	baseLogger.SetLevel(lvl)
	for _, l := range issued {
		l.SetLevel(lvl)
	}

	return nil
}

// SetFormat switches every logger to the named output format.
func SetFormat(format string) error {
	var formatter log.Formatter

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText:
		formatter = log.TextFormatter
	case FormatLogfmt, "":
		formatter = log.LogfmtFormatter
	case FormatJSON:
		formatter = log.JSONFormatter
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	Init()
	mu.Lock()
	defer mu.Unlock()

	baseLogger.SetFormatter(formatter)
	for _, l := range issued {
		l.SetFormatter(formatter)
	}

	return nil
}

// SetOutput redirects every logger to w.
func SetOutput(w io.Writer) {
	Init()
	mu.Lock()
	defer mu.Unlock()

	baseLogger.SetOutput(w)
	for _, l := range issued {
		l.SetOutput(w)
	}
}
