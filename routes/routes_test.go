// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/humaidq/labx/config"
	"github.com/humaidq/labx/lab"
	"github.com/humaidq/labx/pipeline"
	"github.com/humaidq/labx/templates"
)

type testSession struct {
	id    string
	data  map[interface{}]interface{}
	flash interface{}
}

func newTestSession() *testSession {
	return &testSession{
		id:   "test-session",
		data: make(map[interface{}]interface{}),
	}
}

func (s *testSession) ID() string {
	return s.id
}

func (s *testSession) RegenerateID(http.ResponseWriter, *http.Request) error {
	return nil
}

func (s *testSession) Get(key interface{}) interface{} {
	return s.data[key]
}

func (s *testSession) Set(key, val interface{}) {
	s.data[key] = val
}

func (s *testSession) SetFlash(val interface{}) {
	s.flash = val
}

func (s *testSession) Delete(key interface{}) {
	delete(s.data, key)
}

func (s *testSession) Flush() {
	s.data = make(map[interface{}]interface{})
}

func (s *testSession) Encode() ([]byte, error) {
	return nil, nil
}

func (s *testSession) HasChanged() bool {
	return true
}

type testCSRF struct {
	token string
}

func (c testCSRF) Token() string {
	return c.token
}

func (c testCSRF) ValidToken(string) bool {
	return true
}

func (c testCSRF) Error(http.ResponseWriter) {}

func (c testCSRF) Validate(flamego.Context) {}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

type upload struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, uploads []upload, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for _, u := range uploads {
		part, err := w.CreateFormFile(uploadField, u.name)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(u.data); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	return &body, w.FormDataContentType()
}

// potassiumExtractor reports 4.0 mmol/L for a.png and 7.0 for anything else,
// one day apart.
func potassiumExtractor(_ context.Context, img pipeline.Image) (*lab.Report, error) {
	value, day := 7.0, 2
	if img.FileName == "a.png" {
		value, day = 4.0, 1
	}

	return &lab.Report{
		Panels: []lab.Panel{{
			PanelName: "Chemistry",
			Results: []lab.Analyte{{
				RawName:      "K",
				RawUnit:      "mmol/L",
				RawRangeText: "3.5-5.1",
				Unit:         "mmol/L",
				Observations: []lab.Observation{{Date: lab.NewDate(2024, time.January, day), Value: value}},
			}},
		}},
	}, nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.MaxImages = 2
	cfg.MaxImageMB = 1
	return cfg
}

func newTestPipeline(t *testing.T, extract pipeline.Extractor, opts ...pipeline.Option) *pipeline.Pipeline {
	t.Helper()

	p, err := pipeline.New(testConfig(), extract, opts...)
	if err != nil {
		t.Fatalf("pipeline.New failed: %v", err)
	}
	return p
}

func newAPITestApp(p *pipeline.Pipeline) *flamego.Flame {
	f := flamego.New()
	f.Map(p)
	f.Map(BuildInfo{Version: "1.2.3"})
	f.Use(RequestID())

	f.Get("/health", Health)
	f.Post("/extract", Extract)
	f.Post("/analyse", Analyse)

	return f
}

func postUploads(t *testing.T, f *flamego.Flame, path string, uploads []upload, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, uploads, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(newTestPipeline(t, potassiumExtractor))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "1.2.3" {
		t.Fatalf("unexpected health response %+v", resp)
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(newTestPipeline(t, potassiumExtractor))
	img := pngBytes(t)

	rec := postUploads(t, f, "/extract", []upload{{"a.png", img}, {"b.png", append(append([]byte{}, img...), 0)}}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp extractResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode extract response: %v", err)
	}

	if resp.ImageCount != 2 || len(resp.Reports) != 2 {
		t.Fatalf("unexpected extract response %+v", resp)
	}

	analyte := resp.Reports[0].Panels[0].Results[0]
	if analyte.AnalyteKey != "potassium" || analyte.Observations[0].FlagComputed != lab.FlagNormal {
		t.Fatalf("expected post-processed report, got %+v", analyte)
	}
	if resp.Reports[1].Panels[0].Results[0].Observations[0].FlagComputed != lab.FlagCriticalHigh {
		t.Fatalf("expected critical flag on second report")
	}
}

func TestExtractValidation(t *testing.T) {
	t.Parallel()

	img := pngBytes(t)

	tests := []struct {
		name       string
		uploads    []upload
		wantDetail string
	}{
		{name: "no files", uploads: nil, wantDetail: "no images provided"},
		{name: "too many", uploads: []upload{{"a.png", img}, {"b.png", img}, {"c.png", img}}, wantDetail: "too many images"},
		{name: "unsupported", uploads: []upload{{"notes.txt", []byte("hello")}}, wantDetail: "unsupported image type"},
		{name: "oversized", uploads: []upload{{"big.png", append(append([]byte{}, img...), make([]byte, 2<<20)...)}}, wantDetail: "limit 1 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newAPITestApp(newTestPipeline(t, potassiumExtractor))
			rec := postUploads(t, f, "/extract", tt.uploads, nil)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			}

			resp := decodeError(t, rec)
			if resp.Error != "image_validation" || !strings.Contains(resp.Detail, tt.wantDetail) {
				t.Fatalf("unexpected error response %+v", resp)
			}
		})
	}
}

func TestExtractNotMultipart(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(newTestPipeline(t, potassiumExtractor))

	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}
}

func TestExtractFailureIsInternal(t *testing.T) {
	t.Parallel()

	failing := func(context.Context, pipeline.Image) (*lab.Report, error) {
		return nil, errors.New("model unavailable")
	}
	f := newAPITestApp(newTestPipeline(t, failing))

	rec := postUploads(t, f, "/extract", []upload{{"a.png", pngBytes(t)}}, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}

	resp := decodeError(t, rec)
	if resp.Error != "internal" || !strings.Contains(resp.Detail, "model unavailable") {
		t.Fatalf("unexpected error response %+v", resp)
	}
}

func TestAnalyse(t *testing.T) {
	t.Parallel()

	summarize := func(_ context.Context, a *lab.AnalysisReport) (string, error) {
		return "critical potassium", nil
	}
	img := pngBytes(t)
	uploads := []upload{{"a.png", img}, {"b.png", append(append([]byte{}, img...), 0)}}

	tests := []struct {
		name        string
		query       string
		opts        []pipeline.Option
		wantSummary string
	}{
		{name: "default summary", query: "", opts: []pipeline.Option{pipeline.WithSummarizer(summarize)}, wantSummary: "critical potassium"},
		{name: "summary off", query: "?summary=false", opts: []pipeline.Option{pipeline.WithSummarizer(summarize)}, wantSummary: ""},
		{name: "no summarizer", query: "?summary=true", wantSummary: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newAPITestApp(newTestPipeline(t, potassiumExtractor, tt.opts...))
			rec := postUploads(t, f, "/analyse"+tt.query, uploads, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
			}

			var resp analyseResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode analyse response: %v", err)
			}

			a := resp.Analysis
			if len(a.MergedTimeline) != 1 || len(a.CriticalFlags) != 1 {
				t.Fatalf("unexpected analysis %+v", a)
			}
			if a.Trends[0].Direction != lab.DirectionWorsening {
				t.Fatalf("expected worsening potassium, got %s", a.Trends[0].Direction)
			}
			if a.Summary != tt.wantSummary {
				t.Fatalf("expected summary %q, got %q", tt.wantSummary, a.Summary)
			}
		})
	}
}

func TestAnalyseRejectsInvalidSummaryParam(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(newTestPipeline(t, potassiumExtractor))
	rec := postUploads(t, f, "/analyse?summary=maybe", []upload{{"a.png", pngBytes(t)}}, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "bad_request" {
		t.Fatalf("unexpected error response %+v", resp)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	f := newAPITestApp(newTestPipeline(t, potassiumExtractor))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc123")
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "abc123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
	if rec.Header().Get(responseTimeHeader) == "" {
		t.Fatalf("expected %s header", responseTimeHeader)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); len(got) != 16 {
		t.Fatalf("expected generated 16 character request id, got %q", got)
	}
}

func TestUploadLimit(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, potassiumExtractor)
	f := flamego.New()
	f.Map(p)
	f.Use(UploadLimit(1024))
	f.Post("/extract", Extract)

	rec := postUploads(t, f, "/extract", []upload{{"a.png", make([]byte, 4096)}}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}

	if resp := decodeError(t, rec); !strings.Contains(resp.Detail, "upload exceeds") {
		t.Fatalf("unexpected error response %+v", resp)
	}

	if limit := UploadBodyLimit(testConfig()); limit != 3<<20 {
		t.Fatalf("unexpected upload body limit %d", limit)
	}
}

func TestCSRFInjector(t *testing.T) {
	t.Parallel()

	handler, ok := CSRFInjector().(func(csrf.CSRF, template.Data))
	if !ok {
		t.Fatalf("unexpected CSRFInjector handler type")
	}

	data := template.Data{}
	handler(testCSRF{token: "csrf-123"}, data)

	if got, ok := data["csrf_token"].(string); !ok || got != "csrf-123" {
		t.Fatalf("unexpected csrf_token value: %#v", data["csrf_token"])
	}
}

func TestFlashInjector(t *testing.T) {
	t.Parallel()

	handler, ok := FlashInjector().(func(session.Flash, template.Data))
	if !ok {
		t.Fatalf("unexpected FlashInjector handler type")
	}

	data := template.Data{}
	handler(FlashMessage{Type: FlashError, Message: "bad"}, data)
	if msg, ok := data["Flash"].(FlashMessage); !ok || msg.Message != "bad" {
		t.Fatalf("unexpected flash data: %#v", data["Flash"])
	}

	data = template.Data{}
	handler(nil, data)
	if _, ok := data["Flash"]; ok {
		t.Fatalf("expected no flash data")
	}
}

func TestNoCacheHeaders(t *testing.T) {
	t.Parallel()

	f := flamego.New()
	f.Use(NoCacheHeaders())
	f.Get("/", func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusNoContent)
	})
	f.Post("/", func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusNoContent)
	})

	getReq := httptest.NewRequest(http.MethodGet, "/", nil)
	getRec := httptest.NewRecorder()
	f.ServeHTTP(getRec, getReq)

	if got := getRec.Header().Get("Cache-Control"); got != "no-store, max-age=0" {
		t.Fatalf("unexpected Cache-Control for GET: %q", got)
	}

	postReq := httptest.NewRequest(http.MethodPost, "/", nil)
	postRec := httptest.NewRecorder()
	f.ServeHTTP(postRec, postReq)

	if got := postRec.Header().Get("Cache-Control"); got != "" {
		t.Fatalf("expected no Cache-Control for POST, got %q", got)
	}
	if got := postRec.Header().Get("X-Robots-Tag"); got == "" {
		t.Fatalf("expected X-Robots-Tag for POST")
	}
}

func newPageTestApp(t *testing.T, s session.Session, p *pipeline.Pipeline) *flamego.Flame {
	t.Helper()

	fs, err := template.EmbedFS(templates.Templates, ".", []string{".html"})
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	f := flamego.New()
	f.Map(p)
	f.Use(func(c flamego.Context) {
		c.MapTo(s, (*session.Session)(nil))
		c.Next()
	})
	f.Use(template.Templater(template.Options{FileSystem: fs}))
	f.Use(func(data template.Data) {
		data["csrf_token"] = "csrf-123"
	})

	f.Get("/", Index)
	f.Post("/view", View)

	return f
}

func TestIndex(t *testing.T) {
	t.Parallel()

	f := newPageTestApp(t, newTestSession(), newTestPipeline(t, potassiumExtractor))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{`action="/view"`, `value="csrf-123"`, "up to 2"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in index page", want)
		}
	}
	if strings.Contains(body, `name="summary"`) {
		t.Fatalf("summary option must be hidden without a summarizer")
	}
}

func TestViewRendersAnalysis(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	f := newPageTestApp(t, s, newTestPipeline(t, potassiumExtractor))

	img := pngBytes(t)
	rec := postUploads(t, f, "/view", []upload{{"a.png", img}, {"b.png", append(append([]byte{}, img...), 0)}}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{"Lab analysis", "flag-critical-high", "echarts.min.js"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in analysis page", want)
		}
	}
	if s.flash != nil {
		t.Fatalf("unexpected flash %#v", s.flash)
	}
}

func TestViewRedirectsWithFlashOnValidationError(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	f := newPageTestApp(t, s, newTestPipeline(t, potassiumExtractor))

	rec := postUploads(t, f, "/view", []upload{{"notes.txt", []byte("hello")}}, nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Fatalf("expected redirect to /, got %q", got)
	}

	msg, ok := s.flash.(FlashMessage)
	if !ok || msg.Type != FlashError || !strings.Contains(msg.Message, "unsupported image type") {
		t.Fatalf("unexpected flash %#v", s.flash)
	}
}
