/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/humaidq/labx/pipeline"
	"github.com/humaidq/labx/render"
)

// Index renders the upload form.
func Index(t template.Template, data template.Data, p *pipeline.Pipeline) {
	cfg := p.Config()

	data["MaxImages"] = cfg.MaxImages
	data["MaxImageMB"] = cfg.MaxImageMB
	data["CanSummarize"] = p.CanSummarize()

	t.HTML(http.StatusOK, "index")
}

// View analyses the uploaded images and renders the result page. Failures
// redirect back to the form with a flash message.
func View(c flamego.Context, s session.Session, t template.Template, data template.Data, p *pipeline.Pipeline) {
	images, err := readUploads(c, p.Config())
	if err != nil {
		failView(c, s, err)
		return
	}

	summary := c.Request().FormValue("summary") != "" && p.CanSummarize()

	analysis, err := p.Analyse(c.Request().Context(), images, summary)
	if err != nil {
		failView(c, s, err)
		return
	}

	body, err := render.AnalysisBody(analysis)
	if err != nil {
		failView(c, s, err)
		return
	}

	if len(analysis.CriticalFlags) == 0 {
		data["Notice"] = "No critical values found."
	}
	data["Analysis"] = analysis
	data["Body"] = body
	data["EChartsScript"] = render.EChartsScript

	t.HTML(http.StatusOK, "analysis")
}

func failView(c flamego.Context, s session.Session, err error) {
	var ve *pipeline.ValidationError
	if errors.As(err, &ve) {
		logUploadRejected(c, ve.Reason)
		SetErrorFlash(s, ve.Reason)
	} else {
		logger.Error("Analysis failed", "error", err)
		SetErrorFlash(s, "Analysis failed: "+err.Error())
	}

	c.Redirect("/", http.StatusSeeOther)
}
