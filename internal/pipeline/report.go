// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/cheggaaa/pb/v3"
)

// Reporter receives per-page progress from the Driver.
type Reporter interface {
	StartPage(page, total int)
	// Step announces a stage, e.g. "CROP" or "SPLIT(2)".
	Step(label string)
	// EndPage closes the page; images is the number persisted.
	EndPage(page int, state State, images int)
	// FailPage closes a page that stopped the run.
	FailPage(page int, stage string, err error)
	Finish(res Result)
}

// Progress styles.
const (
	ProgressText = "text"
	ProgressBar  = "bar"
	ProgressNone = "none"
)

// NewReporter returns the reporter for style writing to w.
func NewReporter(style string, w io.Writer) (Reporter, error) {
	switch strings.ToLower(style) {
	case "", ProgressText:
		return &TextReporter{w: w}, nil
	case ProgressBar:
		return &BarReporter{w: w}, nil
	case ProgressNone:
		return &SummaryReporter{w: w}, nil
	}
	return nil, fmt.Errorf("unknown progress style %q (want text, bar or none)", style)
}

func writeSummary(w io.Writer, res Result) {
	fmt.Fprintf(w, "Summary: %d pages, %d blank, %d images\n", res.Pages, res.Blank, res.Images)
}

// TextReporter prints one line per page:
//
//	Page    3/120: EXTRACT CROP DILATE ENHANCE SPLIT(2) DONE
type TextReporter struct {
	w io.Writer
}

func (r *TextReporter) StartPage(page, total int) {
	fmt.Fprintf(r.w, "Page %4d/%d:", page, total)
}

func (r *TextReporter) Step(label string) {
	fmt.Fprintf(r.w, " %s", label)
}

func (r *TextReporter) EndPage(_ int, state State, images int) {
	if state == StateBlank || images == 0 {
		fmt.Fprintln(r.w, " BLANK")
		return
	}
	fmt.Fprintln(r.w, " DONE")
}

func (r *TextReporter) FailPage(_ int, stage string, _ error) {
	fmt.Fprintf(r.w, " FAILED (%s)\n", stage)
}

func (r *TextReporter) Finish(res Result) { writeSummary(r.w, res) }

// BarReporter draws a terminal progress bar advanced once per page.
type BarReporter struct {
	w   io.Writer
	bar *pb.ProgressBar
}

func (r *BarReporter) StartPage(_, total int) {
	if r.bar == nil {
		r.bar = pb.New(total).SetWriter(r.w).Start()
	}
}

func (r *BarReporter) Step(string) {}

func (r *BarReporter) EndPage(int, State, int) {
	if r.bar != nil {
		r.bar.Increment()
	}
}

func (r *BarReporter) FailPage(int, string, error) {
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}

func (r *BarReporter) Finish(res Result) {
	if r.bar != nil {
		r.bar.Finish()
	}
	writeSummary(r.w, res)
}

// SummaryReporter prints only the closing summary.
type SummaryReporter struct {
	w io.Writer
}

func (r *SummaryReporter) StartPage(int, int)          {}
func (r *SummaryReporter) Step(string)                 {}
func (r *SummaryReporter) EndPage(int, State, int)     {}
func (r *SummaryReporter) FailPage(int, string, error) {}
func (r *SummaryReporter) Finish(res Result)           { writeSummary(r.w, res) }
