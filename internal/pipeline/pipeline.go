// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives every logical page of a document through the
// stage chain: extract, crop, dilate, mode split, enhance and persist.
// Pages are processed strictly in order, one at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pdiddy/pdfread/internal/crop"
	"github.com/pdiddy/pdfread/internal/filter"
	"github.com/pdiddy/pdfread/internal/input"
	"github.com/pdiddy/pdfread/internal/mode"
	"github.com/pdiddy/pdfread/internal/persist"
	"github.com/pdiddy/pdfread/internal/raster"
	"github.com/pdiddy/pdfread/pkg/types"
)

// State is the position of a page in the stage chain.
type State int

const (
	StateStart State = iota
	StateExtracted
	StateCropped
	StateDilated
	StateModeSplit
	StatePersisted
	StateBlank
)

var stateNames = [...]string{"start", "extracted", "cropped", "dilated", "mode-split", "persisted", "blank"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Stage names used in PageError.
const (
	StageExtract = "extract"
	StageSplit   = "split"
	StagePersist = "persist"
	StageCleanup = "cleanup"
)

// PageError reports a fatal failure together with the page and stage.
type PageError struct {
	Page  int
	Stage string
	Err   error
}

func (e *PageError) Error() string {
	if e.Page == 0 {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("page %d: %s: %v", e.Page, e.Stage, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Result summarizes a run.
type Result struct {
	// Pages is the number of logical pages processed.
	Pages int
	// Blank counts pages that persisted no image.
	Blank int
	// Images is the number of persisted images.
	Images int
	Index  *IndexMap
	Saved  []persist.Image
}

// Driver owns the per-run state: the stage configuration, the output
// index (through the Saver) and the index map.
type Driver struct {
	cfg      types.PipelineConfig
	strategy mode.Strategy
	kernel   *filter.Kernel
	saver    *persist.Saver
	report   Reporter
	log      *slog.Logger
}

// New validates cfg and prepares the stages it enables. An invalid
// enhancement level or mode fails here, before any page is touched.
func New(cfg types.PipelineConfig, saver *persist.Saver, report Reporter, log *slog.Logger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	if report == nil {
		report = &SummaryReporter{w: io.Discard}
	}

	strategy, err := mode.New(cfg.Mode, mode.ParamsFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("page mode: %w", err)
	}
	d := &Driver{cfg: cfg, strategy: strategy, saver: saver, report: report, log: log}

	if cfg.EnhanceLevel != 0 {
		k, err := filter.NewKernel(cfg.EnhanceLevel)
		if err != nil {
			return nil, err
		}
		d.kernel = &k
	}
	return d, nil
}

// Run processes pages 1..count of doc. The context is checked between
// pages; a running page is never interrupted. Scratch files are removed
// on every exit path.
func (d *Driver) Run(ctx context.Context, doc input.Document, count int) (res Result, err error) {
	res.Index = NewIndexMap()
	d.log.Debug("pipeline start", "pages", count, "mode", d.strategy.Name(),
		"crop", d.cfg.Crop, "dilate", d.cfg.Dilate, "enhance", d.cfg.EnhanceLevel, "colors", d.cfg.Colors)

	defer func() {
		cerr := errors.Join(doc.Close(), d.saver.Cleanup())
		if cerr != nil && err == nil {
			err = &PageError{Stage: StageCleanup, Err: cerr}
		}
	}()

	for n := 1; n <= count; n++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		d.report.StartPage(n, count)
		state, saved, err := d.page(doc, n)
		if err != nil {
			stage := StageExtract
			var pe *PageError
			if errors.As(err, &pe) {
				stage = pe.Stage
			}
			d.report.FailPage(n, stage, err)
			return res, err
		}

		res.Pages++
		if len(saved) == 0 {
			res.Blank++
		} else {
			res.Index.Set(n, saved[0].Index)
			res.Saved = append(res.Saved, saved...)
			res.Images += len(saved)
		}
		d.report.EndPage(n, state, len(saved))
	}

	d.report.Finish(res)
	return res, nil
}

// page runs one logical page and returns its final state and the images
// persisted for it.
func (d *Driver) page(doc input.Document, n int) (State, []persist.Image, error) {
	d.report.Step("EXTRACT")
	img, err := doc.Page(n)
	if err != nil {
		return StateStart, nil, &PageError{Page: n, Stage: StageExtract, Err: err}
	}
	if img == nil {
		d.log.Debug("rasterizer produced nothing", "page", n)
		return StateBlank, nil, nil
	}
	img = raster.Normalize(img)

	if d.cfg.Crop {
		d.report.Step("CROP")
		img = crop.Crop(img, d.cfg.CropPercent)
		if img == nil {
			return StateBlank, nil, nil
		}
	}

	if d.cfg.Dilate {
		d.report.Step("DILATE")
		img = filter.Dilate(img)
	}

	imgs, err := d.strategy.Apply(img)
	if err != nil {
		return StateDilated, nil, &PageError{Page: n, Stage: StageSplit, Err: err}
	}

	if d.kernel != nil {
		d.report.Step("ENHANCE")
		for i, im := range imgs {
			imgs[i] = d.kernel.Apply(raster.Normalize(im))
		}
	}
	if len(imgs) > 1 {
		d.report.Step(fmt.Sprintf("SPLIT(%d)", len(imgs)))
	}

	out, err := d.saver.Save(imgs)
	if err != nil {
		return StateModeSplit, nil, &PageError{Page: n, Stage: StagePersist, Err: err}
	}
	if out.Rejected > 0 {
		d.log.Debug("histogram gate rejected images", "page", n, "rejected", out.Rejected)
	}
	return StatePersisted, out.Saved, nil
}
