// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package persist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/pdfread/internal/tools"
)

// Quantizer reduces an image file to a fixed number of colors.
type Quantizer interface {
	Name() string
	// Quantize reads src and writes dst, both relative to dir.
	Quantize(dir, src, dst string, colors int) error
}

// SelectQuantizer prefers pngnq and falls back to ImageMagick.
func SelectQuantizer(caps *tools.Capabilities) (Quantizer, error) {
	switch {
	case caps.Has(tools.Pngnq):
		return pngnq{caps: caps}, nil
	case caps.Has(tools.Magick):
		return magick{caps: caps}, nil
	}
	return nil, caps.Require(tools.Pngnq)
}

// pngnq always writes <base>-nq8.png next to its input, so dst must be
// that name.
type pngnq struct{ caps *tools.Capabilities }

func (pngnq) Name() string { return tools.Pngnq }

func (q pngnq) Quantize(dir, src, dst string, colors int) error {
	if want := strings.TrimSuffix(src, ".png") + "-nq8.png"; dst != want {
		return fmt.Errorf("pngnq writes %s, not %s", want, dst)
	}
	return q.caps.Run(dir, tools.Pngnq, "-f", "-s", "1", "-n", strconv.Itoa(colors), src)
}

type magick struct{ caps *tools.Capabilities }

func (magick) Name() string { return tools.Magick }

func (q magick) Quantize(dir, src, dst string, colors int) error {
	return q.caps.Run(dir, tools.Magick, src, "-dither", "FloydSteinberg",
		"-colors", strconv.Itoa(colors), "PNG8:"+dst)
}
