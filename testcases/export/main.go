// seehuhn.de/go/maprender - a streaming map renderer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command export renders all rasteriser test cases to PNG images, for
// visual inspection.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/maprender/internal/raster"
	"seehuhn.de/go/maprender/testcases"
)

func main() {
	out := flag.String("out", "debug", "output directory")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(*out, logger); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func run(dir string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			fname := filepath.Join(dir, name+".png")
			if err := writePNG(fname, render(tc)); err != nil {
				return errors.Wrapf(err, "test case %s", name)
			}
			logger.Info("written", "file", fname)
		}
	}
	return nil
}

func render(tc testcases.TestCase) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, tc.Width, tc.Height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	c := raster.NewCanvas(img)
	c.R.Reset(rect.Rect{URx: float64(tc.Width), URy: float64(tc.Height)})
	if tc.CTM != (matrix.Matrix{}) {
		c.R.CTM = tc.CTM
	}

	black := color.RGBA{A: 255}
	switch op := tc.Op.(type) {
	case testcases.Fill:
		rule := raster.NonZero
		if op.Rule == testcases.EvenOdd {
			rule = raster.EvenOdd
		}
		c.Fill(tc.Path, rule, black, 1)
	case testcases.Stroke:
		c.R.Width = op.Width
		c.R.Cap = op.Cap
		c.R.Join = op.Join
		c.R.MiterLimit = op.MiterLimit
		c.R.Dash = op.Dash
		c.R.DashPhase = op.DashPhase
		c.Stroke(tc.Path, black, 1)
	}
	return img
}

func writePNG(fname string, img image.Image) (err error) {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}
