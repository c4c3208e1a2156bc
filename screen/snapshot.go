// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen

import (
	"fmt"
	"image"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomono"
)

// SnapshotOpts controls the rendering of Snapshot.
type SnapshotOpts struct {
	// Size is the font size in points. Defaults to 24.
	Size float64
	// Padding around the text, in pixels. Defaults to half the font size.
	Padding float64
}

// Snapshot draws lines as the glass of a character display: dark glyphs over
// a green panel, or a dim one when backlight is off. opts may be nil.
func Snapshot(lines []string, backlight bool, opts *SnapshotOpts) (image.Image, error) {
	size := 24.
	if opts != nil && opts.Size > 0 {
		size = opts.Size
	}
	padding := size / 2
	if opts != nil && opts.Padding > 0 {
		padding = opts.Padding
	}
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("screen: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size})

	cols := 1
	for _, l := range lines {
		cols = max(cols, len([]rune(l)))
	}
	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	tw, th := measure.MeasureString(strings.Repeat("M", cols))
	lineHeight := th * 1.6
	w := int(tw + 2*padding + 0.5)
	h := int(float64(max(len(lines), 1))*lineHeight + 2*padding + 0.5)

	dc := gg.NewContext(w, h)
	if backlight {
		dc.SetRGB255(int(panelLit.R), int(panelLit.G), int(panelLit.B))
	} else {
		dc.SetRGB255(int(panelDark.R), int(panelDark.G), int(panelDark.B))
	}
	dc.Clear()
	dc.SetFontFace(face)
	dc.SetRGB(0.05, 0.1, 0.05)
	for i, l := range lines {
		// y is the baseline.
		y := padding + float64(i)*lineHeight + (lineHeight+th)/2
		dc.DrawString(l, padding, y)
	}
	return dc.Image(), nil
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	return nil
}
