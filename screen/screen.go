// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen renders the content of a character display on a terminal
// or to an image.
//
// Useful to see what a sketch prints while the display is still in the
// mail.
package screen

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Opts represents the options available for this display.
type Opts struct {
	// W receives the frames. It defaults to stdout.
	W io.Writer
	// Palette is used when writing ANSI colors. It defaults to
	// ansi256.Default.
	Palette *ansi256.Palette
	// ANSI forces colored output even if W is not a terminal.
	ANSI bool

	_ struct{}
}

var (
	panelLit   = color.NRGBA{0x9a, 0xcd, 0x32, 0xff}
	panelDark  = color.NRGBA{0x2f, 0x3a, 0x22, 0xff}
	bezelColor = color.NRGBA{0x10, 0x10, 0x10, 0xff}
)

// Dev draws a character display on a terminal.
type Dev struct {
	w       io.Writer
	palette ansi256.Palette
	ansi    bool

	// drawn is the height of the last frame, to draw over it.
	drawn int
	buf   bytes.Buffer
}

// New returns a Dev that writes to opts.W, or to stdout when it is nil.
//
// Colors are used when the output is a terminal.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Dev{w: opts.W, palette: *p, ansi: opts.ANSI}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
		d.ansi = d.ansi || isTerminal(os.Stdout)
	} else if f, ok := d.w.(*os.File); ok {
		d.ansi = d.ansi || isTerminal(f)
	}
	return d
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (d *Dev) String() string {
	return "Screen"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	if !d.ansi {
		return nil
	}
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Show draws lines, one per row of the display, in a frame. On a terminal
// the previous frame is overwritten and the panel color follows backlight.
func (d *Dev) Show(lines []string, backlight bool) (int, error) {
	cols := 0
	for _, l := range lines {
		cols = max(cols, len([]rune(l)))
	}
	d.buf.Reset()
	if d.ansi {
		d.ansiFrame(lines, cols, backlight)
	} else {
		d.plainFrame(lines, cols)
	}
	n, err := d.buf.WriteTo(d.w)
	return int(n), err
}

func (d *Dev) plainFrame(lines []string, cols int) {
	border := "+" + strings.Repeat("-", cols) + "+\n"
	_, _ = d.buf.WriteString(border)
	for _, l := range lines {
		_, _ = fmt.Fprintf(&d.buf, "|%s%s|\n", l, strings.Repeat(" ", cols-len([]rune(l))))
	}
	_, _ = d.buf.WriteString(border)
}

func (d *Dev) ansiFrame(lines []string, cols int, backlight bool) {
	panel := panelDark
	if backlight {
		panel = panelLit
	}
	if d.drawn != 0 {
		// Move back to the top of the previous frame.
		_, _ = fmt.Fprintf(&d.buf, "\r\033[%dA", d.drawn)
	}
	bezel := d.palette.Block(bezelColor)
	edge := strings.Repeat(bezel, cols/2+2) + "\033[0m\n"
	_, _ = d.buf.WriteString(edge)
	for _, l := range lines {
		_, _ = d.buf.WriteString(bezel)
		_, _ = io.WriteString(&d.buf, d.palette.Block(panel))
		// Dark text over the last background color set by Block.
		_, _ = fmt.Fprintf(&d.buf, "\033[30m%s%s", l, strings.Repeat(" ", cols-len([]rune(l))))
		_, _ = d.buf.WriteString(bezel)
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, _ = d.buf.WriteString(edge)
	d.drawn = len(lines) + 2
}

var _ fmt.Stringer = &Dev{}
