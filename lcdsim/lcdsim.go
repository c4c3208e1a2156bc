// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim simulates an HD44780 character LCD controller.
//
// The Controller decodes the transitions a driver puts on the display lines,
// whether they come through GPIO pins, a 74HC595 fed by an SPI connection or
// a bit-banged shift register, and keeps the display RAM, address counter and
// mode flags the way the chip does. It is used to test drivers without
// hardware and to preview output on a terminal.
//
// Timing is not checked and the busy flag can't be read.
package lcdsim

import (
	"strings"
)

// Instruction set, highest bit first.
const (
	cmdSetDDRAMAddr   = 0x80
	cmdSetCGRAMAddr   = 0x40
	cmdFunctionSet    = 0x20
	cmdCursorShift    = 0x10
	cmdDisplayControl = 0x08
	cmdEntryModeSet   = 0x04
	cmdReturnHome     = 0x02
	cmdClearDisplay   = 0x01
)

const (
	ddramSize = 80
	lineSize  = 40
	cgramSize = 64
)

var rowOffsets = [4]int{0x00, 0x40, 0x14, 0x54}

// State is a snapshot of the controller registers.
type State struct {
	EightBit  bool
	TwoLine   bool
	Font5x10  bool
	DisplayOn bool
	CursorOn  bool
	BlinkOn   bool
	Increment bool
	AutoShift bool
	// Address is the address counter, in DDRAM or CGRAM per CGRAM.
	Address byte
	CGRAM   bool
	// Shift is how many positions the display was shifted left.
	Shift     int
	Backlight bool
}

// Controller is a simulated HD44780 and the glass it drives.
type Controller struct {
	rows, cols int

	eightBit  bool
	twoLine   bool
	font5x10  bool
	displayOn bool
	cursorOn  bool
	blinkOn   bool
	increment bool
	autoShift bool
	cgramMode bool
	addr      byte
	shift     int
	backlight bool

	// high holds the first nibble of a 4-bit transfer.
	high     byte
	haveHigh bool

	ddram [ddramSize]byte
	cgram [cgramSize]byte

	instructions []byte
	data         []byte
}

// New returns a controller in its power-on reset state, driving a glass of
// rows by cols characters: 8-bit interface, one line, display off, display
// cleared.
func New(rows, cols int) *Controller {
	c := &Controller{rows: rows, cols: cols, eightBit: true, increment: true}
	for i := range c.ddram {
		c.ddram[i] = ' '
	}
	return c
}

// Strobe is the falling edge of Enable. lines is the level of D7-D0; lines
// not wired read as 0.
func (c *Controller) Strobe(rs bool, lines byte) {
	if c.eightBit {
		c.haveHigh = false
		c.exec(rs, lines)
		return
	}
	if !c.haveHigh {
		c.high = lines & 0xf0
		c.haveHigh = true
		return
	}
	c.haveHigh = false
	c.exec(rs, c.high|lines>>4)
}

// SetBacklight records the level of the backlight line.
func (c *Controller) SetBacklight(on bool) {
	c.backlight = on
}

func (c *Controller) exec(rs bool, b byte) {
	if rs {
		c.data = append(c.data, b)
		c.writeData(b)
		return
	}
	c.instructions = append(c.instructions, b)
	switch {
	case b&cmdSetDDRAMAddr != 0:
		c.cgramMode = false
		c.addr = b &^ cmdSetDDRAMAddr
	case b&cmdSetCGRAMAddr != 0:
		c.cgramMode = true
		c.addr = b & (cgramSize - 1)
	case b&cmdFunctionSet != 0:
		eightBit := b&0x10 != 0
		if eightBit != c.eightBit {
			c.haveHigh = false
		}
		c.eightBit = eightBit
		c.twoLine = b&0x08 != 0
		c.font5x10 = b&0x04 != 0
	case b&cmdCursorShift != 0:
		delta := -1
		if b&0x04 != 0 {
			delta = 1
		}
		if b&0x08 != 0 {
			c.shift -= delta
		} else {
			c.step(delta)
		}
	case b&cmdDisplayControl != 0:
		c.displayOn = b&0x04 != 0
		c.cursorOn = b&0x02 != 0
		c.blinkOn = b&0x01 != 0
	case b&cmdEntryModeSet != 0:
		c.increment = b&0x02 != 0
		c.autoShift = b&0x01 != 0
	case b&cmdReturnHome != 0:
		c.cgramMode = false
		c.addr = 0
		c.shift = 0
	case b&cmdClearDisplay != 0:
		for i := range c.ddram {
			c.ddram[i] = ' '
		}
		c.cgramMode = false
		c.addr = 0
		c.shift = 0
		c.increment = true
	}
}

func (c *Controller) writeData(b byte) {
	delta := -1
	if c.increment {
		delta = 1
	}
	if c.cgramMode {
		c.cgram[c.addr&(cgramSize-1)] = b
		c.addr = byte((int(c.addr) + delta) & (cgramSize - 1))
		return
	}
	c.ddram[c.index(c.addr)] = b
	c.step(delta)
	if c.autoShift {
		c.shift += delta
	}
}

// index maps a DDRAM address to the ddram array. In 2-line mode the lines
// are 0x00-0x27 and 0x40-0x67.
func (c *Controller) index(addr byte) int {
	if c.twoLine {
		line := 0
		if addr&0x40 != 0 {
			line = 1
		}
		return line*lineSize + int(addr&0x3f)%lineSize
	}
	return int(addr) % ddramSize
}

// step moves the DDRAM address counter, wrapping like the chip: from the end
// of line 1 to the start of line 2 and from the end of line 2 to 0.
func (c *Controller) step(delta int) {
	if c.cgramMode {
		c.addr = byte((int(c.addr) + delta) & (cgramSize - 1))
		return
	}
	i := (c.index(c.addr) + delta + ddramSize) % ddramSize
	if c.twoLine {
		c.addr = byte(i/lineSize*0x40 + i%lineSize)
		return
	}
	c.addr = byte(i)
}

// Row returns the character codes visible on row, taking the display shift
// into account. It returns nil for rows the glass doesn't have.
func (c *Controller) Row(row int) []byte {
	if row < 0 || row >= c.rows || row >= len(rowOffsets) {
		return nil
	}
	out := make([]byte, c.cols)
	for col := range out {
		out[col] = ' '
	}
	if !c.twoLine {
		if row > 0 {
			return out
		}
		for col := range out {
			out[col] = c.ddram[mod(col+c.shift, ddramSize)]
		}
		return out
	}
	base := rowOffsets[row]
	line := base >> 6
	start := base & 0x3f
	for col := range out {
		out[col] = c.ddram[line*lineSize+mod(start+col+c.shift, lineSize)]
	}
	return out
}

// Lines returns the text visible on each row. Blank rows are returned when
// the display is off.
func (c *Controller) Lines() []string {
	lines := make([]string, c.rows)
	for r := range lines {
		if !c.displayOn {
			lines[r] = strings.Repeat(" ", c.cols)
			continue
		}
		var sb strings.Builder
		for _, code := range c.Row(r) {
			sb.WriteRune(Glyph(code))
		}
		lines[r] = sb.String()
	}
	return lines
}

// Text returns Lines joined with newlines.
func (c *Controller) Text() string {
	return strings.Join(c.Lines(), "\n")
}

// CGRAM returns the 8 pixel rows of custom character location (0-7).
func (c *Controller) CGRAM(location int) [8]byte {
	var out [8]byte
	copy(out[:], c.cgram[(location&7)*8:])
	return out
}

// Instructions returns every instruction byte executed so far.
func (c *Controller) Instructions() []byte {
	return append([]byte(nil), c.instructions...)
}

// Data returns every data byte written so far.
func (c *Controller) Data() []byte {
	return append([]byte(nil), c.data...)
}

// State returns the controller registers.
func (c *Controller) State() State {
	return State{
		EightBit:  c.eightBit,
		TwoLine:   c.twoLine,
		Font5x10:  c.font5x10,
		DisplayOn: c.displayOn,
		CursorOn:  c.cursorOn,
		BlinkOn:   c.blinkOn,
		Increment: c.increment,
		AutoShift: c.autoShift,
		Address:   c.addr,
		CGRAM:     c.cgramMode,
		Shift:     c.shift,
		Backlight: c.backlight,
	}
}

// Glyph returns the character of the A00 (Japanese) ROM for code, the most
// common one. Custom characters show as a block and codes without an ASCII
// or Unicode equivalent as a middle dot.
func Glyph(code byte) rune {
	switch {
	case code < 0x10:
		return '█'
	case code == 0x5c:
		return '¥'
	case code == 0x7e:
		return '→'
	case code == 0x7f:
		return '←'
	case code == 0xdf:
		return '°'
	case code >= 0x20 && code < 0x7e:
		return rune(code)
	default:
		return '·'
	}
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
