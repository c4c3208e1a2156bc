// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls character LCD displays built on the Hitachi
// HD44780 chipset and its clones.
//
// The display can be wired directly to GPIO lines, using 4 or 8 data lines,
// or through a 74HC595 shift register driven by a hardware or bit-banged SPI
// bus, like the Adafruit I2C/SPI LCD backpack.
//
// The R/W line is never used to read the busy flag. Every command is
// followed by a fixed delay long enough for the slowest documented
// instruction.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

type writeMode bool

type ifMode byte

const (
	modeCommand writeMode = false
	modeData    writeMode = true

	mode4Bit ifMode = 0x04
	mode8Bit ifMode = 0x08
)

// Instructions.
const (
	cmdClearDisplay   byte = 0x01
	cmdReturnHome     byte = 0x02
	cmdEntryModeSet   byte = 0x04
	cmdDisplayControl byte = 0x08
	cmdCursorShift    byte = 0x10
	cmdFunctionSet    byte = 0x20
	cmdSetCGRAMAddr   byte = 0x40
	cmdSetDDRAMAddr   byte = 0x80
)

// Entry mode flags.
const (
	entryLeft      byte = 0x02
	entryAutoShift byte = 0x01
)

// Display control flags.
const (
	controlDisplayOn byte = 0x04
	controlCursorOn  byte = 0x02
	controlBlinkOn   byte = 0x01
)

// Cursor and display shift flags.
const (
	shiftDisplay byte = 0x08
	shiftRight   byte = 0x04
)

// Function set flags.
const (
	function8Bit    byte = 0x10
	functionTwoLine byte = 0x08
	function5x10    byte = 0x04
)

const (
	delayPowerOn   = 50 * time.Millisecond
	delayInitFirst = 4100 * time.Microsecond
	delayInitNext  = 100 * time.Microsecond
	delayEnable    = time.Microsecond
	// Clear and home take 1.52ms.
	delayClearHome = 2 * time.Millisecond
)

// Font is the character font selected at initialization.
type Font int

const (
	// Font5x8 is the standard font, available on every display.
	Font5x8 Font = iota
	// Font5x10 is only supported by single line displays.
	Font5x10
)

// rowOffsets are the DDRAM addresses of the first column of each row. Rows 2
// and 3 of 4 line displays continue rows 0 and 1.
var rowOffsets = [4]byte{0x00, 0x40, 0x14, 0x54}

// Opts is the display geometry.
type Opts struct {
	Rows int
	Cols int
	Font Font
}

// DefaultOpts is a 16x2 display.
var DefaultOpts = Opts{Rows: 2, Cols: 16, Font: Font5x8}

// Dev is a character LCD display.
//
// Dev is not safe for concurrent use.
//
// Implements periph.io/x/conn/v3/display.TextDisplay and
// display.DisplayBacklight.
type Dev struct {
	bus      bus
	rows     int
	cols     int
	function byte
	control  byte
	entry    byte
}

func newDev(b bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{bus: b}
	if err := d.Begin(opts.Cols, opts.Rows, opts.Font); err != nil {
		return nil, err
	}
	return d, nil
}

// Begin initializes the display for the given geometry.
//
// The controller is not reset when the host starts, so the whole datasheet
// initialization by instruction is replayed: it brings the controller to a
// known state from any interface mode. Begin is called by the constructors
// and can be called again to recover a display that was power cycled.
func (d *Dev) Begin(cols, rows int, font Font) error {
	if rows < 1 || rows > len(rowOffsets) {
		return fmt.Errorf("hd44780: unsupported number of rows %d", rows)
	}
	if cols < 1 || cols*rows > 80 || (rows > 1 && cols > 40) {
		return fmt.Errorf("hd44780: unsupported geometry %dx%d", cols, rows)
	}
	d.rows = rows
	d.cols = cols
	d.function = 0
	if d.bus.mode() == mode8Bit {
		d.function |= function8Bit
	}
	if rows > 1 {
		d.function |= functionTwoLine
	}
	if font == Font5x10 && rows == 1 {
		d.function |= function5x10
	}

	sleep(delayPowerOn)
	if err := d.bus.setRS(modeCommand); err != nil {
		return wrap(err)
	}
	if err := d.bus.setEnable(gpio.Low); err != nil {
		return wrap(err)
	}
	// Figure 23 and 24 of the datasheet. The first three words are function
	// sets to 8 bits, whatever the current interface width.
	attention := byte(0x30)
	if d.bus.mode() == mode4Bit {
		attention = 0x03
	}
	for _, wait := range []time.Duration{delayInitFirst, delayInitNext, 0} {
		if err := d.writeWord(attention); err != nil {
			return err
		}
		sleep(wait)
	}
	if d.bus.mode() == mode4Bit {
		if err := d.writeWord(0x02); err != nil {
			return err
		}
	}

	if err := d.Command(cmdFunctionSet | d.function); err != nil {
		return err
	}
	d.control = 0
	if err := d.Command(cmdDisplayControl | d.control); err != nil {
		return err
	}
	if err := d.Clear(); err != nil {
		return err
	}
	d.entry = entryLeft
	if err := d.Command(cmdEntryModeSet | d.entry); err != nil {
		return err
	}
	if err := d.Home(); err != nil {
		return err
	}
	d.control = controlDisplayOn
	if err := d.Command(cmdDisplayControl | d.control); err != nil {
		return err
	}
	return d.SetBacklight(true)
}

// Command sends an instruction byte.
func (d *Dev) Command(b byte) error {
	return d.send(b, modeCommand)
}

// WriteByte writes one character at the cursor. Codes 0 to 7 are the custom
// characters defined with CreateChar.
func (d *Dev) WriteByte(b byte) error {
	return d.send(b, modeData)
}

// Write writes characters at the cursor. Bytes are character codes of the
// display's ROM, which matches ASCII for printable characters except for
// 0x5c and 0x7e.
func (d *Dev) Write(p []byte) (n int, err error) {
	for _, b := range p {
		if err = d.send(b, modeData); err != nil {
			return
		}
		n++
	}
	return
}

// WriteString writes text at the cursor.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

// Clears the screen and moves the cursor to the first position.
func (d *Dev) Clear() error {
	if err := d.Command(cmdClearDisplay); err != nil {
		return err
	}
	sleep(delayClearHome)
	return nil
}

// Move the cursor home (MinRow(),MinCol()) and undo display shifts.
func (d *Dev) Home() error {
	if err := d.Command(cmdReturnHome); err != nil {
		return err
	}
	sleep(delayClearHome)
	return nil
}

// SetCursor moves the cursor to col, row, both starting at 0. Rows past the
// last one select the last row.
func (d *Dev) SetCursor(col, row int) error {
	if row >= d.rows {
		row = d.rows - 1
	}
	if row < 0 {
		row = 0
	}
	if col < 0 {
		col = 0
	}
	return d.Command(cmdSetDDRAMAddr | ddramAddress(col, row))
}

func ddramAddress(col, row int) byte {
	return (byte(col) + rowOffsets[row]) &^ cmdSetDDRAMAddr
}

// Move the cursor to arbitrary position, starting at (MinRow(),MinCol()).
func (d *Dev) MoveTo(row, col int) error {
	if row < d.MinRow() || row > d.rows || col < d.MinCol() || col > d.cols {
		return fmt.Errorf("hd44780: MoveTo(%d,%d) value out of range", row, col)
	}
	return d.SetCursor(col-1, row-1)
}

// Move the cursor forward or backward.
func (d *Dev) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Backward:
		return d.Command(cmdCursorShift)
	case display.Forward:
		return d.Command(cmdCursorShift | shiftRight)
	default:
		return fmt.Errorf("hd44780: %w", display.ErrNotImplemented)
	}
}

// ScrollLeft shifts the whole display one position left without changing
// its content.
func (d *Dev) ScrollLeft() error {
	return d.Command(cmdCursorShift | shiftDisplay)
}

// ScrollRight shifts the whole display one position right.
func (d *Dev) ScrollRight() error {
	return d.Command(cmdCursorShift | shiftDisplay | shiftRight)
}

// LeftToRight makes text flow to the right of the cursor.
func (d *Dev) LeftToRight() error {
	d.entry |= entryLeft
	return d.Command(cmdEntryModeSet | d.entry)
}

// RightToLeft makes text flow to the left of the cursor.
func (d *Dev) RightToLeft() error {
	d.entry &^= entryLeft
	return d.Command(cmdEntryModeSet | d.entry)
}

// AutoScroll shifts the display on every character written so the cursor
// stays in place, right justifying text from the cursor.
func (d *Dev) AutoScroll(enabled bool) error {
	if enabled {
		d.entry |= entryAutoShift
	} else {
		d.entry &^= entryAutoShift
	}
	return d.Command(cmdEntryModeSet | d.entry)
}

// Turn the display on / off. The content is kept.
func (d *Dev) Display(on bool) error {
	return d.setControl(controlDisplayOn, on)
}

// ShowCursor turns the underline cursor on or off.
func (d *Dev) ShowCursor(on bool) error {
	return d.setControl(controlCursorOn, on)
}

// Blink turns the blinking block cursor on or off.
func (d *Dev) Blink(on bool) error {
	return d.setControl(controlBlinkOn, on)
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
//
// The HD44780 block cursor always blinks, so CursorBlink and CursorBlock are
// the same.
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	control := d.control
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			control &^= controlCursorOn | controlBlinkOn
		case display.CursorUnderline:
			control |= controlCursorOn
		case display.CursorBlink, display.CursorBlock:
			control |= controlBlinkOn
		default:
			return fmt.Errorf("hd44780: unexpected cursor: %d", mode)
		}
	}
	d.control = control
	return d.Command(cmdDisplayControl | d.control)
}

func (d *Dev) setControl(flag byte, on bool) error {
	if on {
		d.control |= flag
	} else {
		d.control &^= flag
	}
	return d.Command(cmdDisplayControl | d.control)
}

// CreateChar defines custom character location (0 to 7) from 8 rows of 5
// pixels, the low 5 bits of each byte. The cursor is moved home afterwards
// since the address counter was pointing in CGRAM.
func (d *Dev) CreateChar(location byte, charmap [8]byte) error {
	location &= 0x07
	if err := d.Command(cmdSetCGRAMAddr | location<<3); err != nil {
		return err
	}
	for _, row := range charmap {
		if err := d.WriteByte(row & 0x1f); err != nil {
			return err
		}
	}
	return d.SetCursor(0, 0)
}

// Turn the display's backlight on or off. Any non zero intensity turns it on.
func (d *Dev) Backlight(intensity display.Intensity) error {
	return d.SetBacklight(intensity > 0)
}

// SetBacklight turns the backlight on or off. It does nothing when no
// backlight is wired.
func (d *Dev) SetBacklight(on bool) error {
	if err := d.bus.setBacklight(on); err != nil {
		return wrap(err)
	}
	return nil
}

// Return the number of columns the display supports
func (d *Dev) Cols() int {
	return d.cols
}

// Return the number of rows the display supports.
func (d *Dev) Rows() int {
	return d.rows
}

// Return the min column position.
func (d *Dev) MinCol() int {
	return 1
}

// Return the min row position.
func (d *Dev) MinRow() int {
	return 1
}

// Return info about the display.
func (d *Dev) String() string {
	return fmt.Sprintf("HD44780{%s, %d-bit, Rows: %d, Cols: %d}", d.bus, d.bus.mode(), d.rows, d.cols)
}

// Halt clears the display, turns the backlight off, and turns the display off.
// The underlying bus is halted too.
func (d *Dev) Halt() error {
	err := errors.Join(d.Clear(), d.SetBacklight(false), d.Display(false))
	if herr := d.bus.halt(); herr != nil {
		err = errors.Join(err, wrap(herr))
	}
	return err
}

// send writes a command or data byte, as two nibbles high first on a 4-bit
// bus.
func (d *Dev) send(value byte, mode writeMode) error {
	if err := d.bus.setRS(mode); err != nil {
		return wrap(err)
	}
	if d.bus.mode() == mode8Bit {
		return d.writeWord(value)
	}
	if err := d.writeWord(value >> 4); err != nil {
		return err
	}
	return d.writeWord(value & 0x0f)
}

// writeWord presents value on the data lines and clocks it in.
func (d *Dev) writeWord(value byte) error {
	if err := d.bus.setData(value); err != nil {
		return wrap(err)
	}
	return d.pulseEnable()
}

// pulseEnable clocks the data lines into the controller on the falling edge
// of Enable. The pulse must be at least 450ns wide and instructions need 37us
// to execute.
func (d *Dev) pulseEnable() error {
	if err := d.bus.setEnable(gpio.Low); err != nil {
		return wrap(err)
	}
	sleep(delayEnable)
	if err := d.bus.setEnable(gpio.High); err != nil {
		return wrap(err)
	}
	sleep(delayEnable)
	if err := d.bus.setEnable(gpio.Low); err != nil {
		return wrap(err)
	}
	sleep(d.bus.settle())
	return nil
}

func wrap(err error) error {
	return fmt.Errorf("hd44780: %w", err)
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ conn.Resource = &Dev{}
