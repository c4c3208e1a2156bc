// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3/cpu"
)

// bus drives the lines of the controller. Implementations may buffer line
// changes but must have applied them all when a call returns.
type bus interface {
	fmt.Stringer
	mode() ifMode
	// setRS selects the instruction or data register. It also drives R/W low
	// when that line is wired.
	setRS(m writeMode) error
	// setData presents the low 4 or 8 bits of value on the data lines.
	setData(value byte) error
	setEnable(l gpio.Level) error
	setBacklight(on bool) error
	// settle is how long to wait after the falling edge of Enable.
	settle() time.Duration
	halt() error
}

// sleep waits for d. Waits shorter than a millisecond spin since the
// scheduler can't honor them.
var sleep = func(d time.Duration) {
	switch {
	case d <= 0:
	case d < time.Millisecond:
		cpu.Nanospin(d)
	default:
		time.Sleep(d)
	}
}

const delaySettleGPIO = 100 * time.Microsecond

// gpioBus is the display wired to GPIO lines.
type gpioBus struct {
	data      gpio.Group
	rs        gpio.PinOut
	rw        gpio.PinOut
	enable    gpio.PinOut
	backlight display.DisplayBacklight
	width     ifMode
}

// NewGPIO returns a display wired to GPIO lines and initializes it.
//
// The first 4 or 8 pins of the data group must be connected to the data
// lines. To use 4 bit mode, connect lines D4-D7 on the display, and for 8 bit
// mode, D0-D7. If dataPinGroup is 8 or more pins, the display is assumed to
// be connected using all 8 pins. Use PinGroup to build the group from
// individual pins.
//
// rw and backlight are optional. When rw is nil the R/W line of the display
// must be tied to ground.
func NewGPIO(dataPinGroup gpio.Group, rs, rw, enable gpio.PinOut, backlight display.DisplayBacklight, opts *Opts) (*Dev, error) {
	if dataPinGroup == nil || rs == nil || enable == nil {
		return nil, errors.New("hd44780: data, rs and enable lines are required")
	}
	n := len(dataPinGroup.Pins())
	width := mode4Bit
	switch {
	case n >= 8:
		width = mode8Bit
	case n < 4:
		return nil, fmt.Errorf("hd44780: need 4 or 8 data lines, got %d", n)
	}
	b := &gpioBus{
		data:      dataPinGroup,
		rs:        rs,
		rw:        rw,
		enable:    enable,
		backlight: backlight,
		width:     width,
	}
	return newDev(b, opts)
}

func (b *gpioBus) String() string {
	return b.data.String()
}

func (b *gpioBus) mode() ifMode {
	return b.width
}

func (b *gpioBus) setRS(m writeMode) error {
	if err := b.rs.Out(gpio.Level(m)); err != nil {
		return err
	}
	if b.rw != nil {
		return b.rw.Out(gpio.Low)
	}
	return nil
}

func (b *gpioBus) setData(value byte) error {
	mask := gpio.GPIOValue(0x0f)
	if b.width == mode8Bit {
		mask = 0xff
	}
	return b.data.Out(gpio.GPIOValue(value), mask)
}

func (b *gpioBus) setEnable(l gpio.Level) error {
	return b.enable.Out(l)
}

func (b *gpioBus) setBacklight(on bool) error {
	if b.backlight == nil {
		return nil
	}
	var intensity display.Intensity
	if on {
		intensity = 0xff
	}
	return b.backlight.Backlight(intensity)
}

func (b *gpioBus) settle() time.Duration {
	return delaySettleGPIO
}

func (b *gpioBus) halt() error {
	return b.data.Halt()
}
