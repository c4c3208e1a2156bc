// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/charlcd/nxp74hc595"
	"periph.io/x/conn/v3/gpio"
)

// NC marks a line of a PinMap that isn't wired.
const NC = -1

// PinMap is the wiring of the display lines to the shift register outputs:
// each field is the bit of the frame byte, 0 for QA to 7 for QH. The display
// is always used in 4 bit mode through a shift register.
type PinMap struct {
	RS        int
	RW        int
	E         int
	D4        int
	D5        int
	D6        int
	D7        int
	Backlight int
}

// AdafruitBackpack is the wiring of the SPI side of the Adafruit I2C/SPI LCD
// backpack, also used by most discrete 74HC595 hookups:
//
//	QB RS, QC E, QD D7, QE D6, QF D5, QG D4, QH backlight
//
// R/W is tied to ground.
var AdafruitBackpack = PinMap{RS: 1, RW: NC, E: 2, D4: 6, D5: 5, D6: 4, D7: 3, Backlight: 7}

// Validate returns an error if a line is out of range or two lines share an
// output. RS, E and D4-D7 are required.
func (m PinMap) Validate() error {
	var used byte
	for _, l := range []struct {
		name     string
		bit      int
		optional bool
	}{
		{"RS", m.RS, false},
		{"RW", m.RW, true},
		{"E", m.E, false},
		{"D4", m.D4, false},
		{"D5", m.D5, false},
		{"D6", m.D6, false},
		{"D7", m.D7, false},
		{"Backlight", m.Backlight, true},
	} {
		if l.bit == NC && l.optional {
			continue
		}
		if l.bit < 0 || l.bit > 7 {
			return fmt.Errorf("hd44780: %s on invalid output %d", l.name, l.bit)
		}
		if used&(1<<l.bit) != 0 {
			return fmt.Errorf("hd44780: %s shares output %d", l.name, l.bit)
		}
		used |= 1 << l.bit
	}
	return nil
}

// Frame returns the byte to shift out for the given line levels. nibble is
// the value of D7-D4 in its low 4 bits. R/W, when wired, is always low.
func (m PinMap) Frame(rs, e, backlight bool, nibble byte) byte {
	var f byte
	set := func(bit int, on bool) {
		if on && bit != NC {
			f |= 1 << bit
		}
	}
	set(m.RS, rs)
	set(m.E, e)
	set(m.Backlight, backlight)
	set(m.D4, nibble&0x01 != 0)
	set(m.D5, nibble&0x02 != 0)
	set(m.D6, nibble&0x04 != 0)
	set(m.D7, nibble&0x08 != 0)
	return f
}

// Decode is the inverse of Frame.
func (m PinMap) Decode(frame byte) (rs, e, backlight bool, nibble byte) {
	get := func(bit int) bool {
		return bit != NC && frame&(1<<bit) != 0
	}
	for ix, bit := range []int{m.D4, m.D5, m.D6, m.D7} {
		if get(bit) {
			nibble |= 1 << ix
		}
	}
	return get(m.RS), get(m.E), get(m.Backlight), nibble
}

const delaySettleShift = 40 * time.Microsecond

// shiftBus is the display behind a 74HC595. Every line change rebuilds the
// frame and shifts it out.
type shiftBus struct {
	sr        *nxp74hc595.Dev
	pins      PinMap
	rs        bool
	enable    bool
	backlight bool
	nibble    byte
}

// NewShiftRegister returns a display wired to the outputs of a 74HC595 as
// described by pins, and initializes it.
func NewShiftRegister(sr *nxp74hc595.Dev, pins PinMap, opts *Opts) (*Dev, error) {
	if sr == nil {
		return nil, errors.New("hd44780: nil shift register")
	}
	if err := pins.Validate(); err != nil {
		return nil, err
	}
	return newDev(&shiftBus{sr: sr, pins: pins}, opts)
}

func (b *shiftBus) String() string {
	return b.sr.String()
}

func (b *shiftBus) mode() ifMode {
	return mode4Bit
}

func (b *shiftBus) flush() error {
	return b.sr.WriteByte(b.pins.Frame(b.rs, b.enable, b.backlight, b.nibble))
}

func (b *shiftBus) setRS(m writeMode) error {
	b.rs = bool(m)
	return b.flush()
}

func (b *shiftBus) setData(value byte) error {
	b.nibble = value & 0x0f
	return b.flush()
}

func (b *shiftBus) setEnable(l gpio.Level) error {
	b.enable = bool(l)
	return b.flush()
}

// setBacklight is a no-op when the backlight isn't wired.
func (b *shiftBus) setBacklight(on bool) error {
	if b.pins.Backlight == NC {
		return nil
	}
	b.backlight = on
	return b.flush()
}

func (b *shiftBus) settle() time.Duration {
	return delaySettleShift
}

func (b *shiftBus) halt() error {
	return b.sr.Halt()
}
