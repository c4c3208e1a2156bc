// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"github.com/GermanBionicSystems/charlcd/hd44780"
	"periph.io/x/conn/v3/gpio"
)

// ShiftRegister is a 74HC595 wired to the controller, seen from its serial
// input pins.
type ShiftRegister struct {
	// Clock is SH_CP: DS is shifted in on the rising edge.
	Clock gpio.PinOut
	// Data is DS.
	Data gpio.PinOut
	// Latch is ST_CP: the shift register is copied to the outputs on the
	// rising edge.
	Latch gpio.PinOut

	decoder frameDecoder
	shift   byte
}

// ShiftRegister returns the serial side of a 74HC595 whose outputs are wired
// to the controller as described by pins.
func (c *Controller) ShiftRegister(pins hd44780.PinMap) *ShiftRegister {
	sr := &ShiftRegister{decoder: frameDecoder{c: c, pins: pins}}
	ds := &line{name: "595_DS", number: 14}
	clk := &line{name: "595_SHCP", number: 11}
	clk.onOut = func(prev, l gpio.Level) {
		if !prev && l {
			sr.shift <<= 1
			if ds.level {
				sr.shift |= 1
			}
		}
	}
	latch := &line{name: "595_STCP", number: 12}
	latch.onOut = func(prev, l gpio.Level) {
		if !prev && l {
			sr.decoder.latch(sr.shift)
		}
	}
	sr.Clock, sr.Data, sr.Latch = clk, ds, latch
	return sr
}

// Frames returns every byte latched to the outputs so far.
func (sr *ShiftRegister) Frames() []byte {
	return append([]byte(nil), sr.decoder.frames...)
}
