// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// GPIOMonoBacklight is a backlight switched by a single GPIO line, usually
// through a transistor.
type GPIOMonoBacklight struct {
	pin gpio.PinOut
	on  gpio.Level
}

// NewBacklight returns a backlight that is lit when pin is high.
func NewBacklight(pin gpio.PinOut) *GPIOMonoBacklight {
	return &GPIOMonoBacklight{pin: pin, on: gpio.High}
}

// NewActiveLowBacklight returns a backlight that is lit when pin is low, as
// with a PNP transistor.
func NewActiveLowBacklight(pin gpio.PinOut) *GPIOMonoBacklight {
	return &GPIOMonoBacklight{pin: pin, on: gpio.Low}
}

// Backlight turns the backlight on for any non zero intensity.
func (bl *GPIOMonoBacklight) Backlight(intensity display.Intensity) error {
	if intensity == 0 {
		return bl.pin.Out(!bl.on)
	}
	return bl.pin.Out(bl.on)
}

var _ display.DisplayBacklight = &GPIOMonoBacklight{}
