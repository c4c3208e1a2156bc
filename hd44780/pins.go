// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

var errOutputOnly = errors.New("hd44780: pin group is output only")

// pinGroup is a gpio.Group made of unrelated pins. Out writes them one at a
// time, in offset order.
type pinGroup struct {
	pins []gpio.PinOut
}

// PinGroup returns a gpio.Group over individual output pins, for hosts or
// drivers that don't provide one. Offset 0 is the first pin given.
func PinGroup(pins ...gpio.PinOut) gpio.Group {
	return &pinGroup{pins: pins}
}

func (g *pinGroup) Pins() []pin.Pin {
	result := make([]pin.Pin, len(g.pins))
	for ix, p := range g.pins {
		result[ix] = p
	}
	return result
}

func (g *pinGroup) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(g.pins) {
		return nil
	}
	return g.pins[offset]
}

func (g *pinGroup) ByName(name string) pin.Pin {
	for _, p := range g.pins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (g *pinGroup) ByNumber(number int) pin.Pin {
	for _, p := range g.pins {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

// Out sets the pins selected by mask. A zero mask selects every pin.
func (g *pinGroup) Out(value, mask gpio.GPIOValue) error {
	if mask == 0 {
		mask = gpio.GPIOValue(1<<len(g.pins)) - 1
	}
	for ix, p := range g.pins {
		bit := gpio.GPIOValue(1 << ix)
		if mask&bit == 0 {
			continue
		}
		if err := p.Out(value&bit != 0); err != nil {
			return err
		}
	}
	return nil
}

func (g *pinGroup) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	return 0, errOutputOnly
}

func (g *pinGroup) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return 0, gpio.NoEdge, errOutputOnly
}

func (g *pinGroup) Halt() error {
	var errs []error
	for _, p := range g.pins {
		errs = append(errs, p.Halt())
	}
	return errors.Join(errs...)
}

func (g *pinGroup) String() string {
	names := make([]string, len(g.pins))
	for ix, p := range g.pins {
		names[ix] = p.Name()
	}
	return "[" + strings.Join(names, " ") + "]"
}

var _ gpio.Group = &pinGroup{}
