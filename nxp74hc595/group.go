// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nxp74hc595

import (
	"strconv"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

// Group implements gpio.Group and provides a way to write to multiple GPO pins
// in a single transaction.
type Group struct {
	dev  *Dev
	pins []Pin
}

// Pins returns the set of GPO Pins that are associated with this group.
func (gr *Group) Pins() []pin.Pin {
	result := make([]pin.Pin, len(gr.pins))
	for ix := range gr.pins {
		result[ix] = &gr.pins[ix]
	}
	return result
}

// ByOffset returns the pin at offset within the group.
func (gr *Group) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(gr.pins) {
		return nil
	}
	return &gr.pins[offset]
}

// ByName returns the pin of the group with the given name.
func (gr *Group) ByName(name string) pin.Pin {
	for ix := range gr.pins {
		if gr.pins[ix].name == name {
			return &gr.pins[ix]
		}
	}
	return nil
}

// ByNumber returns the pin of the group with the given output number.
func (gr *Group) ByNumber(number int) pin.Pin {
	for ix := range gr.pins {
		if gr.pins[ix].number == number {
			return &gr.pins[ix]
		}
	}
	return nil
}

// Out writes the value to the device. Bit n of value and mask refers to
// offset n of the group. A zero mask selects every pin of the group.
func (gr *Group) Out(value, mask gpio.GPIOValue) error {
	if mask == 0 {
		mask = gpio.GPIOValue(1<<len(gr.pins)) - 1
	}
	var wrMask, wrValue gpio.GPIOValue
	for ix := range gr.pins {
		currentBit := gpio.GPIOValue(1 << ix)
		if mask&currentBit == 0 {
			continue
		}
		outBit := gpio.GPIOValue(1 << gr.pins[ix].number)
		wrMask |= outBit
		if value&currentBit != 0 {
			wrValue |= outBit
		}
	}
	return gr.dev.write(wrValue, wrMask)
}

// Read is not available for this device.
func (gr *Group) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	return 0, ErrNotImplemented
}

// WaitForEdge is not available for this device.
func (gr *Group) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return 0, gpio.NoEdge, ErrNotImplemented
}

// Halt frees the group's resources and prevents it from being used again.
func (gr *Group) Halt() error {
	gr.pins = nil
	return nil
}

func (gr *Group) String() string {
	var sb strings.Builder
	sb.WriteString(gr.dev.String())
	sb.WriteString("[ ")
	for ix := range gr.pins {
		sb.WriteString(strconv.Itoa(gr.pins[ix].number))
		sb.WriteString(" ")
	}
	sb.WriteString("]")
	return sb.String()
}

var _ gpio.Group = &Group{}
