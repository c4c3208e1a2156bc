// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

var errOutputOnly = errors.New("lcdsim: lines are driven by the host")

// Wiring is the controller wired to GPIO lines.
type Wiring struct {
	RS        gpio.PinOut
	RW        gpio.PinOut
	E         gpio.PinOut
	Backlight gpio.PinOut
	// Data holds D4-D7 in 4-bit wiring, D0-D7 in 8-bit wiring, offset 0
	// being the lowest line.
	Data gpio.Group
}

// Pins returns fake GPIO lines connected to the controller. width is the
// number of data lines wired, 4 or 8.
func (c *Controller) Pins(width int) *Wiring {
	rs := &line{name: "LCD_RS", number: 0}
	rw := &line{name: "LCD_RW", number: 1}
	data := &dataGroup{width: width}
	first := 0
	if width == 4 {
		first = 4
	}
	for ix := range width {
		data.pins = append(data.pins, &line{name: fmt.Sprintf("LCD_D%d", first+ix), number: 3 + first + ix})
	}
	e := &line{name: "LCD_E", number: 2}
	e.onOut = func(prev, l gpio.Level) {
		if prev && !l && !rw.level {
			c.Strobe(bool(rs.level), data.lines())
		}
	}
	bl := &line{name: "LCD_BL", number: 12}
	bl.onOut = func(_, l gpio.Level) {
		c.SetBacklight(bool(l))
	}
	return &Wiring{RS: rs, RW: rw, E: e, Backlight: bl, Data: data}
}

// line is one fake GPIO output.
type line struct {
	name   string
	number int
	level  gpio.Level
	onOut  func(prev, l gpio.Level)
}

func (l *line) String() string   { return l.name }
func (l *line) Name() string     { return l.name }
func (l *line) Number() int      { return l.number }
func (l *line) Function() string { return "Out" }
func (l *line) Halt() error      { return nil }

func (l *line) Out(level gpio.Level) error {
	prev := l.level
	l.level = level
	if l.onOut != nil {
		l.onOut(prev, level)
	}
	return nil
}

func (l *line) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("lcdsim: PWM not supported")
}

// dataGroup is the data bus.
type dataGroup struct {
	width int
	pins  []*line
}

func (g *dataGroup) lines() byte {
	var v byte
	for ix, p := range g.pins {
		if p.level {
			v |= 1 << ix
		}
	}
	if g.width == 4 {
		return v << 4
	}
	return v
}

func (g *dataGroup) Pins() []pin.Pin {
	out := make([]pin.Pin, len(g.pins))
	for ix, p := range g.pins {
		out[ix] = p
	}
	return out
}

func (g *dataGroup) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(g.pins) {
		return nil
	}
	return g.pins[offset]
}

func (g *dataGroup) ByName(name string) pin.Pin {
	for _, p := range g.pins {
		if p.name == name {
			return p
		}
	}
	return nil
}

func (g *dataGroup) ByNumber(number int) pin.Pin {
	for _, p := range g.pins {
		if p.number == number {
			return p
		}
	}
	return nil
}

func (g *dataGroup) Out(value, mask gpio.GPIOValue) error {
	if mask == 0 {
		mask = gpio.GPIOValue(1<<len(g.pins)) - 1
	}
	for ix, p := range g.pins {
		bit := gpio.GPIOValue(1 << ix)
		if mask&bit != 0 {
			p.level = value&bit != 0
		}
	}
	return nil
}

func (g *dataGroup) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	return 0, errOutputOnly
}

func (g *dataGroup) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return 0, gpio.NoEdge, errOutputOnly
}

func (g *dataGroup) Halt() error {
	return nil
}

func (g *dataGroup) String() string {
	names := make([]string, len(g.pins))
	for ix, p := range g.pins {
		names[ix] = p.name
	}
	return "[" + strings.Join(names, " ") + "]"
}

var _ gpio.PinOut = &line{}
var _ gpio.Group = &dataGroup{}
