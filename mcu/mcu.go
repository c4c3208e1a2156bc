// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mcu adapts TinyGo buses and pins to the periph.io interfaces used
// by the display drivers.
//
// On a microcontroller, machine.SPI0 satisfies drivers.SPI and machine.Pin
// satisfies OutputPin once configured as an output:
//
//	conn := mcu.SPI(machine.SPI0)
//	latch := mcu.Pin("GP17", machine.GP17)
//	sr, err := nxp74hc595.New(conn, &nxp74hc595.Opts{Latch: latch})
package mcu

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"
)

// OutputPin is a digital output, like machine.Pin.
type OutputPin interface {
	Set(high bool)
}

// Pin returns p as a gpio.PinOut. The pin must already be configured as an
// output.
func Pin(name string, p OutputPin) gpio.PinOut {
	return &pin{name: name, p: p}
}

type pin struct {
	name  string
	p     OutputPin
	level gpio.Level
}

func (p *pin) String() string   { return p.name }
func (p *pin) Name() string     { return p.name }
func (p *pin) Number() int      { return -1 }
func (p *pin) Function() string { return "Out/" + p.level.String() }
func (p *pin) Halt() error      { return nil }

func (p *pin) Out(l gpio.Level) error {
	p.p.Set(bool(l))
	p.level = l
	return nil
}

func (p *pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("mcu: PWM is not supported")
}

// SPI returns bus as an spi.Conn. The bus must already be configured; its
// clock and mode are not changed. Chip select is left to the caller.
func SPI(bus drivers.SPI) spi.Conn {
	return &spiConn{bus: bus}
}

type spiConn struct {
	bus drivers.SPI
}

func (c *spiConn) String() string {
	return "mcu.SPI"
}

func (c *spiConn) Duplex() conn.Duplex {
	return conn.Full
}

func (c *spiConn) Tx(w, r []byte) error {
	if err := c.bus.Tx(w, r); err != nil {
		return fmt.Errorf("mcu: %w", err)
	}
	return nil
}

// TxPackets sends each packet in turn. KeepCS has no effect.
func (c *spiConn) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if pkt.BitsPerWord != 0 && pkt.BitsPerWord != 8 {
			return fmt.Errorf("mcu: unsupported %d bits per word", pkt.BitsPerWord)
		}
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

var _ spi.Conn = &spiConn{}
var _ gpio.PinOut = &pin{}
