// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"github.com/GermanBionicSystems/charlcd/nxp74hc595"
	"github.com/GermanBionicSystems/charlcd/softspi"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPIFrequency is the clock used on hardware SPI buses.
const SPIFrequency = 9 * physic.MegaHertz

// NewAdafruitSPIBackpack returns a display configured to use the SPI side of
// the Adafruit I2C/SPI backpack. The SPI side uses a 74HC595 Serial->Parallel
// shift register, with its latch on the chip select line.
//
// # Product Information
//
// https://www.adafruit.com/product/292
func NewAdafruitSPIBackpack(conn spi.Conn, opts *Opts) (*Dev, error) {
	sr, err := nxp74hc595.New(conn, nil)
	if err != nil {
		return nil, fmt.Errorf("hd44780: %w", err)
	}
	return NewShiftRegister(sr, AdafruitBackpack, opts)
}

// NewSPI connects to a 74HC595 on a hardware SPI port and returns the
// initialized display wired to it as described by pins.
//
// latch is optional. Leave it nil when the register latch is on the chip
// select of the port.
func NewSPI(p spi.Port, latch gpio.PinOut, pins PinMap, opts *Opts) (*Dev, error) {
	c, err := p.Connect(SPIFrequency, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("hd44780: %w", err)
	}
	sr, err := nxp74hc595.New(c, &nxp74hc595.Opts{Latch: latch})
	if err != nil {
		return nil, fmt.Errorf("hd44780: %w", err)
	}
	return NewShiftRegister(sr, pins, opts)
}

// NewSoftSPI bit-bangs the 74HC595 through three GPIO lines: the serial
// clock (SH_CP), the serial data (DS) and the latch (ST_CP). It returns the
// initialized display wired to the register as described by pins.
func NewSoftSPI(clk, data, latch gpio.PinOut, pins PinMap, opts *Opts) (*Dev, error) {
	p, err := softspi.New(clk, data, latch)
	if err != nil {
		return nil, fmt.Errorf("hd44780: %w", err)
	}
	// Zero frequency: the GPIO writes are slower than the 74HC595 needs.
	c, err := p.Connect(0, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("hd44780: %w", err)
	}
	sr, err := nxp74hc595.New(c, nil)
	if err != nil {
		return nil, fmt.Errorf("hd44780: %w", err)
	}
	return NewShiftRegister(sr, pins, opts)
}
