// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"errors"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/spi"
)

// frameDecoder turns shift register output bytes into line transitions.
type frameDecoder struct {
	c      *Controller
	pins   hd44780.PinMap
	enable bool
	frames []byte
}

func (d *frameDecoder) latch(frame byte) {
	d.frames = append(d.frames, frame)
	rs, e, bl, nibble := d.pins.Decode(frame)
	if d.pins.Backlight != hd44780.NC {
		d.c.SetBacklight(bl)
	}
	if d.pins.RW != hd44780.NC && frame&(1<<d.pins.RW) != 0 {
		// A read cycle; there is nothing to read.
		d.enable = e
		return
	}
	if d.enable && !e {
		d.c.Strobe(rs, nibble<<4)
	}
	d.enable = e
}

// FrameConn is an spi.Conn feeding a 74HC595 whose outputs are wired to the
// controller as described by a PinMap. Each byte written is one latched
// frame.
type FrameConn struct {
	frameDecoder
}

// Conn returns an spi.Conn standing for a 74HC595 wired to the controller.
func (c *Controller) Conn(pins hd44780.PinMap) *FrameConn {
	return &FrameConn{frameDecoder{c: c, pins: pins}}
}

// Frames returns every byte received so far.
func (f *FrameConn) Frames() []byte {
	return append([]byte(nil), f.frames...)
}

func (f *FrameConn) String() string {
	return "lcdsim"
}

// Duplex implements conn.Conn.
func (f *FrameConn) Duplex() conn.Duplex {
	return conn.Half
}

// Tx latches each byte of w in turn. r must be empty.
func (f *FrameConn) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("lcdsim: the shift register can't be read")
	}
	for _, b := range w {
		f.latch(b)
	}
	return nil
}

// TxPackets implements spi.Conn.
func (f *FrameConn) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := f.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

var _ spi.Conn = &FrameConn{}
