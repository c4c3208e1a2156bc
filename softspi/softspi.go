// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package softspi implements a write-only SPI port by bit-banging three GPIO
// lines: clock, data out (MOSI) and chip select.
//
// It is meant for shift registers like the 74HC595 wired to arbitrary pins,
// where the chip select doubles as the storage register latch. There is no
// MISO line, so reads are not supported.
//
// Words are sent most significant bit first unless spi.LSBFirst is requested,
// which matches shiftOut(MSBFIRST) used by most 74HC595 tutorials.
package softspi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3/cpu"
)

const supportedModes = spi.Mode3 | spi.HalfDuplex | spi.NoCS | spi.LSBFirst

var errNoRead = errors.New("softspi: reading is not supported, there is no MISO line")

// Port is a bit-banged SPI port. It implements spi.PortCloser.
type Port struct {
	mu        sync.Mutex
	clk       gpio.PinOut
	mosi      gpio.PinOut
	cs        gpio.PinOut
	limit     physic.Frequency
	connected bool
	closed    bool
}

// New returns a port driving clk and mosi. cs is optional; when nil the port
// behaves as if spi.NoCS was always set.
func New(clk, mosi, cs gpio.PinOut) (*Port, error) {
	if clk == nil || mosi == nil {
		return nil, errors.New("softspi: clock and data lines are required")
	}
	return &Port{clk: clk, mosi: mosi, cs: cs}, nil
}

func (p *Port) String() string {
	cs := "none"
	if p.cs != nil {
		cs = p.cs.Name()
	}
	return fmt.Sprintf("softspi(CLK=%s, MOSI=%s, CS=%s)", p.clk.Name(), p.mosi.Name(), cs)
}

// LimitSpeed caps the clock frequency of connections made afterwards.
func (p *Port) LimitSpeed(f physic.Frequency) error {
	if f < 0 {
		return fmt.Errorf("softspi: invalid speed %s", f)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limit = f
	return nil
}

// Connect configures the lines for the given mode and returns the
// connection. Only one connection can be made per port.
//
// A zero frequency clocks as fast as the GPIO writes allow. bits must be a
// multiple of 8.
func (p *Port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if f < 0 {
		return nil, fmt.Errorf("softspi: invalid speed %s", f)
	}
	if mode&^supportedModes != 0 {
		return nil, fmt.Errorf("softspi: unsupported mode %#x", int(mode))
	}
	if bits <= 0 || bits%8 != 0 {
		return nil, fmt.Errorf("softspi: unsupported %d bits per word", bits)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, errors.New("softspi: port closed")
	}
	if p.connected {
		return nil, errors.New("softspi: already connected")
	}
	if p.limit != 0 && (f == 0 || f > p.limit) {
		f = p.limit
	}
	c := &Conn{
		p:        p,
		f:        f,
		mode:     mode,
		bits:     bits,
		idle:     gpio.Level(mode&spi.Mode2 != 0),
		trailing: mode&spi.Mode1 != 0,
		useCS:    p.cs != nil && mode&spi.NoCS == 0,
	}
	if f != 0 {
		c.half = f.Period() / 2
	}
	if err := c.reset(); err != nil {
		return nil, err
	}
	p.connected = true
	return c, nil
}

// Close releases the port. The lines are left in their idle state.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Conn is a connection on a bit-banged port. It implements spi.Conn.
type Conn struct {
	p    *Port
	f    physic.Frequency
	mode spi.Mode
	bits int
	half time.Duration

	// idle is the clock level between transfers (CPOL).
	idle gpio.Level
	// trailing is set when data is sampled on the second clock edge (CPHA).
	trailing bool
	useCS    bool
}

func (c *Conn) String() string {
	return fmt.Sprintf("%s %s mode %d %d bits", c.p, c.f, int(c.mode&spi.Mode3), c.bits)
}

// Duplex implements conn.Conn.
func (c *Conn) Duplex() conn.Duplex {
	return conn.Half
}

// Tx shifts w out. r must be empty.
func (c *Conn) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errNoRead
	}
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if err := c.selectDev(); err != nil {
		return err
	}
	if err := c.shift(w); err != nil {
		return err
	}
	return c.deselect()
}

// TxPackets sends each packet in order. Chip select stays asserted across
// packets that set KeepCS.
func (c *Conn) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if len(pkt.R) != 0 {
			return errNoRead
		}
		if pkt.BitsPerWord != 0 && pkt.BitsPerWord%8 != 0 {
			return fmt.Errorf("softspi: unsupported %d bits per word", pkt.BitsPerWord)
		}
	}
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	selected := false
	for _, pkt := range pkts {
		if !selected {
			if err := c.selectDev(); err != nil {
				return err
			}
			selected = true
		}
		if err := c.shift(pkt.W); err != nil {
			return err
		}
		if !pkt.KeepCS {
			if err := c.deselect(); err != nil {
				return err
			}
			selected = false
		}
	}
	if selected {
		return c.deselect()
	}
	return nil
}

func (c *Conn) reset() error {
	if err := c.p.clk.Out(c.idle); err != nil {
		return fmt.Errorf("softspi: clock: %w", err)
	}
	if err := c.p.mosi.Out(gpio.Low); err != nil {
		return fmt.Errorf("softspi: data: %w", err)
	}
	return c.deselect()
}

func (c *Conn) selectDev() error {
	if !c.useCS {
		return nil
	}
	if err := c.p.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("softspi: chip select: %w", err)
	}
	return nil
}

func (c *Conn) deselect() error {
	if !c.useCS {
		return nil
	}
	c.wait()
	if err := c.p.cs.Out(gpio.High); err != nil {
		return fmt.Errorf("softspi: chip select: %w", err)
	}
	return nil
}

func (c *Conn) shift(w []byte) error {
	for _, b := range w {
		for i := range 8 {
			var bit gpio.Level
			if c.mode&spi.LSBFirst != 0 {
				bit = b&(1<<i) != 0
			} else {
				bit = b&(0x80>>i) != 0
			}
			if err := c.clock(bit); err != nil {
				return err
			}
		}
	}
	return nil
}

// clock sends one bit. With CPHA=0 the data is set up before the leading
// edge, with CPHA=1 it changes on the leading edge and is sampled on the
// trailing one.
func (c *Conn) clock(bit gpio.Level) error {
	if c.trailing {
		if err := c.p.clk.Out(!c.idle); err != nil {
			return fmt.Errorf("softspi: clock: %w", err)
		}
	}
	if err := c.p.mosi.Out(bit); err != nil {
		return fmt.Errorf("softspi: data: %w", err)
	}
	c.wait()
	if c.trailing {
		if err := c.p.clk.Out(c.idle); err != nil {
			return fmt.Errorf("softspi: clock: %w", err)
		}
	} else {
		if err := c.p.clk.Out(!c.idle); err != nil {
			return fmt.Errorf("softspi: clock: %w", err)
		}
		c.wait()
		if err := c.p.clk.Out(c.idle); err != nil {
			return fmt.Errorf("softspi: clock: %w", err)
		}
	}
	c.wait()
	return nil
}

func (c *Conn) wait() {
	if c.half > 0 {
		cpu.Nanospin(c.half)
	}
}

var _ spi.PortCloser = &Port{}
var _ spi.Conn = &Conn{}
