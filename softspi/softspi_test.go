// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softspi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// receiver decodes the bit stream like a device on the bus would.
type receiver struct {
	mode     spi.Mode
	clk      gpio.Level
	mosi     gpio.Level
	selected bool
	bits     []gpio.Level
	// frames holds one entry per chip select cycle.
	frames [][]byte
	// stray counts sampling edges while deselected.
	stray int
}

func (r *receiver) sample(edgeTo gpio.Level) {
	cpol := gpio.Level(r.mode&spi.Mode2 != 0)
	leading := edgeTo != cpol
	cpha := r.mode&spi.Mode1 != 0
	if leading == cpha {
		return
	}
	if !r.selected {
		r.stray++
		return
	}
	r.bits = append(r.bits, r.mosi)
}

func (r *receiver) latch() {
	var frame []byte
	for i := 0; i+8 <= len(r.bits); i += 8 {
		var b byte
		for j := range 8 {
			if !r.bits[i+j] {
				continue
			}
			if r.mode&spi.LSBFirst != 0 {
				b |= 1 << j
			} else {
				b |= 0x80 >> j
			}
		}
		frame = append(frame, b)
	}
	r.frames = append(r.frames, frame)
	r.bits = nil
}

type line struct {
	gpiotest.Pin
	out func(l gpio.Level)
}

func (p *line) Out(l gpio.Level) error {
	if p.out != nil {
		p.out(l)
	}
	return p.Pin.Out(l)
}

func newWired(t *testing.T, mode spi.Mode) (*Port, *receiver, *line) {
	t.Helper()
	r := &receiver{mode: mode, clk: gpio.Level(mode&spi.Mode2 != 0), selected: false}
	clk := &line{Pin: gpiotest.Pin{N: "CLK"}}
	clk.out = func(l gpio.Level) {
		if l != r.clk {
			r.clk = l
			r.sample(l)
		}
	}
	mosi := &line{Pin: gpiotest.Pin{N: "MOSI"}}
	mosi.out = func(l gpio.Level) { r.mosi = l }
	cs := &line{Pin: gpiotest.Pin{N: "CS"}}
	cs.out = func(l gpio.Level) {
		if !l {
			r.selected = true
			return
		}
		if r.selected {
			r.latch()
		}
		r.selected = false
	}
	p, err := New(clk, mosi, cs)
	require.NoError(t, err)
	return p, r, cs
}

func TestModes(t *testing.T) {
	for _, mode := range []spi.Mode{spi.Mode0, spi.Mode1, spi.Mode2, spi.Mode3, spi.Mode0 | spi.LSBFirst, spi.Mode3 | spi.LSBFirst} {
		p, r, _ := newWired(t, mode)
		c, err := p.Connect(0, mode, 8)
		require.NoError(t, err)

		require.NoError(t, c.Tx([]byte{0x42, 0x81}, nil))
		require.NoError(t, c.Tx([]byte{0x00}, nil))
		require.NoError(t, c.Tx([]byte{0xff}, nil))

		assert.Equal(t, [][]byte{{0x42, 0x81}, {0x00}, {0xff}}, r.frames, "mode %#x", int(mode))
		assert.Zero(t, r.stray, "mode %#x", int(mode))
	}
}

func TestNoCS(t *testing.T) {
	p, r, cs := newWired(t, spi.Mode0)
	c, err := p.Connect(0, spi.Mode0|spi.NoCS, 8)
	require.NoError(t, err)
	require.NoError(t, c.Tx([]byte{0x01}, nil))
	assert.Empty(t, r.frames)
	assert.Equal(t, 8, r.stray)
	assert.Equal(t, gpio.Low, cs.L)
}

func TestTxPackets(t *testing.T) {
	p, r, _ := newWired(t, spi.Mode0)
	c, err := p.Connect(physic.MegaHertz, spi.Mode0, 8)
	require.NoError(t, err)

	err = c.TxPackets([]spi.Packet{
		{W: []byte{0x01}, KeepCS: true},
		{W: []byte{0x02}},
		{W: []byte{0x03}},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{0x01, 0x02}, {0x03}}, r.frames)
}

func TestReadUnsupported(t *testing.T) {
	p, _, _ := newWired(t, spi.Mode0)
	c, err := p.Connect(0, spi.Mode0, 8)
	require.NoError(t, err)
	assert.ErrorIs(t, c.Tx([]byte{0}, make([]byte, 1)), errNoRead)
	assert.ErrorIs(t, c.TxPackets([]spi.Packet{{R: make([]byte, 1)}}), errNoRead)
}

func TestConnect(t *testing.T) {
	p, _, _ := newWired(t, spi.Mode0)
	_, err := p.Connect(0, spi.Mode0, 12)
	assert.Error(t, err)
	_, err = p.Connect(-1, spi.Mode0, 8)
	assert.Error(t, err)
	_, err = p.Connect(0, spi.Mode(0x100), 8)
	assert.Error(t, err)

	require.NoError(t, p.LimitSpeed(physic.MegaHertz))
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	require.NoError(t, err)
	assert.Equal(t, physic.MegaHertz, c.(*Conn).f)
	assert.Contains(t, c.String(), "CLK=CLK")

	_, err = p.Connect(0, spi.Mode0, 8)
	assert.Error(t, err, "second Connect must fail")

	require.NoError(t, p.Close())
}

func TestNew(t *testing.T) {
	_, err := New(nil, &gpiotest.Pin{}, nil)
	assert.Error(t, err)
	p, err := New(&gpiotest.Pin{N: "A"}, &gpiotest.Pin{N: "B"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "softspi(CLK=A, MOSI=B, CS=none)", p.String())
}
