// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcu

import (
	"errors"
	"testing"

	"github.com/GermanBionicSystems/charlcd/nxp74hc595"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

type fakeBus struct {
	written []byte
	err     error
}

func (b *fakeBus) Tx(w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	b.written = append(b.written, w...)
	for i := range r {
		r[i] = 0xff
	}
	return nil
}

func (b *fakeBus) Transfer(w byte) (byte, error) {
	err := b.Tx([]byte{w}, nil)
	return 0xff, err
}

type fakePin struct {
	sets []bool
}

func (p *fakePin) Set(high bool) {
	p.sets = append(p.sets, high)
}

func TestSPI(t *testing.T) {
	bus := &fakeBus{}
	c := SPI(bus)
	require.NoError(t, c.Tx([]byte{1, 2}, nil))
	r := make([]byte, 1)
	require.NoError(t, c.Tx([]byte{3}, r))
	assert.Equal(t, []byte{0xff}, r)
	require.NoError(t, c.TxPackets([]spi.Packet{{W: []byte{4}}, {W: []byte{5}, KeepCS: true}}))
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, bus.written)
	assert.Error(t, c.TxPackets([]spi.Packet{{W: []byte{6}, BitsPerWord: 9}}))
	assert.Equal(t, "mcu.SPI", c.String())

	bus.err = errors.New("bus fault")
	err := c.Tx([]byte{7}, nil)
	assert.ErrorIs(t, err, bus.err)
	assert.EqualError(t, err, "mcu: bus fault")
}

func TestPin(t *testing.T) {
	fp := &fakePin{}
	p := Pin("GP17", fp)
	require.NoError(t, p.Out(gpio.High))
	require.NoError(t, p.Out(gpio.Low))
	assert.Equal(t, []bool{true, false}, fp.sets)
	assert.Equal(t, "GP17", p.Name())
	assert.Equal(t, "Out/Low", p.Function())
	assert.Error(t, p.PWM(gpio.DutyHalf, 0))
}

func TestShiftRegister(t *testing.T) {
	bus := &fakeBus{}
	latch := &fakePin{}
	sr, err := nxp74hc595.New(SPI(bus), &nxp74hc595.Opts{Latch: Pin("GP17", latch)})
	require.NoError(t, err)
	require.NoError(t, sr.WriteByte(0x81))
	assert.Equal(t, []byte{0x81}, bus.written)
	// High at start, then low and high around the transfer.
	assert.Equal(t, []bool{true, false, true}, latch.sets)
}
