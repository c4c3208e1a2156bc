// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nxp74hc595

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

func newRecorded(t *testing.T) (*Dev, *spitest.Record) {
	t.Helper()
	record := &spitest.Record{Ops: make([]conntest.IO, 0)}
	c, err := record.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	dev, err := New(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	return dev, record
}

func written(ops []conntest.IO) []byte {
	var out []byte
	for _, op := range ops {
		out = append(out, op.W...)
	}
	return out
}

func TestBasic(t *testing.T) {
	dev, record := newRecorded(t)

	gr, err := dev.Group(6, 5, 4, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 16 {
		if err := gr.Out(gpio.GPIOValue(i), 0); err != nil {
			t.Error(err)
		}
	}
	if len(record.Ops) != 16 {
		t.Errorf("group writes: got %d transfers, want 16", len(record.Ops))
	}
	// Offset 0 is Q6, offset 3 is Q3.
	if got := dev.Value(); got != 0x78 {
		t.Errorf("Value() = %#x, want 0x78", got)
	}

	singlePin := dev.Pins[7]
	for i := range 20 {
		if err = singlePin.Out(gpio.Level(i%2 == 0)); err != nil {
			t.Error(err)
		}
		if err = dev.Pins[0].Out(i%2 != 0); err != nil {
			t.Error(err)
		}
	}
	if err = dev.Pins[0].Out(gpio.Low); err != nil {
		t.Error(err)
	}
	if err = singlePin.Out(gpio.High); err != nil {
		t.Error(err)
	}
	if got := dev.Value(); got != 0xf8 {
		t.Errorf("Value() = %#x, want 0xf8", got)
	}
}

func TestPinWritesSkipUnchanged(t *testing.T) {
	dev, record := newRecorded(t)

	// The first write always goes out, even when it sets the power-on value.
	if err := dev.Pins[2].Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := dev.Pins[2].Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := dev.Pins[2].Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(written(record.Ops), []byte{0x00, 0x04}); diff != "" {
		t.Errorf("transfers difference (-got +want):\n%s", diff)
	}
}

func TestWriteByteAlwaysTransmits(t *testing.T) {
	dev, record := newRecorded(t)

	for _, b := range []byte{0x42, 0x42, 0x46, 0x42} {
		if err := dev.WriteByte(b); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(written(record.Ops), []byte{0x42, 0x42, 0x46, 0x42}); diff != "" {
		t.Errorf("transfers difference (-got +want):\n%s", diff)
	}
	// Pin writes start from the last frame.
	if err := dev.Pins[7].Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if got := dev.Value(); got != 0xc2 {
		t.Errorf("Value() = %#x, want 0xc2", got)
	}
}

// eventLog orders latch edges against SPI transfers.
type eventLog []string

type latchPin struct {
	gpiotest.Pin
	log *eventLog
}

func (p *latchPin) Out(l gpio.Level) error {
	*p.log = append(*p.log, "latch "+l.String())
	return p.Pin.Out(l)
}

type logConn struct {
	log *eventLog
	err error
}

func (c *logConn) String() string                { return "logConn" }
func (c *logConn) Duplex() conn.Duplex            { return conn.Half }
func (c *logConn) TxPackets(p []spi.Packet) error { return errors.New("not used") }
func (c *logConn) Tx(w, r []byte) error {
	if c.err != nil {
		return c.err
	}
	*c.log = append(*c.log, fmt.Sprintf("tx %#02x", w[0]))
	return nil
}

func TestLatch(t *testing.T) {
	var log eventLog
	latch := &latchPin{Pin: gpiotest.Pin{N: "LATCH"}, log: &log}
	dev, err := New(&logConn{log: &log}, &Opts{Latch: latch})
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteByte(0x5a); err != nil {
		t.Fatal(err)
	}
	want := eventLog{"latch High", "latch Low", "tx 0x5a", "latch High"}
	if diff := cmp.Diff(log, want); diff != "" {
		t.Errorf("events difference (-got +want):\n%s", diff)
	}
}

func TestTxError(t *testing.T) {
	var log eventLog
	wantErr := errors.New("bus fault")
	dev, err := New(&logConn{log: &log, err: wantErr}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteByte(1); !errors.Is(err, wantErr) {
		t.Errorf("WriteByte() = %v, want %v", err, wantErr)
	}
	if dev.Value() != 0 {
		t.Errorf("Value() changed after a failed transfer")
	}
}

func TestHalt(t *testing.T) {
	dev, _ := newRecorded(t)
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteByte(1); err == nil {
		t.Error("WriteByte() after Halt() succeeded")
	}
}

func TestGroup(t *testing.T) {
	dev, _ := newRecorded(t)
	if _, err := dev.Group(8); err == nil {
		t.Error("Group(8) succeeded")
	}
	gr, err := dev.Group(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if s := gr.String(); s != "74HC595[ 1 2 ]" {
		t.Errorf("String() = %q", s)
	}
	if p := gr.ByName("74HC595_QC"); p == nil || p.Number() != 2 {
		t.Errorf("ByName(74HC595_QC) = %v", p)
	}
	if p := gr.ByNumber(1); p == nil || p.Name() != "74HC595_QB" {
		t.Errorf("ByNumber(1) = %v", p)
	}
	if p := gr.ByOffset(2); p != nil {
		t.Errorf("ByOffset(2) = %v, want nil", p)
	}
	if _, err := gr.Read(0); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Read() = %v", err)
	}
}
