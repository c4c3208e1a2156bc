// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The 74HC595 is a serial shift register. It converts a serial stream to a
// parallel output. For example, you can use it as an SPI => Parallel
// converter.
//
// Each transfer shifts one byte into the register; the byte appears on the
// QA..QH outputs when the storage register clock (latch, RCLK) rises. When
// the latch is wired to the SPI chip select the bus does this on its own.
// Otherwise pass the latch line in Opts.Latch.
//
// # Datasheet
//
// https://www.nexperia.com/product/74HC595D
//
// There's a nice tutorial on the device here:
//
// https://docs.arduino.cc/tutorials/communication/guide-to-shift-out/
package nxp74hc595

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

const (
	devMask = 0xff
	devName = "74HC595"
	numPins = 8
)

var (
	ErrNotImplemented = errors.New("nxp74hc595: not implemented")
	errHalted         = errors.New("nxp74hc595: device halted")
)

// Opts holds the optional wiring of a 74HC595.
type Opts struct {
	// Latch is the storage register clock line. When set it is pulled low
	// before each transfer and high after it.
	Latch gpio.PinOut
}

// Dev represents a 74hc595 device.
type Dev struct {
	// Pins are the eight outputs, QA (0) to QH (7).
	Pins []gpio.PinOut

	mu    sync.Mutex
	conn  spi.Conn
	latch gpio.PinOut
	value byte
	// valid is false until the first successful transfer, so the first pin
	// write always reaches the device.
	valid bool
}

// New accepts an spi.Conn and returns a new 74HC595 device. opts may be nil.
func New(conn spi.Conn, opts *Opts) (*Dev, error) {
	if conn == nil {
		return nil, errors.New("nxp74hc595: nil spi.Conn")
	}
	dev := &Dev{conn: conn, Pins: make([]gpio.PinOut, numPins)}
	if opts != nil {
		dev.latch = opts.Latch
	}
	for ix := range numPins {
		dev.Pins[ix] = &Pin{number: ix, name: fmt.Sprintf("%s_Q%c", devName, 'A'+ix), dev: dev}
	}
	if dev.latch != nil {
		if err := dev.latch.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("nxp74hc595: latch: %w", err)
		}
	}
	return dev, nil
}

// WriteByte shifts b into the register and latches it to the outputs.
//
// Unlike the pin and group writes, it always transmits, even when b equals
// the current output value.
func (dev *Dev) WriteByte(b byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.tx(b)
}

// Value returns the last byte latched to the outputs.
func (dev *Dev) Value() byte {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// write does the masked write used by pins and groups. Only bits set in
// mask change, and nothing is sent if the outputs would not change.
func (dev *Dev) write(value, mask gpio.GPIOValue) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	newValue := byte((gpio.GPIOValue(dev.value) & (devMask ^ mask)) | (value & mask))
	if dev.valid && dev.value == newValue {
		return nil
	}
	return dev.tx(newValue)
}

// tx must be called with mu held.
func (dev *Dev) tx(b byte) error {
	if dev.conn == nil {
		return errHalted
	}
	if dev.latch != nil {
		if err := dev.latch.Out(gpio.Low); err != nil {
			return fmt.Errorf("nxp74hc595: latch: %w", err)
		}
	}
	if err := dev.conn.Tx([]byte{b}, nil); err != nil {
		return fmt.Errorf("nxp74hc595: %w", err)
	}
	if dev.latch != nil {
		if err := dev.latch.Out(gpio.High); err != nil {
			return fmt.Errorf("nxp74hc595: latch: %w", err)
		}
	}
	dev.value = b
	dev.valid = true
	return nil
}

// Group returns a subset of pins on the device as a gpio.Group. A Group
// allows you to write to multiple pins in a single transaction. Offset 0 of
// the group is the first pin number given.
func (dev *Dev) Group(pins ...int) (gpio.Group, error) {
	gr := Group{dev: dev, pins: make([]Pin, len(pins))}
	for ix, pinNumber := range pins {
		if pinNumber < 0 || pinNumber >= numPins {
			return nil, fmt.Errorf("nxp74hc595: invalid pin %d", pinNumber)
		}
		gr.pins[ix] = Pin{number: pinNumber, name: fmt.Sprintf("%s_Q%c", devName, 'A'+pinNumber), dev: dev}
	}
	return &gr, nil
}

// Halt disables the device. Further writes fail.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.Pins = make([]gpio.PinOut, 0)
	dev.conn = nil
	return nil
}

func (dev *Dev) String() string {
	return devName
}
