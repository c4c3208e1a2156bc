// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780_test

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/display/displaytest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

func mustPin(name string) gpio.PinOut {
	p := gpioreg.ByName(name)
	if p == nil {
		log.Fatalf("no pin %q", name)
	}
	return p
}

// This example drives a display wired to GPIO lines in 4 bit mode. D4-D7
// of the display are on GPIO27, GPIO22, GPIO23 and GPIO24; R/W is tied to
// ground.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	data := hd44780.PinGroup(mustPin("GPIO27"), mustPin("GPIO22"), mustPin("GPIO23"), mustPin("GPIO24"))
	rs := mustPin("GPIO17")
	enable := mustPin("GPIO18")
	bl := hd44780.NewBacklight(mustPin("GPIO25"))
	lcd, err := hd44780.NewGPIO(data, rs, nil, enable, bl, &hd44780.DefaultOpts)
	if err != nil {
		log.Fatal(err)
	}
	n, err := lcd.WriteString("Hello")
	fmt.Printf("n=%d, err=%v\n", n, err)
	fmt.Println("lcd=", lcd.String())
	time.Sleep(5 * time.Second)

	_ = lcd.MoveTo(1, 1)
	_, _ = lcd.WriteString("Line 1")
	_ = lcd.MoveTo(2, 2)
	_, _ = lcd.WriteString("Line 2")
	time.Sleep(5 * time.Second)
	_ = lcd.Clear()

	errs := displaytest.TestTextDisplay(lcd, true)
	for _, e := range errs {
		if !errors.Is(e, display.ErrNotImplemented) {
			log.Println(e)
		}
	}
}

// Print an uptime counter on a display behind a 74HC595 on the default SPI
// port, with the register latch on the chip select line.
func ExampleNewSPI() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	p, err := spireg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()
	lcd, err := hd44780.NewSPI(p, nil, hd44780.AdafruitBackpack, &hd44780.DefaultOpts)
	if err != nil {
		log.Fatal(err)
	}
	_, _ = lcd.WriteString("Hello, Sparky!")
	start := time.Now()
	for range 10 {
		_ = lcd.SetCursor(0, 1)
		_, _ = fmt.Fprintf(lcd, "%d", int(time.Since(start).Seconds()))
		time.Sleep(time.Second)
	}
}

// Bit-bang the 74HC595 when the SPI peripheral is taken.
func ExampleNewSoftSPI() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	lcd, err := hd44780.NewSoftSPI(mustPin("GPIO5"), mustPin("GPIO6"), mustPin("GPIO13"), hd44780.AdafruitBackpack, &hd44780.Opts{Rows: 4, Cols: 20})
	if err != nil {
		log.Fatal(err)
	}
	defer lcd.Halt()
	heart := [8]byte{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}
	_ = lcd.CreateChar(0, heart)
	_, _ = lcd.WriteString("I ")
	_ = lcd.WriteByte(0)
	_, _ = lcd.WriteString(" periph")
	time.Sleep(5 * time.Second)
}
