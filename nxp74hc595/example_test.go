// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nxp74hc595

import (
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	// Open the SPI Bus
	pc, err := spireg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer pc.Close()
	conn, err := pc.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		log.Fatal(err)
	}
	// The latch is on its own line rather than the chip select.
	dev, err := New(conn, &Opts{Latch: gpioreg.ByName("GPIO25")})
	if err != nil {
		log.Fatal(err)
	}
	// Get a GPIO group, and count on the low nibble.
	gr, err := dev.Group(0, 1, 2, 3)
	if err != nil {
		log.Fatal(err)
	}
	for i := range 16 {
		if err := gr.Out(gpio.GPIOValue(i), 0); err != nil {
			log.Fatal(err)
		}
		time.Sleep(100 * time.Millisecond)
	}
	// Or write the whole register at once.
	_ = dev.WriteByte(0xa5)
}
