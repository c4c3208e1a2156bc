// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcdspi prints a message on an HD44780 character display and counts the
// seconds since start on the second row.
//
// Hardware Setup:
//
// A 74HC595 on SPI0, outputs wired like the Adafruit backpack:
//
//	74HC595    Display
//	QB         RS
//	QC         E
//	QD-QG      D7-D4
//	QH         backlight transistor
//	DS         GPIO10 (SPI0 MOSI)
//	SH_CP      GPIO11 (SPI0 CLK)
//	ST_CP      GPIO8 (SPI0 CE0)
//
// Without hardware, -mode sim runs the same sketch on a simulated controller
// and draws it on the terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/lcdsim"
	"github.com/GermanBionicSystems/charlcd/screen"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var (
	mode     = flag.String("mode", "spi", "Wiring: spi, softspi, gpio or sim")
	spiPort  = flag.String("spi", "", "SPI port name (empty for default)")
	spiHz    = flag.Int64("hz", 0, "SPI clock in Hz (0 for the driver default)")
	latch    = flag.String("latch", "", "74HC595 latch pin; empty uses the SPI chip select")
	clk      = flag.String("clk", "GPIO11", "softspi clock pin")
	data     = flag.String("data", "GPIO10", "softspi data pin")
	rs       = flag.String("rs", "GPIO17", "gpio RS pin")
	rw       = flag.String("rw", "", "gpio R/W pin (empty when tied to ground)")
	enable   = flag.String("e", "GPIO18", "gpio enable pin")
	dataPins = flag.String("d", "GPIO27,GPIO22,GPIO23,GPIO24", "gpio data pins, D4-D7 or D0-D7, comma separated")
	bl       = flag.String("bl", "", "gpio backlight pin")
	cols     = flag.Int("cols", 16, "Display columns")
	rows     = flag.Int("rows", 2, "Display rows")
	msg      = flag.String("msg", "Hello, Sparky!", "Message on the first row")
	count    = flag.Int("n", 0, "Number of updates, 0 to run forever")
	interval = flag.Duration("interval", time.Second, "Delay between updates")
	png      = flag.String("png", "", "sim: save the final display to this PNG file")
)

func main() {
	flag.Parse()
	opts := &hd44780.Opts{Rows: *rows, Cols: *cols}

	if *mode == "sim" {
		if err := runSim(opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	if _, err := host.Init(); err != nil {
		log.Fatalf("Failed to initialize periph.io: %v", err)
	}
	dev, err := open(*mode, opts)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()
	fmt.Printf("Display initialized: %s\n", dev)
	if err := run(dev, *msg, *count, *interval, nil); err != nil {
		log.Fatal(err)
	}
}

// open returns the display for one of the hardware wirings.
func open(mode string, opts *hd44780.Opts) (*hd44780.Dev, error) {
	switch mode {
	case "spi":
		p, err := spireg.Open(*spiPort)
		if err != nil {
			return nil, fmt.Errorf("failed to open SPI port: %w", err)
		}
		if *spiHz != 0 {
			if err := p.LimitSpeed(physic.Frequency(*spiHz) * physic.Hertz); err != nil {
				return nil, err
			}
		}
		l, err := pinByName(*latch)
		if err != nil {
			return nil, err
		}
		return hd44780.NewSPI(p, l, hd44780.AdafruitBackpack, opts)
	case "softspi":
		pins, err := pinsByName(*clk, *data, *latch)
		if err != nil {
			return nil, err
		}
		if pins[2] == nil {
			return nil, errors.New("softspi needs -latch")
		}
		return hd44780.NewSoftSPI(pins[0], pins[1], pins[2], hd44780.AdafruitBackpack, opts)
	case "gpio":
		d, err := pinsByName(parsePins(*dataPins)...)
		if err != nil {
			return nil, err
		}
		ctl, err := pinsByName(*rs, *rw, *enable, *bl)
		if err != nil {
			return nil, err
		}
		var backlight display.DisplayBacklight
		if ctl[3] != nil {
			backlight = hd44780.NewBacklight(ctl[3])
		}
		return hd44780.NewGPIO(hd44780.PinGroup(d...), ctl[0], ctl[1], ctl[2], backlight, opts)
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// runSim runs the sketch on a simulated display behind an SPI backpack.
func runSim(opts *hd44780.Opts) error {
	sim := lcdsim.New(opts.Rows, opts.Cols)
	dev, err := hd44780.NewAdafruitSPIBackpack(sim.Conn(hd44780.AdafruitBackpack), opts)
	if err != nil {
		return err
	}
	s := screen.New(nil)
	defer s.Halt()
	show := func() error {
		_, err := s.Show(sim.Lines(), sim.State().Backlight)
		return err
	}
	if err := run(dev, *msg, *count, *interval, show); err != nil {
		return err
	}
	if *png == "" {
		return nil
	}
	img, err := screen.Snapshot(sim.Lines(), sim.State().Backlight, nil)
	if err != nil {
		return err
	}
	return screen.SavePNG(*png, img)
}

// run prints msg on the first row, then n times the seconds elapsed on the
// second row, one every interval. n <= 0 runs forever. after, if set, is
// called after each update.
func run(dev *hd44780.Dev, msg string, n int, interval time.Duration, after func() error) error {
	if _, err := dev.WriteString(msg); err != nil {
		return err
	}
	start := time.Now()
	for i := 0; n <= 0 || i < n; i++ {
		if err := dev.SetCursor(0, 1); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(dev, "%d", int(time.Since(start).Seconds())); err != nil {
			return err
		}
		if after != nil {
			if err := after(); err != nil {
				return err
			}
		}
		time.Sleep(interval)
	}
	return nil
}

// parsePins splits a comma separated list of pin names.
func parsePins(s string) []string {
	var out []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// pinsByName looks up each pin. Empty names give nil pins.
func pinsByName(names ...string) ([]gpio.PinOut, error) {
	out := make([]gpio.PinOut, len(names))
	for i, name := range names {
		p, err := pinByName(name)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func pinByName(name string) (gpio.PinOut, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("GPIO pin %s not found", name)
	}
	return p, nil
}
