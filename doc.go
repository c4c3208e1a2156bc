// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package charlcd is a container for the HD44780 character display driver,
// the 74HC595 and bit-banged SPI transports it runs on, and the tools to
// simulate and preview a display without hardware.
//
// Start with package hd44780.
package charlcd
