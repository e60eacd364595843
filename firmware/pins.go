//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 2 // ADC read interval in milliseconds (500 Hz)

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// ECG analog front end output pin
	PIN_ADC = machine.A1

	// Measurement control commands (ASCII digits)
	CMD_START = '1'
	CMD_STOP  = '2'

	// Serial configuration
	// Baud rate calculation: one reading per line, "4095\n" = 5 bytes max.
	// 500 lines/sec * 5 bytes/line = 2,500 bytes/sec
	// UART 8N1: 10 bits/byte = 25,000 baud minimum. With 3x headroom: 75,000 baud
	// 115200 provides ~4.6x headroom (11,520 bytes/sec max / 2,500 bytes/sec required)
	UART_BAUD_RATE = 115200
)
