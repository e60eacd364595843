//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcSignal machine.ADC
	uart      = machine.UART0

	// Measurement state, toggled by serial commands
	measuring bool

	// Timing
	lastADCRead time.Time
)

func main() {
	// Configure ADC pin and set up the ADC with highest resolution
	PIN_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcSignal = machine.ADC{Pin: PIN_ADC}
	adcSignal.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	// Configure UART for measurement control and streaming
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Initialize timing
	lastADCRead = time.Now()

	// Main loop
	for {
		now := time.Now()

		// Check for serial input (non-blocking)
		processSerial()

		// Stream one reading per line while a measurement is running
		if measuring && now.Sub(lastADCRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			outputReading()
			lastADCRead = now
		}

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

func outputReading() {
	value := adcSignal.Get()

	// Output format: one decimal reading per line, e.g. "2048\n"
	print(value)
	print("\n")
}

func processSerial() {
	// Read available bytes from serial
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		switch data {
		case CMD_START:
			measuring = true
			lastADCRead = time.Now()
		case CMD_STOP:
			measuring = false
		default:
			// Ignore line terminators and anything else
		}
	}
}
