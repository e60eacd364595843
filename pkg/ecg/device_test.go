package ecg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReading(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    uint16
		wantErr bool
	}{
		{
			name: "valid reading",
			line: "2048",
			want: 2048,
		},
		{
			name: "minimum value",
			line: "0",
			want: 0,
		},
		{
			name: "maximum value",
			line: "4095",
			want: 4095,
		},
		{
			name:    "invalid - out of ADC range",
			line:    "4096",
			wantErr: true,
		},
		{
			name:    "invalid - negative",
			line:    "-1",
			wantErr: true,
		},
		{
			name:    "invalid - not a number",
			line:    "abc",
			wantErr: true,
		},
		{
			name:    "invalid - trailing garbage",
			line:    "2048x",
			wantErr: true,
		},
		{
			name:    "invalid - float",
			line:    "2048.5",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReading(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	dev := New("COM3", 115200, 100)
	assert.NotNil(t, dev)
	assert.Equal(t, "COM3", dev.port)
	assert.Equal(t, 115200, dev.baudRate)
	assert.Equal(t, 100, dev.bufSize)
	assert.NotNil(t, dev.readings)
	assert.False(t, dev.IsConnected())
}

func TestNew_Defaults(t *testing.T) {
	dev := New("COM3", 0, 0)
	assert.NotNil(t, dev)
	assert.Equal(t, DefaultBaudRate, dev.baudRate)
	assert.Equal(t, DefaultBufferSize, dev.bufSize)
}

func TestCommandCodes(t *testing.T) {
	// The wire protocol depends on these exact values.
	assert.Equal(t, Command(1), StartMeasurement)
	assert.Equal(t, Command(2), StopMeasurement)
}

func TestSendCommand_NotConnected(t *testing.T) {
	dev := New("COM3", 115200, 100)
	err := dev.SendCommand(StartMeasurement)
	assert.Error(t, err)
}
