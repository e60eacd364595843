package ecg

// Device defines the interface for ECG measurement units (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Readings() <-chan uint16
	SendCommand(cmd Command) error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
