// Package serial opens the serial link to the robot from a host.
package serial

import (
	"io"

	"roboone/config"
)

// Port is an open serial link. Tests and the simulator substitute pipes.
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the settings of the robot's UART
func DefaultConfig(device string) *Config {
	return FromRobotConfig(device, config.Default().Serial)
}

// FromRobotConfig takes the link settings from the robot configuration;
// device overrides the configured one when set.
func FromRobotConfig(device string, sc config.SerialConfig) *Config {
	if device == "" {
		device = sc.Device
	}
	return &Config{
		Device:      device,
		Baud:        sc.Baud,
		ReadTimeout: sc.ReadTimeoutMs,
	}
}
