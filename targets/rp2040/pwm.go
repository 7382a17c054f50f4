//go:build rp2040

package main

import (
	"machine"

	"github.com/sparques/pwm"
)

// pwmSlice is the PWM slice driving a pin, in the shape the tinygo
// motor and speaker drivers expect
type pwmSlice struct {
	pwm.Group
}

// slicePWM finds the slice for pin and runs it at period nanoseconds
func slicePWM(pin machine.Pin, period uint64) (pwmSlice, uint8, error) {
	pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	s := pwmSlice{pwm.Get(pin)}
	if err := s.Configure(machine.PWMConfig{Period: period}); err != nil {
		return s, 0, err
	}
	ch, err := s.Channel(pin)
	if err != nil {
		return s, 0, err
	}
	s.Set(ch, 0)
	return s, ch, nil
}

func (s pwmSlice) SetPeriod(period uint64) error {
	return s.Group.Configure(machine.PWMConfig{Period: period})
}
