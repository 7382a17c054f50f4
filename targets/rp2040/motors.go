//go:build rp2040

package main

import (
	"machine"

	"roboone/core"

	"tinygo.org/x/drivers/l293x"
)

// motorPeriod is 20 kHz, above hearing
const motorPeriod = 1e9 / 20000

// motorPins are one L293 channel: two direction pins and the enable pin
type motorPins struct {
	a1, a2, en machine.Pin
}

// drivetrain implements core.Drivetrain on an L293D dual H-bridge
type drivetrain struct {
	left, right l293x.PWMDevice
}

func newDrivetrain(left, right motorPins) (*drivetrain, error) {
	l, err := newMotor(left)
	if err != nil {
		return nil, err
	}
	r, err := newMotor(right)
	if err != nil {
		return nil, err
	}
	return &drivetrain{left: l, right: r}, nil
}

func newMotor(p motorPins) (l293x.PWMDevice, error) {
	slice, ch, err := slicePWM(p.en, motorPeriod)
	if err != nil {
		return l293x.PWMDevice{}, err
	}
	m := l293x.NewWithSpeed(p.a1, p.a2, ch, slice)
	if err := m.Configure(); err != nil {
		return l293x.PWMDevice{}, err
	}
	return m, nil
}

func (d *drivetrain) SetSpeeds(left, right int) error {
	setMotor(&d.left, left)
	setMotor(&d.right, right)
	return nil
}

// setMotor converts a signed drivetrain speed to the driver's percentage
func setMotor(m *l293x.PWMDevice, speed int) {
	pct := uint32(abs(speed) * 100 / core.MaxMotorSpeed)
	switch {
	case speed > 0:
		m.Forward(pct)
	case speed < 0:
		m.Backward(pct)
	default:
		m.Stop()
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
