// Package motion owns the drivetrain: move, turn and stop primitives, the
// motion task that serves them, and dead-reckoned odometry.
package motion

import (
	"context"
	"time"

	"golang.org/x/exp/constraints"

	"roboone/config"
	"roboone/core"
)

// Activity is what the drivetrain is doing
type Activity uint8

const (
	Stopped Activity = iota
	Forwards
	Backwards
	Turning
)

func (a Activity) String() string {
	switch a {
	case Forwards:
		return "Forwards"
	case Backwards:
		return "Backwards"
	case Turning:
		return "Turning"
	}
	return "Stopped"
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

func sign[T constraints.Signed](v T) T {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Actuator drives the motors. It is owned by one task; the last commanded
// speed and trims are private to it.
type Actuator struct {
	drive core.Drivetrain
	clock core.Clock
	cfg   config.MotionConfig

	speed     int
	trimLeft  int
	trimRight int
	activity  Activity

	// Called whenever the wheel speeds change, for odometry
	onChange func(left, right int)
}

// NewActuator creates an Actuator on drive
func NewActuator(drive core.Drivetrain, clock core.Clock, cfg config.MotionConfig) *Actuator {
	return &Actuator{drive: drive, clock: clock, cfg: cfg}
}

// Activity returns the current activity
func (a *Actuator) Activity() Activity {
	return a.activity
}

// Speed returns the last commanded speed in drivetrain units
func (a *Actuator) Speed() int {
	return a.speed
}

// Trims returns the last commanded trims
func (a *Actuator) Trims() (left, right int) {
	return a.trimLeft, a.trimRight
}

// channel computes one motor value: the trim and the fixed channel offset
// add to the magnitude in the direction of travel.
func (a *Actuator) channel(speed, trim, offset int) int {
	if speed == 0 {
		return 0
	}
	mag := abs(speed) + trim + offset
	mag = clamp(mag, 0, a.cfg.MaxMotorSpeed)
	return sign(speed) * mag
}

func (a *Actuator) set(left, right int) bool {
	if err := a.drive.SetSpeeds(left, right); err != nil {
		core.DebugPrintln("[MOTION] drivetrain: " + err.Error())
		return false
	}
	core.RecordTrace(core.EvtMotion, uint8(a.activity), 0, int32(left), int32(right))
	if a.onChange != nil {
		a.onChange(left, right)
	}
	return true
}

// Stop brakes both motors and forgets the current move
func (a *Actuator) Stop() bool {
	a.speed, a.trimLeft, a.trimRight = 0, 0, 0
	a.activity = Stopped
	return a.set(0, 0)
}

// Move runs both motors at speed (negative is backwards) with per-side trims
func (a *Actuator) Move(speed, trimLeft, trimRight int) bool {
	speed = clamp(speed, -a.cfg.MaxMotorSpeed, a.cfg.MaxMotorSpeed)
	a.speed, a.trimLeft, a.trimRight = speed, trimLeft, trimRight
	switch {
	case speed > 0:
		a.activity = Forwards
	case speed < 0:
		a.activity = Backwards
	default:
		a.activity = Stopped
	}
	return a.set(
		a.channel(speed, trimLeft, a.cfg.LeftOffset),
		a.channel(speed, trimRight, a.cfg.RightOffset),
	)
}

// NormalizeTurn maps degrees onto the rotation actually made: 0..359
// first, then anything beyond the maximum throw becomes a turn the other
// way. Positive is clockwise (right).
func NormalizeTurn(degrees, maxThrow int) int {
	d := ((degrees % 360) + 360) % 360
	if d > maxThrow {
		d -= 360
	}
	return d
}

// TurnDuration is the time spent rotating for a normalized turn
func (a *Actuator) TurnDuration(degrees int) time.Duration {
	return time.Duration(abs(degrees)*a.cfg.TurnMillisPerDegree) * time.Millisecond
}

// Turn brakes, rotates in place by degrees (positive is right), then
// resumes the move that was active before, or stays stopped.
// The task yields while the turn completes.
func (a *Actuator) Turn(ctx context.Context, degrees int) bool {
	d := NormalizeTurn(degrees, a.cfg.MaxThrowDegrees)
	speed, trimLeft, trimRight := a.speed, a.trimLeft, a.trimRight

	if !a.set(0, 0) {
		return false
	}
	if d != 0 {
		a.activity = Turning
		s := a.cfg.TurnSpeed * sign(d)
		if !a.set(s, -s) {
			a.Stop()
			return false
		}
		if err := a.clock.Sleep(ctx, a.TurnDuration(d)); err != nil {
			a.Stop()
			return false
		}
		if !a.set(0, 0) {
			return false
		}
	}

	if speed == 0 {
		a.activity = Stopped
		a.speed, a.trimLeft, a.trimRight = 0, 0, 0
		return true
	}
	return a.Move(speed, trimLeft, trimRight)
}
