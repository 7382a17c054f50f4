package motion

import (
	"time"

	"roboone/core"
)

// Odometer dead-reckons distance from the commanded wheel speeds.
// Rotation in place does not count as distance travelled.
type Odometer struct {
	clock     core.Clock
	cmPerUnit float64

	last        time.Time
	left, right int
	travelled   float64 // cm, always increasing
	mark        float64
}

// NewOdometer creates an Odometer; fullSpeedCMPS is the ground speed at
// maxMotorSpeed.
func NewOdometer(clock core.Clock, maxMotorSpeed, fullSpeedCMPS int) *Odometer {
	return &Odometer{
		clock:     clock,
		cmPerUnit: float64(fullSpeedCMPS) / float64(maxMotorSpeed),
		last:      clock.Now(),
	}
}

func (o *Odometer) advance() {
	now := o.clock.Now()
	dt := now.Sub(o.last).Seconds()
	o.last = now
	if dt <= 0 {
		return
	}
	if v := o.velocity(); v != 0 {
		if v < 0 {
			v = -v
		}
		o.travelled += v * dt
	}
}

// velocity returns the forward speed in cm/s, zero when spinning
func (o *Odometer) velocity() float64 {
	if (o.left > 0) != (o.right > 0) || (o.left < 0) != (o.right < 0) {
		return 0
	}
	return float64(o.left+o.right) / 2 * o.cmPerUnit
}

// SetSpeeds records new wheel speeds
func (o *Odometer) SetSpeeds(left, right int) {
	o.advance()
	o.left, o.right = left, right
}

// Mark sets the zero point for SinceMark
func (o *Odometer) Mark() {
	o.advance()
	o.mark = o.travelled
}

// SinceMark returns the distance travelled since the last Mark in cm
func (o *Odometer) SinceMark() int {
	o.advance()
	return int(o.travelled - o.mark + 0.5)
}

// Velocity returns the current forward speed in cm/s, negative backwards
func (o *Odometer) Velocity() int {
	v := o.velocity()
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
