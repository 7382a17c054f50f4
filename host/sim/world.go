//go:build !tinygo

// Package sim simulates the robot's hardware on a host: a differential
// drivetrain in a room with one infra-red beacon, the beacon detectors,
// the ranging sensors, a character display and a speaker.
package sim

import (
	"math"
	"strconv"
	"sync"
	"time"

	"roboone/config"
	"roboone/core"
)

// DetectorCone is the half-angle in degrees over which a detector sees
// the beacon
const DetectorCone = 50

// RangeCM is how far the ranging sensors see
const RangeCM = 400

// Pose is where the robot stands relative to the beacon. Bearing is the
// direction of the beacon measured clockwise from the robot's front.
type Pose struct {
	Bearing    float64 // degrees, -180..180
	DistanceCM float64
}

// World is the simulated robot and its surroundings. It implements
// core.Drivetrain, core.DetectorSampler and core.DistanceSensors.
type World struct {
	mu   sync.Mutex
	now  func() time.Time
	pose Pose
	last time.Time

	left, right int

	degPerSecPerUnit float64 // rotation rate per unit of wheel speed difference
	cmPerSecPerUnit  float64

	walls []float64 // cm per ranging channel, 0 is out of range
}

// NewWorld places the robot at pose. The drive model is derived from the
// motion settings so that commanded turns come out the right size.
func NewWorld(cfg config.MotionConfig, channels int, pose Pose, now func() time.Time) *World {
	if now == nil {
		now = time.Now
	}
	w := &World{
		now:   now,
		pose:  pose,
		last:  now(),
		walls: make([]float64, channels),
	}
	if cfg.TurnMillisPerDegree > 0 && cfg.TurnSpeed > 0 {
		w.degPerSecPerUnit = 1000 / float64(cfg.TurnMillisPerDegree*2*cfg.TurnSpeed)
	}
	if cfg.MaxMotorSpeed > 0 {
		w.cmPerSecPerUnit = float64(cfg.FullSpeedCMPerSec) / float64(cfg.MaxMotorSpeed)
	}
	w.normalize()
	return w
}

// SetWall sets what a ranging channel sees; 0 means nothing in range
func (w *World) SetWall(channel int, cm float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if channel >= 0 && channel < len(w.walls) {
		w.walls[channel] = cm
	}
}

// Pose returns the robot's current pose
func (w *World) Pose() Pose {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	return w.pose
}

// Speeds returns the wheel speeds last set
func (w *World) Speeds() (left, right int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.left, w.right
}

// advance integrates the motion since the last update. Called with mu held.
func (w *World) advance() {
	now := w.now()
	dt := now.Sub(w.last).Seconds()
	w.last = now
	if dt <= 0 {
		return
	}

	// turning clockwise moves the beacon anticlockwise relative to the front
	w.pose.Bearing -= float64(w.left-w.right) * w.degPerSecPerUnit * dt

	// driving forwards closes on a beacon ahead and opens on one behind
	travel := float64(w.left+w.right) / 2 * w.cmPerSecPerUnit * dt
	w.pose.DistanceCM -= travel * math.Cos(w.pose.Bearing*math.Pi/180)
	if w.pose.DistanceCM < 0 {
		w.pose.DistanceCM = 0
	}
	w.normalize()
}

func (w *World) normalize() {
	b := math.Mod(w.pose.Bearing, 360)
	if b > 180 {
		b -= 360
	} else if b <= -180 {
		b += 360
	}
	w.pose.Bearing = b
}

func (w *World) SetSpeeds(left, right int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	if left != w.left || right != w.right {
		core.DebugPrintln("[SIM] drive " + strconv.Itoa(left) + " " + strconv.Itoa(right))
	}
	w.left, w.right = left, right
	return nil
}

// SampleDetectors reports every detector whose cone contains the beacon
func (w *World) SampleDetectors() (core.DetectorMask, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()

	var m core.DetectorMask
	for _, d := range []struct {
		bit     core.DetectorMask
		bearing float64
	}{
		{core.DetectorFront, 0},
		{core.DetectorRight, 90},
		{core.DetectorBack, 180},
		{core.DetectorLeft, -90},
	} {
		if angleBetween(w.pose.Bearing, d.bearing) <= DetectorCone {
			m |= d.bit
		}
	}
	return m, nil
}

func (w *World) Channels() int {
	return len(w.walls)
}

func (w *World) Distance(channel int) (uint16, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if channel < 0 || channel >= len(w.walls) {
		return 0, false, core.InvariantValue("sim", "distance channel", channel)
	}
	cm := w.walls[channel]
	if cm <= 0 || cm > RangeCM {
		return 0, false, nil
	}
	return uint16(cm), true, nil
}

// angleBetween is the absolute difference of two bearings, 0..180
func angleBetween(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
