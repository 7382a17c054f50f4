package config

import (
	"errors"
	"fmt"
)

var ErrInvalid = errors.New("invalid configuration")

// Validate checks configuration correctness.
// It does not mutate the configuration; call ApplyDefaults first.
func Validate(cfg *RobotConfig) error {
	m := cfg.Motion
	if m.MaxMotorSpeed <= 0 || m.MaxMotorSpeed > 255 {
		return fmt.Errorf("%w: motion.max_motor_speed %d outside 1..255", ErrInvalid, m.MaxMotorSpeed)
	}
	if abs(m.LeftOffset) >= m.MaxMotorSpeed || abs(m.RightOffset) >= m.MaxMotorSpeed {
		return fmt.Errorf("%w: motion offsets must be smaller than max_motor_speed", ErrInvalid)
	}
	if m.TurnSpeed <= 0 || m.TurnSpeed > m.MaxMotorSpeed {
		return fmt.Errorf("%w: motion.turn_speed %d outside 1..%d", ErrInvalid, m.TurnSpeed, m.MaxMotorSpeed)
	}
	if m.TurnMillisPerDegree < 0 {
		return fmt.Errorf("%w: motion.turn_ms_per_degree must not be negative", ErrInvalid)
	}
	if m.MaxThrowDegrees < 180 || m.MaxThrowDegrees > 359 {
		return fmt.Errorf("%w: motion.max_throw_degrees %d outside 180..359", ErrInvalid, m.MaxThrowDegrees)
	}
	if m.FullSpeedCMPerSec <= 0 || m.DefaultSpeedCMPS <= 0 || m.DefaultSpeedCMPS > m.FullSpeedCMPerSec {
		return fmt.Errorf("%w: motion speeds in cm/s are inconsistent", ErrInvalid)
	}

	if cfg.Sensor.SampleIntervalMs <= 0 {
		return fmt.Errorf("%w: sensor.sample_interval_ms must be positive", ErrInvalid)
	}
	for _, tag := range cfg.Sensor.DistanceTags {
		if len(tag) != 2 {
			return fmt.Errorf("%w: sensor tag %q must be two characters", ErrInvalid, tag)
		}
	}

	phases := []struct {
		name string
		p    PhaseConfig
	}{
		{"rough", cfg.Homing.Rough.PhaseConfig},
		{"fine", cfg.Homing.Fine.PhaseConfig},
		{"travel", cfg.Homing.Travel.PhaseConfig},
	}
	for _, ph := range phases {
		if ph.p.WindowMs < cfg.Sensor.SampleIntervalMs {
			return fmt.Errorf("%w: homing.%s.window_ms shorter than one sample", ErrInvalid, ph.name)
		}
		if ph.p.Threshold < 0 || ph.p.MaxRetries < NoLimit || ph.p.MaxEntries < NoLimit {
			return fmt.Errorf("%w: homing.%s limits must be %d or more", ErrInvalid, ph.name, NoLimit)
		}
	}
	if p := cfg.Homing.Rough.SimilarityPercent; p < 0 || p > 100 {
		return fmt.Errorf("%w: homing.rough.similarity_percent %d outside 0..100", ErrInvalid, p)
	}
	if cfg.Homing.Travel.TrimStep <= 0 || cfg.Homing.Travel.TrimStep > cfg.Homing.Travel.MaxTrim {
		return fmt.Errorf("%w: homing.travel.trim_step must be in 1..max_trim", ErrInvalid)
	}
	if cfg.HomeSpeed()+cfg.Homing.Travel.MaxTrim > m.MaxMotorSpeed {
		return fmt.Errorf("%w: home speed plus max_trim exceeds max_motor_speed", ErrInvalid)
	}

	q := cfg.Queues
	if q.Command < 1 || q.Motion < 1 || q.Sensor < 1 || q.Home < 1 || q.Transmit < 1 {
		return fmt.Errorf("%w: queue sizes must be at least 1", ErrInvalid)
	}

	if cfg.Display.Cols < 1 || cfg.Display.Rows < 2 {
		return fmt.Errorf("%w: display must have at least 1 column and 2 rows", ErrInvalid)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
