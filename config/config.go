// Package config holds the tunable parameters of the robot.
package config

import "time"

// RobotConfig is the complete robot configuration
type RobotConfig struct {
	Motion  MotionConfig  `yaml:"motion"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Homing  HomingConfig  `yaml:"homing"`
	Queues  QueueConfig   `yaml:"queues"`
	Serial  SerialConfig  `yaml:"serial"`
	Display DisplayConfig `yaml:"display"`
	Audio   AudioConfig   `yaml:"audio"`
}

// ---- MOTION ----

type MotionConfig struct {
	// Fixed per-channel offsets compensating drivetrain imbalance
	LeftOffset  int `yaml:"left_offset"`
	RightOffset int `yaml:"right_offset"`

	MaxMotorSpeed      int `yaml:"max_motor_speed"`      // drivetrain units
	MinimumUsefulSpeed int `yaml:"minimum_useful_speed"` // slower than this and it won't go
	FullSpeedCMPerSec  int `yaml:"full_speed_cm_per_sec"`
	DefaultSpeedCMPS   int `yaml:"default_speed_cm_per_sec"` // for distance moves

	TurnSpeed           int `yaml:"turn_speed"`
	TurnMillisPerDegree int `yaml:"turn_ms_per_degree"`
	MaxThrowDegrees     int `yaml:"max_throw_degrees"`
}

// ---- SENSOR ----

type SensorConfig struct {
	SampleIntervalMs int      `yaml:"sample_interval_ms"`
	DistanceTags     []string `yaml:"distance_tags"`
}

// ---- HOMING ----

// NoLimit as a phase's max_retries or max_entries removes that cap. Zero
// takes the default like every other setting.
const NoLimit = -1

// PhaseConfig is shared by the three alignment phases
type PhaseConfig struct {
	WindowMs   int `yaml:"window_ms"`
	Threshold  int `yaml:"threshold"`
	MaxRetries int `yaml:"max_retries"`
	MaxEntries int `yaml:"max_entries"`
}

// Window returns the integration period
func (p PhaseConfig) Window() time.Duration {
	return time.Duration(p.WindowMs) * time.Millisecond
}

type RoughConfig struct {
	PhaseConfig       `yaml:",inline"`
	SimilarityPercent int `yaml:"similarity_percent"`
	SearchTurnDegrees int `yaml:"search_turn_degrees"`
}

type FineConfig struct {
	PhaseConfig  `yaml:",inline"`
	PulseDegrees int `yaml:"pulse_degrees"`
}

type TravelConfig struct {
	PhaseConfig `yaml:",inline"`
	MaxTrim     int `yaml:"max_trim"`
	TrimStep    int `yaml:"trim_step"`
}

type HomingConfig struct {
	Rough  RoughConfig  `yaml:"rough"`
	Fine   FineConfig   `yaml:"fine"`
	Travel TravelConfig `yaml:"travel"`
}

// ---- QUEUES ----

type QueueConfig struct {
	Command  int `yaml:"command"`
	Motion   int `yaml:"motion"`
	Sensor   int `yaml:"sensor"`
	Home     int `yaml:"home"`
	Transmit int `yaml:"transmit"`
}

// ---- SERIAL ----

type SerialConfig struct {
	Device        string `yaml:"device"`
	Baud          int    `yaml:"baud"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
	PollMs        int    `yaml:"poll_ms"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

// ---- AUDIO ----

type AudioConfig struct {
	Hello      string `yaml:"hello"`
	HelloTune  string `yaml:"hello_tune"`
	AssertTune string `yaml:"assert_tune"`
}

// HomeSpeed is the reverse speed used while travelling to the charger
func (c *RobotConfig) HomeSpeed() int {
	return c.Motion.MinimumUsefulSpeed + c.Homing.Travel.MaxTrim
}

// Default returns the configuration of the reference robot
func Default() *RobotConfig {
	cfg := &RobotConfig{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in missing configuration values with sensible defaults
func ApplyDefaults(cfg *RobotConfig) {
	m := &cfg.Motion
	if m.MaxMotorSpeed == 0 {
		m.MaxMotorSpeed = 255
	}
	if m.MinimumUsefulSpeed == 0 {
		m.MinimumUsefulSpeed = 60
	}
	if m.FullSpeedCMPerSec == 0 {
		m.FullSpeedCMPerSec = 100
	}
	if m.DefaultSpeedCMPS == 0 {
		m.DefaultSpeedCMPS = 30
	}
	if m.TurnSpeed == 0 {
		m.TurnSpeed = 120
	}
	if m.TurnMillisPerDegree == 0 {
		m.TurnMillisPerDegree = 8
	}
	if m.MaxThrowDegrees == 0 {
		m.MaxThrowDegrees = 180
	}

	if cfg.Sensor.SampleIntervalMs == 0 {
		cfg.Sensor.SampleIntervalMs = 10
	}
	if len(cfg.Sensor.DistanceTags) == 0 {
		cfg.Sensor.DistanceTags = []string{"FL", "FR", "LS", "RS", "BL", "BR"}
	}

	applyPhaseDefaults(&cfg.Homing.Rough.PhaseConfig, PhaseConfig{WindowMs: 10000, Threshold: 30, MaxRetries: 3, MaxEntries: 3})
	if cfg.Homing.Rough.SimilarityPercent == 0 {
		cfg.Homing.Rough.SimilarityPercent = 20
	}
	if cfg.Homing.Rough.SearchTurnDegrees == 0 {
		cfg.Homing.Rough.SearchTurnDegrees = 90
	}

	applyPhaseDefaults(&cfg.Homing.Fine.PhaseConfig, PhaseConfig{WindowMs: 3000, Threshold: 10, MaxRetries: 15, MaxEntries: 3})
	if cfg.Homing.Fine.PulseDegrees == 0 {
		cfg.Homing.Fine.PulseDegrees = 10
	}

	applyPhaseDefaults(&cfg.Homing.Travel.PhaseConfig, PhaseConfig{WindowMs: 3000, Threshold: 10, MaxRetries: 50, MaxEntries: 3})
	if cfg.Homing.Travel.MaxTrim == 0 {
		cfg.Homing.Travel.MaxTrim = 20
	}
	if cfg.Homing.Travel.TrimStep == 0 {
		cfg.Homing.Travel.TrimStep = 1
	}

	q := &cfg.Queues
	for _, size := range []*int{&q.Command, &q.Motion, &q.Sensor, &q.Home, &q.Transmit} {
		if *size == 0 {
			*size = 8
		}
	}

	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 9600
	}
	if cfg.Serial.ReadTimeoutMs == 0 {
		cfg.Serial.ReadTimeoutMs = 100
	}
	if cfg.Serial.PollMs == 0 {
		cfg.Serial.PollMs = 10
	}

	if cfg.Display.Cols == 0 {
		cfg.Display.Cols = 16
	}
	if cfg.Display.Rows == 0 {
		cfg.Display.Rows = 4
	}

	if cfg.Audio.Hello == "" {
		cfg.Audio.Hello = "RoboOne started."
	}
	if cfg.Audio.HelloTune == "" {
		cfg.Audio.HelloTune = ">g32>>c32"
	}
	if cfg.Audio.AssertTune == "" {
		cfg.Audio.AssertTune = "!L16 V8 dc#"
	}
}

func applyPhaseDefaults(p *PhaseConfig, def PhaseConfig) {
	if p.WindowMs == 0 {
		p.WindowMs = def.WindowMs
	}
	if p.Threshold == 0 {
		p.Threshold = def.Threshold
	}
	if p.MaxRetries == 0 {
		p.MaxRetries = def.MaxRetries
	}
	if p.MaxEntries == 0 {
		p.MaxEntries = def.MaxEntries
	}
}
