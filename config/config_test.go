package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if cfg.HomeSpeed() != 80 {
		t.Errorf("HomeSpeed = %d, want 80", cfg.HomeSpeed())
	}
	if cfg.Homing.Rough.MaxRetries != 3 || cfg.Homing.Fine.MaxRetries != 15 || cfg.Homing.Travel.MaxRetries != 50 {
		t.Errorf("Unexpected retry caps %+v", cfg.Homing)
	}
	if cfg.Homing.Rough.Window().Seconds() != 10 {
		t.Errorf("Rough window = %v", cfg.Homing.Rough.Window())
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
motion:
  left_offset: 4
  right_offset: -2
homing:
  rough:
    window_ms: 500
    max_entries: 2
  travel:
    max_trim: 10
queues:
  home: 4
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Motion.LeftOffset != 4 || cfg.Motion.RightOffset != -2 {
		t.Errorf("Offsets = %d/%d", cfg.Motion.LeftOffset, cfg.Motion.RightOffset)
	}
	if cfg.Homing.Rough.WindowMs != 500 || cfg.Homing.Rough.MaxEntries != 2 {
		t.Errorf("Rough = %+v", cfg.Homing.Rough)
	}
	// Unset fields fall back to defaults
	if cfg.Homing.Rough.Threshold != 30 {
		t.Errorf("Rough threshold = %d, want default 30", cfg.Homing.Rough.Threshold)
	}
	if cfg.HomeSpeed() != 70 {
		t.Errorf("HomeSpeed = %d, want 70", cfg.HomeSpeed())
	}
	if cfg.Queues.Home != 4 || cfg.Queues.Motion != 8 {
		t.Errorf("Queues = %+v", cfg.Queues)
	}
}

func TestParseNoLimit(t *testing.T) {
	data := []byte(`
homing:
  fine:
    max_retries: -1
  travel:
    max_entries: -1
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Homing.Fine.MaxRetries != NoLimit || cfg.Homing.Travel.MaxEntries != NoLimit {
		t.Errorf("Caps = %d/%d, want NoLimit", cfg.Homing.Fine.MaxRetries, cfg.Homing.Travel.MaxEntries)
	}
	// the caps not named keep their defaults
	if cfg.Homing.Fine.MaxEntries != 3 || cfg.Homing.Travel.MaxRetries != 50 {
		t.Errorf("Fine = %+v, Travel = %+v", cfg.Homing.Fine, cfg.Homing.Travel)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) failed: %v", err)
	}
	if cfg.Display.Cols != 16 || cfg.Display.Rows != 4 {
		t.Errorf("Display = %+v", cfg.Display)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse([]byte("motion:\n  warp_speed: 9\n")); err == nil {
		t.Errorf("Expected unknown key to be rejected")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RobotConfig)
	}{
		{"offset too large", func(c *RobotConfig) { c.Motion.LeftOffset = 300 }},
		{"throw too small", func(c *RobotConfig) { c.Motion.MaxThrowDegrees = 90 }},
		{"bad tag", func(c *RobotConfig) { c.Sensor.DistanceTags = []string{"FRONT"} }},
		{"window shorter than sample", func(c *RobotConfig) { c.Homing.Fine.WindowMs = 1 }},
		{"trim step above max", func(c *RobotConfig) { c.Homing.Travel.TrimStep = 50 }},
		{"no home queue", func(c *RobotConfig) { c.Queues.Home = 0 }},
		{"one row display", func(c *RobotConfig) { c.Display.Rows = 1 }},
		{"default speed above full", func(c *RobotConfig) { c.Motion.DefaultSpeedCMPS = 200 }},
		{"entry cap below no limit", func(c *RobotConfig) { c.Homing.Rough.MaxEntries = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadAndMarshal(t *testing.T) {
	data, err := Marshal(Default())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "robot.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Audio.HelloTune != ">g32>>c32" {
		t.Errorf("HelloTune = %q", cfg.Audio.HelloTune)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}
