package sim

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"roboone/config"
	"roboone/core"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time { return c.t }

func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWorld(pose Pose) (*World, *stepClock) {
	clock := &stepClock{t: time.Unix(0, 0)}
	return NewWorld(config.Default().Motion, 6, pose, clock.now), clock
}

func TestDetectorCones(t *testing.T) {
	tests := []struct {
		bearing float64
		want    core.DetectorMask
	}{
		{0, core.DetectorFront},
		{45, core.DetectorFront | core.DetectorRight},
		{90, core.DetectorRight},
		{180, core.DetectorBack},
		{-135, core.DetectorBack | core.DetectorLeft},
		{-90, core.DetectorLeft},
		{-60, core.DetectorLeft},
	}

	for _, tt := range tests {
		w, _ := newTestWorld(Pose{Bearing: tt.bearing})
		got, err := w.SampleDetectors()
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Bearing %v: mask %04b, expected %04b", tt.bearing, got, tt.want)
		}
	}
}

func TestTurnMatchesMotionTiming(t *testing.T) {
	cfg := config.Default().Motion
	w, clock := newTestWorld(Pose{Bearing: 90})

	// a 90 degree right turn as the motion task times it
	w.SetSpeeds(cfg.TurnSpeed, -cfg.TurnSpeed)
	clock.advance(time.Duration(90*cfg.TurnMillisPerDegree) * time.Millisecond)
	w.SetSpeeds(0, 0)

	if got := w.Pose().Bearing; math.Abs(got) > 0.01 {
		t.Errorf("Bearing after turn = %v, expected 0", got)
	}
}

func TestReversingOpensDistance(t *testing.T) {
	cfg := config.Default().Motion
	w, clock := newTestWorld(Pose{Bearing: 0, DistanceCM: 100})

	w.SetSpeeds(-cfg.MaxMotorSpeed, -cfg.MaxMotorSpeed)
	clock.advance(time.Second)

	got := w.Pose()
	if math.Abs(got.DistanceCM-float64(100+cfg.FullSpeedCMPerSec)) > 0.01 {
		t.Errorf("Distance = %v", got.DistanceCM)
	}
	if got.Bearing != 0 {
		t.Errorf("Bearing drifted to %v", got.Bearing)
	}
}

func TestBearingWraps(t *testing.T) {
	cfg := config.Default().Motion
	w, clock := newTestWorld(Pose{Bearing: -170})

	// 30 degrees right
	w.SetSpeeds(cfg.TurnSpeed, -cfg.TurnSpeed)
	clock.advance(time.Duration(30*cfg.TurnMillisPerDegree) * time.Millisecond)

	if got := w.Pose().Bearing; math.Abs(got-160) > 0.01 {
		t.Errorf("Bearing = %v, expected 160", got)
	}
}

func TestDistanceChannels(t *testing.T) {
	w, _ := newTestWorld(Pose{})
	w.SetWall(0, 120)
	w.SetWall(1, RangeCM+1)

	if cm, ok, err := w.Distance(0); err != nil || !ok || cm != 120 {
		t.Errorf("Channel 0 = %d %v %v", cm, ok, err)
	}
	if _, ok, err := w.Distance(1); err != nil || ok {
		t.Errorf("Channel 1 should be out of range, got %v %v", ok, err)
	}
	if _, ok, _ := w.Distance(2); ok {
		t.Errorf("Channel 2 has no wall")
	}
	if _, _, err := w.Distance(6); !core.IsInvariant(err) {
		t.Errorf("Expected invariant error, got %v", err)
	}
}

func TestSpeaker(t *testing.T) {
	var s Speaker
	s.PlayNote(69, 15)
	s.PlayNote(61, 15)

	if got := s.Played(); len(got) != 2 || got[0] != 69 {
		t.Errorf("Played %v", got)
	}
	if NoteName(69) != "a4" || NoteName(61) != "c#4" {
		t.Errorf("Names %s %s", NoteName(69), NoteName(61))
	}
}

func TestTerminalTranslation(t *testing.T) {
	r := TerminalReader{R: strings.NewReader("F 1 M\nS\n")}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "F 1 M\rS\r" {
		t.Errorf("Read %q", got)
	}

	var buf bytes.Buffer
	w := TerminalWriter{W: &buf}
	if n, err := w.Write([]byte("OK\r")); err != nil || n != 3 {
		t.Errorf("Write = %d %v", n, err)
	}
	if buf.String() != "OK\r\n" {
		t.Errorf("Wrote %q", buf.String())
	}
}
