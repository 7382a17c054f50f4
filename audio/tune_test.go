package audio

import (
	"context"
	"errors"
	"testing"
	"time"

	"roboone/core"
)

func TestParseTune(t *testing.T) {
	steps, err := ParseTune(">g32>>c32")
	if err != nil {
		t.Fatalf("ParseTune failed: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("Expected 2 notes, got %d", len(steps))
	}
	// g in octave 5 is MIDI 79, c in octave 6 is MIDI 84
	if steps[0].Note != 79 || steps[1].Note != 84 {
		t.Errorf("Notes = %d, %d, want 79, 84", steps[0].Note, steps[1].Note)
	}
	// Whole note at 120 bpm is 2s, so a 32nd is 62.5ms
	if steps[0].Duration != 62500*time.Microsecond {
		t.Errorf("Duration = %v", steps[0].Duration)
	}
}

func TestParseTuneSettings(t *testing.T) {
	steps, err := ParseTune("!L16 V8 dc#")
	if err != nil {
		t.Fatalf("ParseTune failed: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("Expected 2 notes, got %d", len(steps))
	}
	if steps[0].Note != 62 || steps[1].Note != 61 {
		t.Errorf("Notes = %d, %d, want 62, 61", steps[0].Note, steps[1].Note)
	}
	if steps[0].Volume != 8 {
		t.Errorf("Volume = %d, want 8", steps[0].Volume)
	}
	if steps[1].Duration != 125*time.Millisecond {
		t.Errorf("Duration = %v, want 125ms", steps[1].Duration)
	}
}

func TestParseTuneDurations(t *testing.T) {
	tests := []struct {
		tune string
		want time.Duration
	}{
		{"c", 500 * time.Millisecond},
		{"c2", time.Second},
		{"c4.", 750 * time.Millisecond},
		{"t60 c", time.Second},
		{"r8", 250 * time.Millisecond},
	}
	for _, tt := range tests {
		steps, err := ParseTune(tt.tune)
		if err != nil {
			t.Fatalf("ParseTune(%q) failed: %v", tt.tune, err)
		}
		if got := steps[len(steps)-1].Duration; got != tt.want {
			t.Errorf("ParseTune(%q) duration = %v, want %v", tt.tune, got, tt.want)
		}
	}
}

func TestParseTuneOctaves(t *testing.T) {
	steps, err := ParseTune("o2 a <a b-")
	if err != nil {
		t.Fatalf("ParseTune failed: %v", err)
	}
	want := []core.Note{45, 33, 46}
	for i, n := range want {
		if steps[i].Note != n {
			t.Errorf("Note %d = %d, want %d", i, steps[i].Note, n)
		}
	}
}

func TestParseTuneRejects(t *testing.T) {
	for _, tune := range []string{"x", "o9", "t0", "v16", "mz", "l"} {
		if _, err := ParseTune(tune); !errors.Is(err, ErrBadTune) {
			t.Errorf("ParseTune(%q) = %v, want ErrBadTune", tune, err)
		}
	}
}

type recordingTone struct {
	notes    []core.Note
	silences int
}

func (r *recordingTone) PlayNote(n core.Note, volume uint8) error {
	r.notes = append(r.notes, n)
	return nil
}

func (r *recordingTone) Silence() error {
	r.silences++
	return nil
}

// instantClock never waits
type instantClock struct {
	core.SystemClock
	slept time.Duration
}

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	c.slept += d
	return ctx.Err()
}

func TestPlayerPlay(t *testing.T) {
	out := &recordingTone{}
	clock := &instantClock{}
	p := NewPlayer(out, clock)

	if err := p.Play(context.Background(), "c r d"); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if len(out.notes) != 2 || out.notes[0] != 60 || out.notes[1] != 62 {
		t.Errorf("Played %v", out.notes)
	}
	if clock.slept != 1500*time.Millisecond {
		t.Errorf("Slept %v, want 1.5s", clock.slept)
	}
	if out.silences == 0 {
		t.Errorf("Expected the speaker to be silenced")
	}
}

func TestPlayerRejectsBadTune(t *testing.T) {
	p := NewPlayer(nil, &instantClock{})
	if err := p.Play(context.Background(), "q"); !errors.Is(err, ErrBadTune) {
		t.Errorf("Play = %v, want ErrBadTune", err)
	}
}
