//go:build rp2040

package main

import (
	"machine"

	"roboone/core"

	"tinygo.org/x/drivers/tone"
)

// speaker implements core.TonePlayer with a square wave on one pin.
// The PWM output has no volume control; volume 0 is silence.
type speaker struct {
	out tone.Speaker
}

func newSpeaker(pin machine.Pin) (*speaker, error) {
	slice, _, err := slicePWM(pin, uint64(1e9)/55/2)
	if err != nil {
		return nil, err
	}
	out, err := tone.New(slice, pin)
	if err != nil {
		return nil, err
	}
	return &speaker{out: out}, nil
}

func (s *speaker) PlayNote(n core.Note, volume uint8) error {
	if volume == 0 {
		s.out.Stop()
		return nil
	}
	s.out.SetNote(tone.Note(n))
	return nil
}

func (s *speaker) Silence() error {
	s.out.Stop()
	return nil
}
