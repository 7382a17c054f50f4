package audio

import (
	"context"

	"roboone/core"
)

// Player plays parsed tunes on a TonePlayer, blocking the caller for the
// length of the tune
type Player struct {
	out   core.TonePlayer
	clock core.Clock
}

// NewPlayer creates a Player. A nil out gives a Player that only checks
// the syntax and waits out the tune.
func NewPlayer(out core.TonePlayer, clock core.Clock) *Player {
	return &Player{out: out, clock: clock}
}

// Play parses and plays tune
func (p *Player) Play(ctx context.Context, tune string) error {
	steps, err := ParseTune(tune)
	if err != nil {
		return err
	}
	defer p.silence()

	for _, st := range steps {
		if st.Rest || st.Volume == 0 {
			p.silence()
			if err := p.clock.Sleep(ctx, st.Duration); err != nil {
				return err
			}
			continue
		}

		on := st.Duration
		if st.Staccato {
			on /= 2
		}
		if p.out != nil {
			if err := p.out.PlayNote(st.Note, st.Volume); err != nil {
				return err
			}
		}
		if err := p.clock.Sleep(ctx, on); err != nil {
			return err
		}
		if on < st.Duration {
			p.silence()
			if err := p.clock.Sleep(ctx, st.Duration-on); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Player) silence() {
	if p.out == nil {
		return
	}
	if err := p.out.Silence(); err != nil {
		core.DebugPrintln("[AUDIO] " + err.Error())
	}
}
