//go:build !tinygo

package sim

import (
	"strconv"
	"sync"

	"roboone/core"
)

var noteNames = [12]string{"c", "c#", "d", "d#", "e", "f", "f#", "g", "g#", "a", "a#", "b"}

// NoteName spells a MIDI note the way tunes are written, e.g. "a4"
func NoteName(n core.Note) string {
	return noteNames[n%12] + strconv.Itoa(int(n)/12-1)
}

// Speaker logs the notes it is asked to play and remembers them
type Speaker struct {
	mu     sync.Mutex
	played []core.Note
}

func (s *Speaker) PlayNote(n core.Note, volume uint8) error {
	s.mu.Lock()
	s.played = append(s.played, n)
	s.mu.Unlock()
	core.DebugPrintln("[SIM] note " + NoteName(n) + " vol " + strconv.Itoa(int(volume)))
	return nil
}

func (s *Speaker) Silence() error {
	return nil
}

// Played returns every note played so far
func (s *Speaker) Played() []core.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Note(nil), s.played...)
}
