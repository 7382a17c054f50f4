// Package display serializes status output to the character display.
package display

import (
	"sync"

	"roboone/core"
)

// Rows used for status output
const (
	RowReceived = 0 // last received command line
	RowCommand  = 1 // command being executed / Alpha text
	RowDetail   = 2 // sensor readings
	RowHome     = 3 // homing state
)

// Screen owns the display. Every call holds the lock for the whole write
// so output from different tasks never interleaves mid-message.
type Screen struct {
	mu   sync.Mutex
	dev  core.TextDisplay
	cols int
	rows int
	col  int
	row  int
}

// New wraps dev. A nil dev gives a Screen that discards output.
func New(dev core.TextDisplay) *Screen {
	s := &Screen{dev: dev, cols: 1, rows: 1}
	if dev != nil {
		s.cols, s.rows = dev.Size()
	}
	return s
}

// Clear blanks the display and homes the cursor
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return
	}
	s.check(s.dev.Clear())
	s.col, s.row = 0, 0
}

// Print writes text at the cursor, wrapping at the end of each row and
// from the last row back to the first.
func (s *Screen) Print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.print(text)
}

// PrintAt moves the cursor and writes text in one serialized operation
func (s *Screen) PrintAt(col, row int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gotoXY(col, row)
	s.print(text)
}

// PrintLine replaces the contents of row with text, truncated to fit
func (s *Screen) PrintLine(row int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(text) > s.cols {
		text = text[:s.cols]
	}
	for len(text) < s.cols {
		text += " "
	}
	s.gotoXY(0, row)
	s.print(text)
}

// Cursor returns the current cursor position
func (s *Screen) Cursor() (col, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.col, s.row
}

func (s *Screen) gotoXY(col, row int) {
	if s.dev == nil {
		return
	}
	s.col = col % s.cols
	s.row = row % s.rows
	s.check(s.dev.SetCursor(s.col, s.row))
}

func (s *Screen) print(text string) {
	if s.dev == nil {
		return
	}
	start := 0
	for start < len(text) {
		n := s.cols - s.col
		if n > len(text)-start {
			n = len(text) - start
		}
		_, err := s.dev.Write([]byte(text[start : start+n]))
		s.check(err)
		start += n
		s.col += n
		if s.col >= s.cols {
			s.col = 0
			s.row = (s.row + 1) % s.rows
			s.check(s.dev.SetCursor(s.col, s.row))
		}
	}
}

func (s *Screen) check(err error) {
	if err != nil {
		core.DebugPrintln("[DISPLAY] " + err.Error())
	}
}
