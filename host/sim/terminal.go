//go:build !tinygo

package sim

import (
	"bytes"
	"io"

	"roboone/protocol"
)

// TerminalReader lets a line-buffered terminal drive the robot: newlines
// typed by the user become command terminators.
type TerminalReader struct {
	R io.Reader
}

func (t TerminalReader) Read(p []byte) (int, error) {
	n, err := t.R.Read(p)
	for i, c := range p[:n] {
		if c == '\n' {
			p[i] = protocol.CommandTerminator
		}
	}
	return n, err
}

// TerminalWriter ends each response with a newline as well so that
// responses do not overwrite each other on a terminal.
type TerminalWriter struct {
	W io.Writer
}

func (t TerminalWriter) Write(p []byte) (int, error) {
	out := bytes.ReplaceAll(p, []byte{protocol.CommandTerminator}, []byte{protocol.CommandTerminator, '\n'})
	if _, err := t.W.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
