package protocol

const (
	// CommandTerminator ends a command line on the wire (both directions)
	CommandTerminator = '\r'

	// Backspace deletes the previously written character of a line
	Backspace = '\b'

	// MaxCommandLength bounds a command string, excluding the terminator
	MaxCommandLength = 127

	// ReceiveBufferSize is the size of the serial receive ring.
	// Must be bigger than the longest command.
	ReceiveBufferSize = MaxCommandLength + 1
)

// ExtractCommand removes the first terminated line from the ring and
// returns it with backspaces applied. A backspace removes the character
// written before it, never going back past the start of the line.
//
// If the ring is full and holds no terminator the unterminated bytes are
// discarded so that reception can continue; dropped reports this.
func ExtractCommand(f *FifoBuffer) (line string, ok bool, dropped bool) {
	end := f.IndexByte(CommandTerminator)
	if end < 0 {
		if f.IsFull() {
			f.Reset()
			return "", false, true
		}
		return "", false, false
	}

	out := make([]byte, 0, end)
	for i := 0; i < end; i++ {
		c := f.At(i)
		if c == Backspace {
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			continue
		}
		if len(out) < MaxCommandLength {
			out = append(out, c)
		}
	}
	f.Pop(end + 1)
	return string(out), true, false
}

// FrameResponse terminates an outgoing string for the wire
func FrameResponse(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	b[len(s)] = CommandTerminator
	return b
}
