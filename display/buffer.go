package display

import (
	"strings"
	"sync"
)

// Buffer is an in-memory character display.
// The simulator renders it and tests inspect it.
type Buffer struct {
	mu    sync.Mutex
	cells [][]byte
	col   int
	row   int
}

// NewBuffer creates a blank cols x rows display
func NewBuffer(cols, rows int) *Buffer {
	b := &Buffer{cells: make([][]byte, rows)}
	for i := range b.cells {
		b.cells[i] = make([]byte, cols)
	}
	b.blank()
	return b
}

func (b *Buffer) blank() {
	for _, r := range b.cells {
		for i := range r {
			r[i] = ' '
		}
	}
	b.col, b.row = 0, 0
}

func (b *Buffer) Size() (cols, rows int) {
	return len(b.cells[0]), len(b.cells)
}

func (b *Buffer) Clear() error {
	b.mu.Lock()
	b.blank()
	b.mu.Unlock()
	return nil
}

func (b *Buffer) SetCursor(col, row int) error {
	b.mu.Lock()
	b.col, b.row = col, row
	b.mu.Unlock()
	return nil
}

// Write stores characters from the cursor, clipping at the end of the row
// as the LCD controller does
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range p {
		if b.row < len(b.cells) && b.col < len(b.cells[b.row]) {
			b.cells[b.row][b.col] = c
		}
		b.col++
	}
	return len(p), nil
}

// Line returns one row with trailing blanks removed
func (b *Buffer) Line(row int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimRight(string(b.cells[row]), " ")
}

// String renders the whole display, one row per line
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	for _, r := range b.cells {
		sb.WriteString("|" + string(r) + "|\n")
	}
	return sb.String()
}
