package protocol

import "testing"

func TestFifoBuffer(t *testing.T) {
	f := NewFifoBuffer(8)

	if n := f.Write([]byte{1, 2, 3, 4, 5}); n != 5 {
		t.Errorf("Expected 5 bytes written, got %d", n)
	}
	if f.Available() != 5 {
		t.Errorf("Expected 5 bytes available, got %d", f.Available())
	}
	if f.Free() != 2 {
		t.Errorf("Expected 2 bytes free, got %d", f.Free())
	}

	out := make([]byte, 3)
	if n := f.Read(out); n != 3 || out[0] != 1 || out[2] != 3 {
		t.Errorf("Read returned %d bytes %v", n, out)
	}

	// Wrap around the end of the backing slice
	if n := f.Write([]byte{6, 7, 8, 9, 10}); n != 5 {
		t.Errorf("Expected 5 bytes written after wrap, got %d", n)
	}
	if !f.IsFull() {
		t.Errorf("Expected buffer to be full")
	}
	if f.At(0) != 4 || f.At(6) != 10 {
		t.Errorf("At() across wrap = %d, %d", f.At(0), f.At(6))
	}
	if i := f.IndexByte(9); i != 5 {
		t.Errorf("IndexByte(9) = %d, want 5", i)
	}

	f.Pop(7)
	if !f.IsEmpty() {
		t.Errorf("Expected buffer to be empty after popping everything")
	}
}

func TestFifoBufferRejectsWhenFull(t *testing.T) {
	f := NewFifoBuffer(4)
	if n := f.Write([]byte{1, 2, 3, 4, 5}); n != 3 {
		t.Errorf("Expected 3 bytes written into capacity 4, got %d", n)
	}
	f.Reset()
	if f.Available() != 0 {
		t.Errorf("Expected empty buffer after Reset, got %d", f.Available())
	}
}
