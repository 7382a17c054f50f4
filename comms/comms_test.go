package comms

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"roboone/core"
	"roboone/display"
	"roboone/protocol"
)

type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) Send(line string) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}

func newReceiver(in io.Reader, size int) (*Receiver, *core.Queue[string], *recorder, *display.Buffer) {
	lines := core.NewQueue[string]("command", size)
	out := &recorder{}
	lcd := display.NewBuffer(16, 4)
	r := NewReceiver(in, lines, out, display.New(lcd), core.SystemClock{}, time.Millisecond)
	return r, lines, out, lcd
}

func drainLines(q *core.Queue[string]) []string {
	var got []string
	for {
		l, ok := q.TryReceive()
		if !ok {
			return got
		}
		got = append(got, l)
	}
}

func TestFeedSplitsLines(t *testing.T) {
	r, lines, _, lcd := newReceiver(nil, 8)
	r.Feed([]byte("F 1 M\r#2 S"))
	r.Feed([]byte("\rR 4"))
	r.Feed([]byte("5\b0\r"))

	got := drainLines(lines)
	want := []string{"F 1 M", "#2 S", "R 40"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Lines = %q, want %q", got, want)
	}
	if lcd.Line(display.RowReceived) != "R 40" {
		t.Errorf("Display = %q", lcd.Line(display.RowReceived))
	}
	if r.Stats().Lines != 3 {
		t.Errorf("Stats = %+v", r.Stats())
	}
}

func TestFeedRecoversFromOverflow(t *testing.T) {
	r, lines, _, _ := newReceiver(nil, 8)
	r.Feed(bytes.Repeat([]byte{'x'}, protocol.ReceiveBufferSize+10))
	r.Feed([]byte("\rS\r"))

	got := drainLines(lines)
	if len(got) == 0 || got[len(got)-1] != "S" {
		t.Errorf("Lines after overflow = %q", got)
	}
	if r.Stats().Overflows == 0 {
		t.Errorf("Overflow not counted")
	}
}

func TestFeedBusyWhenQueueFull(t *testing.T) {
	r, lines, out, _ := newReceiver(nil, 1)
	r.Feed([]byte("S\rH\r"))

	if lines.Len() != 1 {
		t.Errorf("Queued %d lines, want 1", lines.Len())
	}
	if len(out.lines) != 1 || out.lines[0] != protocol.ResponseBusy {
		t.Errorf("Replies = %q", out.lines)
	}
	if r.Stats().Busy != 1 {
		t.Errorf("Stats = %+v", r.Stats())
	}
}

func TestRunReadsUntilEOF(t *testing.T) {
	r, lines, _, _ := newReceiver(strings.NewReader("!\r#1 *\r"), 8)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	got := drainLines(lines)
	if len(got) != 2 || got[0] != "!" || got[1] != "#1 *" {
		t.Errorf("Lines = %q", got)
	}
}

// blockingReader never returns, like a console with nobody typing
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}

func TestRunStopsOnCancel(t *testing.T) {
	r, _, _, _ := newReceiver(blockingReader{}, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run blocked on the reader")
	}
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("framing error")
}

func TestReadErrorsCounted(t *testing.T) {
	r, _, _, _ := newReceiver(failingReader{}, 8)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Errorf("Run returned %v", err)
	}
	if r.Stats().ReadErrors == 0 {
		t.Errorf("Read errors not counted")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestTransmitterFramesLines(t *testing.T) {
	q := core.NewQueue[string]("transmit", 4)
	w := &syncBuffer{}
	tx := NewTransmitter(q, w)
	box := NewOutbox(q)

	box.Send("OK")
	box.Send("#3 ERROR")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tx.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for w.String() != "OK\r#3 ERROR\r" {
		if time.Now().After(deadline) {
			t.Fatalf("Wrote %q", w.String())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestOutboxDropsWhenFull(t *testing.T) {
	q := core.NewQueue[string]("transmit", 1)
	box := NewOutbox(q)
	box.Send("one")
	box.Send("two")
	if l, _ := q.TryReceive(); l != "one" || q.Len() != 0 {
		t.Errorf("Queue held %q and %d more", l, q.Len())
	}
}
