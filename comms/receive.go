// Package comms moves command lines and responses over the serial link.
package comms

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"roboone/core"
	"roboone/display"
	"roboone/protocol"
)

// Stats counts link problems, readable after Run returns
type Stats struct {
	Lines      uint32 // lines queued for processing
	Overflows  uint32 // unterminated input discarded from a full ring
	Busy       uint32 // lines refused by a full command queue
	ReadErrors uint32
}

// Receiver assembles command lines from the serial byte stream
type Receiver struct {
	in     io.Reader
	lines  *core.Queue[string]
	out    core.LineSender
	screen *display.Screen
	clock  core.Clock
	poll   time.Duration

	ring       *protocol.FifoBuffer
	stats      Stats
	readErrors atomic.Uint32 // counted by the reader goroutine
}

// NewReceiver creates a Receiver. poll is how long the reader waits after
// a read that returned nothing.
func NewReceiver(in io.Reader, lines *core.Queue[string], out core.LineSender, screen *display.Screen, clock core.Clock, poll time.Duration) *Receiver {
	return &Receiver{
		in:     in,
		lines:  lines,
		out:    out,
		screen: screen,
		clock:  clock,
		poll:   poll,
		ring:   protocol.NewFifoBuffer(protocol.ReceiveBufferSize),
	}
}

// Stats returns the counters
func (r *Receiver) Stats() Stats {
	s := r.stats
	s.ReadErrors = r.readErrors.Load()
	return s
}

// Run reads until ctx is done or the stream ends. Reading happens on a
// separate goroutine so that a blocking reader never holds up shutdown;
// the ring is only touched here.
func (r *Receiver) Run(ctx context.Context) error {
	chunks := make(chan []byte, 4)
	ended := make(chan error, 1)
	go r.readLoop(ctx, chunks, ended)

	for {
		select {
		case b := <-chunks:
			r.Feed(b)
		case err := <-ended:
			// chunks sent before the end are still queued
			for len(chunks) > 0 {
				r.Feed(<-chunks)
			}
			if errors.Is(err, io.EOF) {
				core.DebugPrintln("[COMMS] input closed")
				return nil
			}
			return err
		case <-ctx.Done():
			return nil
		}
	}
}

func (r *Receiver) readLoop(ctx context.Context, chunks chan<- []byte, ended chan<- error) {
	var buf [32]byte
	for {
		n, err := r.in.Read(buf[:])
		if n > 0 {
			b := make([]byte, n)
			copy(b, buf[:n])
			select {
			case chunks <- b:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				ended <- err
				return
			}
			r.readErrors.Add(1)
			core.DebugAsync("[COMMS] read: " + err.Error())
		}
		if n == 0 || err != nil {
			if r.clock.Sleep(ctx, r.poll) != nil {
				return
			}
		}
	}
}

// Feed pushes received bytes through the ring, queueing every complete line
func (r *Receiver) Feed(b []byte) {
	for len(b) > 0 {
		n := r.ring.Write(b)
		b = b[n:]
		r.drain()
	}
}

func (r *Receiver) drain() {
	for {
		line, ok, dropped := protocol.ExtractCommand(r.ring)
		if dropped {
			r.stats.Overflows++
			core.DebugPrintln("[COMMS] line too long, discarded")
		}
		if !ok {
			return
		}
		r.screen.PrintLine(display.RowReceived, line)
		if err := r.lines.TrySend(line); err != nil {
			r.stats.Busy++
			core.RecordTrace(core.EvtQueueFull, 0, 0, int32(r.lines.Len()), 0)
			r.out.Send(protocol.ResponseBusy)
			continue
		}
		r.stats.Lines++
	}
}
