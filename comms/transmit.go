package comms

import (
	"context"
	"io"

	"roboone/core"
	"roboone/protocol"
)

// Outbox queues response lines for the Transmitter. Send never blocks: a
// line that does not fit is dropped and logged.
type Outbox struct {
	queue *core.Queue[string]
}

// NewOutbox creates an Outbox on queue
func NewOutbox(queue *core.Queue[string]) *Outbox {
	return &Outbox{queue: queue}
}

// Send queues line for transmission
func (o *Outbox) Send(line string) {
	if err := o.queue.TrySend(line); err != nil {
		core.RecordTrace(core.EvtQueueFull, 1, 0, int32(len(line)), 0)
		core.DebugAsync("[COMMS] dropped response: " + line)
	}
}

// Transmitter writes queued lines to the serial link, CR terminated
type Transmitter struct {
	queue *core.Queue[string]
	w     io.Writer

	writeFailures uint32
}

// NewTransmitter creates a Transmitter writing to w
func NewTransmitter(queue *core.Queue[string], w io.Writer) *Transmitter {
	return &Transmitter{queue: queue, w: w}
}

// Run sends lines until ctx is done. Write errors lose the line; the link
// is not expected to recover them.
func (t *Transmitter) Run(ctx context.Context) error {
	for {
		line, err := t.queue.Receive(ctx)
		if err != nil {
			return nil
		}
		t.write(protocol.FrameResponse(line))
	}
}

// write handles partial writes the way a UART driver reports them
func (t *Transmitter) write(b []byte) {
	written := 0
	for written < len(b) {
		n, err := t.w.Write(b[written:])
		if err != nil || n == 0 {
			t.writeFailures++
			if err != nil {
				core.DebugAsync("[COMMS] write: " + err.Error())
			}
			return
		}
		written += n
	}
}
