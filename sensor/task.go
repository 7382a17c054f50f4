package sensor

import (
	"context"

	"roboone/core"
	"roboone/display"
	"roboone/protocol"
)

// Task serves sensor commands from its queue
type Task struct {
	queue  *core.Queue[protocol.CodedCommand]
	poller *Poller
	out    core.LineSender
	screen *display.Screen
}

// NewTask creates the sensor task
func NewTask(queue *core.Queue[protocol.CodedCommand], poller *Poller, out core.LineSender, screen *display.Screen) *Task {
	return &Task{queue: queue, poller: poller, out: out, screen: screen}
}

// Run serves commands until ctx is done or an unknown command arrives
func (t *Task) Run(ctx context.Context) error {
	for {
		cmd, err := t.queue.Receive(ctx)
		if err != nil {
			return nil
		}
		if err := t.Handle(cmd); err != nil {
			return err
		}
	}
}

// Handle executes one sensor command
func (t *Task) Handle(cmd protocol.CodedCommand) error {
	t.screen.PrintLine(display.RowCommand, "CMD: "+cmd.String())

	switch cmd.ID {
	case protocol.VerbSensors:
		reading := t.poller.Poll()
		t.out.Send(protocol.Reply(cmd.Index, reading))
		t.screen.PrintLine(display.RowDetail, reading)
		return nil
	}
	return core.InvariantValue("sensor task", "unexpected command", int(cmd.ID))
}
