package home

import (
	"context"

	"roboone/core"
	"roboone/sensor"
)

// Task runs the home state machine. It is the only goroutine touching the
// Machine. Start and Stop arrive on the user queue; integration results
// and follow-ups go on the machine's own queue, which is always drained
// first so a burst of user commands can never crowd them out.
type Task struct {
	machine *Machine
	events  *core.Queue[Event]
	fatal   chan error
}

// NewTask creates the home task around m, reading user events
func NewTask(m *Machine, events *core.Queue[Event]) *Task {
	return &Task{machine: m, events: events, fatal: make(chan error, 1)}
}

// Machine exposes the state machine for inspection
func (t *Task) Machine() *Machine {
	return t.machine
}

// Run dispatches events in order until ctx is done or a handler reports
// an invariant violation.
func (t *Task) Run(ctx context.Context) error {
	defer t.machine.sensors.Cancel()
	for {
		if ev, ok := t.machine.Next(); ok {
			if err := t.machine.Dispatch(ctx, ev); err != nil {
				return err
			}
			continue
		}

		select {
		case ev := <-t.machine.internal.C():
			if err := t.machine.Dispatch(ctx, ev); err != nil {
				return err
			}
		case ev := <-t.events.C():
			if err := t.machine.Dispatch(ctx, ev); err != nil {
				return err
			}
		case err := <-t.fatal:
			return err
		case <-ctx.Done():
			return nil
		}
	}
}

// Notify queues an integration result. It is called from the integrator's
// sampling goroutine.
func (t *Task) Notify(r sensor.Result) {
	ev, err := ResultEvent(r)
	if err == nil {
		err = t.machine.internal.MustSend("home notify", ev)
	}
	if err != nil {
		select {
		case t.fatal <- err:
		default:
		}
	}
}
