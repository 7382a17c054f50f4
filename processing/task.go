package processing

import (
	"context"

	"roboone/core"
)

// Task feeds received command lines to the Dispatcher
type Task struct {
	lines *core.Queue[string]
	d     *Dispatcher
}

// NewTask creates the processing task
func NewTask(lines *core.Queue[string], d *Dispatcher) *Task {
	return &Task{lines: lines, d: d}
}

// Run processes lines until ctx is done
func (t *Task) Run(ctx context.Context) error {
	for {
		line, err := t.lines.Receive(ctx)
		if err != nil {
			return nil
		}
		if err := t.d.Process(ctx, line); err != nil {
			return err
		}
	}
}
