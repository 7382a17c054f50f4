// Package processing decodes command lines and routes them to the task
// that executes them.
package processing

import (
	"context"

	"roboone/core"
	"roboone/display"
	"roboone/home"
	"roboone/motion"
	"roboone/protocol"
)

// TunePlayer plays a tune string to completion
type TunePlayer interface {
	Play(ctx context.Context, tune string) error
}

// Queues are the outbound queues of the dispatcher
type Queues struct {
	Motion *core.Queue[motion.Request]
	Sensor *core.Queue[protocol.CodedCommand]
	Home   *core.Queue[home.Event]
}

// Dispatcher handles E ! A T itself and forwards everything else. It never
// blocks on a subsystem: a full queue is answered with a busy response.
type Dispatcher struct {
	queues Queues
	out    core.LineSender
	screen *display.Screen
	tunes  TunePlayer

	// set by E, cleared only by a restart
	echo bool
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(queues Queues, out core.LineSender, screen *display.Screen, tunes TunePlayer) *Dispatcher {
	return &Dispatcher{queues: queues, out: out, screen: screen, tunes: tunes}
}

// Echo reports whether echo mode is on
func (d *Dispatcher) Echo() bool {
	return d.echo
}

// Process handles one command line. Bad input and busy subsystems are
// answered on the wire; only invariant violations are returned.
func (d *Dispatcher) Process(ctx context.Context, line string) error {
	if d.echo {
		d.out.Send(line)
		return nil
	}

	cmd, err := protocol.Decode(line)
	if err != nil {
		d.screen.PrintLine(display.RowCommand, "Bad command")
		d.out.Send(protocol.ResponseError)
		return nil
	}
	core.RecordTrace(core.EvtCommand, cmd.ID, 0, int32(cmd.Index), int32(cmd.Value))

	reply := func(body string) {
		d.out.Send(protocol.Reply(cmd.Index, body))
	}

	switch cmd.ID {
	case protocol.VerbEcho:
		d.echo = true
		reply(protocol.ResponseOK)

	case protocol.VerbBang:
		reply(protocol.ResponseOK)

	case protocol.VerbAlpha:
		d.screen.PrintLine(display.RowCommand, cmd.Text(line))
		reply(protocol.ResponseOK)

	case protocol.VerbTune:
		if err := d.tunes.Play(ctx, cmd.Text(line)); err != nil {
			core.DebugPrintln("[PROC] tune: " + err.Error())
			reply(protocol.ResponseError)
			break
		}
		reply(protocol.ResponseOK)

	case protocol.VerbStop:
		// Homing must let go of the motors whatever the motion queue holds
		d.post(home.Event{Kind: home.KindStop})
		d.forward(cmd, d.queues.Motion.TrySend(motion.Request{Op: motion.OpCommand, Cmd: cmd}))

	case protocol.VerbForwards, protocol.VerbBackwards, protocol.VerbRight, protocol.VerbLeft,
		protocol.VerbMark, protocol.VerbDistance, protocol.VerbVelocity, protocol.VerbProgress,
		protocol.VerbInfo:
		d.forward(cmd, d.queues.Motion.TrySend(motion.Request{Op: motion.OpCommand, Cmd: cmd}))

	case protocol.VerbSensors:
		d.forward(cmd, d.queues.Sensor.TrySend(cmd))

	case protocol.VerbHome:
		if d.post(home.Event{Kind: home.KindStart}) {
			reply(protocol.ResponseOK)
		} else {
			reply(protocol.ResponseBusy)
		}

	default:
		return core.InvariantValue("dispatcher", "decoded unknown verb", int(cmd.ID))
	}
	return nil
}

// forward answers busy when a subsystem queue refused cmd; otherwise the
// subsystem replies itself.
func (d *Dispatcher) forward(cmd protocol.CodedCommand, err error) {
	if err == nil {
		return
	}
	core.RecordTrace(core.EvtQueueFull, cmd.ID, 0, int32(cmd.Index), 0)
	core.DebugPrintln("[PROC] " + string(cmd.ID) + ": " + err.Error())
	d.out.Send(protocol.Reply(cmd.Index, protocol.ResponseBusy))
}

func (d *Dispatcher) post(ev home.Event) bool {
	if err := d.queues.Home.TrySend(ev); err != nil {
		core.RecordTrace(core.EvtQueueFull, uint8(ev.Kind), 0, 0, 0)
		core.DebugPrintln("[PROC] home " + ev.Kind.String() + ": " + err.Error())
		return false
	}
	return true
}
