package motion

import (
	"context"
	"time"

	"roboone/config"
	"roboone/core"
	"roboone/display"
	"roboone/protocol"
)

// Op selects what a Request asks of the motion task
type Op uint8

const (
	OpCommand Op = iota // a decoded wire command, answered on the transmit queue
	OpStop
	OpMove
	OpTurn
	OpHomingDone
)

// Request is one message on the motion queue
type Request struct {
	Op  Op
	Cmd protocol.CodedCommand

	Speed     int
	TrimLeft  int
	TrimRight int
	Degrees   int

	// Reply receives the outcome of primitive requests; buffered by the sender
	Reply chan bool
}

// Task serves the motion queue. It owns the Actuator and the Odometer.
type Task struct {
	queue  *core.Queue[Request]
	act    *Actuator
	odo    *Odometer
	clock  core.Clock
	cfg    config.MotionConfig
	out    core.LineSender
	screen *display.Screen

	homing bool
	timer  <-chan time.Time // ends a distance move
}

// NewTask creates the motion task
func NewTask(queue *core.Queue[Request], drive core.Drivetrain, clock core.Clock, cfg config.MotionConfig, out core.LineSender, screen *display.Screen) *Task {
	t := &Task{
		queue:  queue,
		act:    NewActuator(drive, clock, cfg),
		odo:    NewOdometer(clock, cfg.MaxMotorSpeed, cfg.FullSpeedCMPerSec),
		clock:  clock,
		cfg:    cfg,
		out:    out,
		screen: screen,
	}
	t.act.onChange = t.odo.SetSpeeds
	return t
}

// Actuator exposes the actuator for inspection
func (t *Task) Actuator() *Actuator {
	return t.act
}

// Run serves requests until ctx is done. Motors are stopped on return.
func (t *Task) Run(ctx context.Context) error {
	defer t.act.Stop()
	for {
		select {
		case req := <-t.queue.C():
			if err := t.Handle(ctx, req); err != nil {
				return err
			}
		case <-t.timer:
			t.timer = nil
			t.act.Stop()
		case <-ctx.Done():
			return nil
		}
	}
}

// Handle executes one request
func (t *Task) Handle(ctx context.Context, req Request) error {
	var ok bool
	switch req.Op {
	case OpCommand:
		return t.command(ctx, req.Cmd)
	case OpStop:
		t.timer = nil
		ok = t.act.Stop()
	case OpMove:
		t.timer = nil
		t.homing = true
		ok = t.act.Move(req.Speed, req.TrimLeft, req.TrimRight)
	case OpTurn:
		t.homing = true
		ok = t.act.Turn(ctx, req.Degrees)
	case OpHomingDone:
		t.homing = false
		ok = true
	default:
		return core.InvariantValue("motion task", "unknown op", int(req.Op))
	}
	if req.Reply != nil {
		select {
		case req.Reply <- ok:
		default:
			return core.Invariant("motion task", "reply channel full")
		}
	}
	return nil
}

// toMotor converts cm/s into drivetrain units
func (t *Task) toMotor(cmps int) int {
	return (cmps*t.cfg.MaxMotorSpeed + t.cfg.FullSpeedCMPerSec/2) / t.cfg.FullSpeedCMPerSec
}

func (t *Task) command(ctx context.Context, cmd protocol.CodedCommand) error {
	t.screen.PrintLine(display.RowCommand, "CMD: "+cmd.String())

	resp := protocol.ResponseOK
	switch cmd.ID {
	case protocol.VerbForwards, protocol.VerbBackwards:
		t.homing = false
		dir := 1
		if cmd.ID == protocol.VerbBackwards {
			dir = -1
		}
		if cmd.Units == protocol.UnitsSpeed {
			t.timer = nil
			if !t.act.Move(dir*t.toMotor(int(cmd.Value)), 0, 0) {
				resp = protocol.ResponseError
			}
			break
		}
		// Distance: run at the default speed for as long as it takes
		cmps := t.cfg.DefaultSpeedCMPS
		if !t.act.Move(dir*t.toMotor(cmps), 0, 0) {
			resp = protocol.ResponseError
			break
		}
		t.timer = t.clock.After(time.Duration(cmd.Value) * time.Second / time.Duration(cmps))

	case protocol.VerbRight, protocol.VerbLeft:
		t.homing = false
		deg := int(cmd.Value)
		if cmd.ID == protocol.VerbLeft {
			deg = -deg
		}
		if !t.act.Turn(ctx, deg) {
			resp = protocol.ResponseError
		}

	case protocol.VerbStop:
		t.homing = false
		t.timer = nil
		if !t.act.Stop() {
			resp = protocol.ResponseError
		}

	case protocol.VerbMark:
		t.odo.Mark()

	case protocol.VerbDistance:
		resp = t.distance()

	case protocol.VerbVelocity:
		resp = t.velocity()

	case protocol.VerbProgress:
		resp = t.progress()

	case protocol.VerbInfo:
		resp = t.progress() + ", " + t.velocity() + ", " + t.distance()

	default:
		return core.InvariantValue("motion task", "unexpected command", int(cmd.ID))
	}

	t.out.Send(protocol.Reply(cmd.Index, resp))
	return nil
}

func (t *Task) distance() string {
	return core.Centi(t.odo.SinceMark()) + " metres"
}

func (t *Task) velocity() string {
	v := t.odo.Velocity()
	switch {
	case v > 0:
		return "Forwards " + core.Centi(v) + " m/s"
	case v < 0:
		return "Backwards " + core.Centi(-v) + " m/s"
	}
	return "Stopped"
}

func (t *Task) progress() string {
	if t.homing {
		return "Home"
	}
	return t.act.Activity().String()
}
