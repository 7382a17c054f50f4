// Package robot wires the tasks of the firmware together: it creates the
// queues, hands each task the hardware it owns and runs them until the
// first failure.
package robot

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"roboone/audio"
	"roboone/comms"
	"roboone/config"
	"roboone/core"
	"roboone/display"
	"roboone/home"
	"roboone/motion"
	"roboone/processing"
	"roboone/protocol"
	"roboone/sensor"
)

// Board is the hardware a robot runs on. Display and Tone may be nil.
type Board struct {
	In        io.Reader
	Out       io.Writer
	Drive     core.Drivetrain
	Detectors core.DetectorSampler
	Distances core.DistanceSensors
	Display   core.TextDisplay
	Tone      core.TonePlayer
	Clock     core.Clock
}

type task struct {
	name string
	run  func(ctx context.Context) error
}

// Robot holds the running firmware
type Robot struct {
	cfg    *config.RobotConfig
	clock  core.Clock
	screen *display.Screen
	player *audio.Player
	outbox *comms.Outbox

	receiver   *comms.Receiver
	integrator *sensor.Integrator
	homeTask   *home.Task
	tasks      []task
}

// New validates cfg and builds every task on b
func New(cfg *config.RobotConfig, b Board) (*Robot, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if b.Drive == nil || b.Detectors == nil || b.Distances == nil || b.In == nil || b.Out == nil {
		return nil, fmt.Errorf("robot: board is missing a device")
	}
	clock := b.Clock
	if clock == nil {
		clock = core.SystemClock{}
	}

	q := cfg.Queues
	commandQ := core.NewQueue[string]("command", q.Command)
	motionQ := core.NewQueue[motion.Request]("motion", q.Motion)
	sensorQ := core.NewQueue[protocol.CodedCommand]("sensor", q.Sensor)
	homeQ := core.NewQueue[home.Event]("home", q.Home)
	transmitQ := core.NewQueue[string]("transmit", q.Transmit)

	r := &Robot{
		cfg:    cfg,
		clock:  clock,
		screen: display.New(b.Display),
		player: audio.NewPlayer(b.Tone, clock),
		outbox: comms.NewOutbox(transmitQ),
	}

	poll := time.Duration(cfg.Serial.PollMs) * time.Millisecond
	r.receiver = comms.NewReceiver(b.In, commandQ, r.outbox, r.screen, clock, poll)
	transmitter := comms.NewTransmitter(transmitQ, b.Out)

	motionTask := motion.NewTask(motionQ, b.Drive, clock, cfg.Motion, r.outbox, r.screen)

	interval := time.Duration(cfg.Sensor.SampleIntervalMs) * time.Millisecond
	r.integrator = sensor.NewIntegrator(b.Detectors, clock, interval, func(res sensor.Result) {
		r.homeTask.Notify(res)
	})
	sensorTask := sensor.NewTask(sensorQ, sensor.NewPoller(b.Distances, cfg.Sensor.DistanceTags), r.outbox, r.screen)

	machine := home.NewMachine(cfg, motion.NewClient(motionQ), r.integrator, r.screen)
	r.homeTask = home.NewTask(machine, homeQ)

	dispatcher := processing.NewDispatcher(processing.Queues{
		Motion: motionQ,
		Sensor: sensorQ,
		Home:   homeQ,
	}, r.outbox, r.screen, r.player)

	r.tasks = []task{
		{"receive", r.receiver.Run},
		{"transmit", transmitter.Run},
		{"processing", processing.NewTask(commandQ, dispatcher).Run},
		{"motion", motionTask.Run},
		{"sensor", sensorTask.Run},
		{"home", r.homeTask.Run},
	}
	return r, nil
}

// Screen returns the serialized display
func (r *Robot) Screen() *display.Screen {
	return r.screen
}

// Home returns the homing state machine. Only safe to inspect once Run
// has returned.
func (r *Robot) Home() *home.Machine {
	return r.homeTask.Machine()
}

// Greet announces the robot on the display and the serial link and plays
// the hello tune.
func (r *Robot) Greet(ctx context.Context) {
	r.screen.Clear()
	r.screen.PrintLine(display.RowReceived, r.cfg.Audio.Hello)
	r.outbox.Send(r.cfg.Audio.Hello)
	if r.cfg.Audio.HelloTune == "" {
		return
	}
	if err := r.player.Play(ctx, r.cfg.Audio.HelloTune); err != nil {
		core.DebugPrintln("[ROBOT] hello tune: " + err.Error())
	}
}

// Run greets and then runs every task until ctx is done or one of them
// fails. The first failure stops all the others and is returned.
func (r *Robot) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.Greet(ctx)

	var (
		wg    sync.WaitGroup
		once  sync.Once
		first error
	)
	for _, t := range r.tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			err := t.run(ctx)
			if err == nil {
				core.DebugPrintln("[ROBOT] " + t.name + " task ended")
				return
			}
			once.Do(func() {
				first = fmt.Errorf("%s task: %w", t.name, err)
				cancel()
			})
		}(t)
	}
	wg.Wait()
	r.integrator.Cancel()
	r.integrator.Wait()

	if first != nil {
		core.LogPrintln("[ROBOT] " + first.Error())
		if core.IsInvariant(first) {
			core.DumpTrace()
			r.assert()
		}
	}
	return first
}

// assert plays the alarm after a fatal error; the motors are already stopped
func (r *Robot) assert() {
	tune := r.cfg.Audio.AssertTune
	if tune == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.player.Play(ctx, tune); err != nil {
		core.DebugPrintln("[ROBOT] assert tune: " + err.Error())
	}
}
