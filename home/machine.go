package home

import (
	"context"
	"time"

	"roboone/config"
	"roboone/core"
	"roboone/display"
	"roboone/sensor"
)

// Motion is what homing needs from the drivetrain. Each call reports
// success; homing treats a failure like an alignment failure.
type Motion interface {
	Stop(ctx context.Context) bool
	Move(ctx context.Context, speed, trimLeft, trimRight int) bool
	Turn(ctx context.Context, degrees int) bool
	Idle(ctx context.Context) bool
}

// Integrations starts and abandons detector integrations. Results come
// back as events carrying the sequence number Start returned.
type Integrations interface {
	Start(ctx context.Context, kind sensor.Kind, window time.Duration) uint32
	Cancel()
}

// RunCounts counts state entries over one homing run
type RunCounts struct {
	RoughAlignmentEntries int
	FineAlignmentEntries  int
	TravelEntries         int
}

func (r RunCounts) zero() bool {
	return r == RunCounts{}
}

// Context is the state of the homing behaviour, owned by the home task
type Context struct {
	State State
	RunCounts

	// LastRun holds the counters of the most recent run that returned to Init
	LastRun RunCounts
}

// InternalEvents bounds the events the machine queues for itself: one
// follow-up raised by a handler plus a late and a current integration
// result, with one to spare.
const InternalEvents = 4

// Machine dispatches home events to the current state
type Machine struct {
	cfg       config.HomingConfig
	homeSpeed int
	motion    Motion
	sensors   Integrations
	screen    *display.Screen

	// follow-ups and integration results, handled before user events
	internal *core.Queue[Event]

	// valid for the duration of one Dispatch
	ctx context.Context

	Context Context
}

// NewMachine creates a Machine resting in Init
func NewMachine(cfg *config.RobotConfig, motion Motion, sensors Integrations, screen *display.Screen) *Machine {
	return &Machine{
		cfg:       cfg.Homing,
		homeSpeed: cfg.HomeSpeed(),
		motion:    motion,
		sensors:   sensors,
		screen:    screen,
		internal:  core.NewQueue[Event]("home internal", InternalEvents),
		ctx:       context.Background(),
		Context:   Context{State: &initState{}},
	}
}

// StateID returns the current state
func (m *Machine) StateID() StateID {
	return m.Context.State.ID()
}

// Dispatch runs the handler the current state has for ev
func (m *Machine) Dispatch(ctx context.Context, ev Event) error {
	m.ctx = ctx
	defer func() { m.ctx = context.Background() }()

	s := m.Context.State
	core.RecordTrace(core.EvtHomeEvent, uint8(ev.Kind), 0, int32(s.ID()), int32(ev.Seq))

	switch ev.Kind {
	case KindStart:
		return s.OnStart(m, ev)
	case KindRoughIntegrationDone:
		return s.OnRoughIntegrationDone(m, ev)
	case KindRoughAlignmentDone:
		return s.OnRoughAlignmentDone(m, ev)
	case KindRoughAlignmentFailed:
		return s.OnRoughAlignmentFailed(m, ev)
	case KindFineIntegrationDone:
		return s.OnFineIntegrationDone(m, ev)
	case KindFineAlignmentDone:
		return s.OnFineAlignmentDone(m, ev)
	case KindFineAlignmentFailed:
		return s.OnFineAlignmentFailed(m, ev)
	case KindTravelIntegrationDone:
		return s.OnTravelIntegrationDone(m, ev)
	case KindTravelAlignmentFailed:
		return s.OnTravelAlignmentFailed(m, ev)
	case KindStop:
		return s.OnStop(m, ev)
	}
	return core.InvariantValue("home dispatch", "unknown event", int(ev.Kind))
}

// transition discards the current state and enters next
func (m *Machine) transition(next State) error {
	m.Context.State = next
	core.RecordTrace(core.EvtStateEntry, uint8(next.ID()), 0, 0, 0)
	core.DebugPrintln("[HOME] Hm: " + next.ID().String())
	m.screen.PrintLine(display.RowHome, "Hm: "+next.ID().String())
	return next.enter(m)
}

// raise queues a follow-up event. User events never share this queue and
// it is drained before them, so it cannot fill; if it does the task stops
// with an invariant error.
func (m *Machine) raise(kind Kind) error {
	return m.internal.MustSend("home raise", Event{Kind: kind})
}

// Next returns the oldest event the machine queued for itself
func (m *Machine) Next() (Event, bool) {
	return m.internal.TryReceive()
}

// integrate starts an integration for the given phase
func (m *Machine) integrate(kind sensor.Kind, p config.PhaseConfig) uint32 {
	return m.sensors.Start(m.ctx, kind, p.Window())
}

// exceeded reports whether n is past a cap; config.NoLimit is no cap
func exceeded(n, limit int) bool {
	return limit != config.NoLimit && n > limit
}
