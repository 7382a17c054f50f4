package home

import (
	"strconv"

	"golang.org/x/exp/constraints"

	"roboone/core"
	"roboone/sensor"
)

// StateID names a home state
type StateID uint8

const (
	StateInit StateID = iota + 1
	StateRoughAlignment
	StateFineAlignment
	StateTravel
	StateStop
	StateFailed
)

// String returns the four letter name shown on the display
func (id StateID) String() string {
	switch id {
	case StateInit:
		return "Init"
	case StateRoughAlignment:
		return "RouA"
	case StateFineAlignment:
		return "FinA"
	case StateTravel:
		return "Trvl"
	case StateStop:
		return "Stop"
	case StateFailed:
		return "Fail"
	}
	return "St" + strconv.Itoa(int(id))
}

// State has one handler per event kind. A handler may raise at most one
// follow-up event.
type State interface {
	ID() StateID
	enter(m *Machine) error

	OnStart(m *Machine, ev Event) error
	OnRoughIntegrationDone(m *Machine, ev Event) error
	OnRoughAlignmentDone(m *Machine, ev Event) error
	OnRoughAlignmentFailed(m *Machine, ev Event) error
	OnFineIntegrationDone(m *Machine, ev Event) error
	OnFineAlignmentDone(m *Machine, ev Event) error
	OnFineAlignmentFailed(m *Machine, ev Event) error
	OnTravelIntegrationDone(m *Machine, ev Event) error
	OnTravelAlignmentFailed(m *Machine, ev Event) error
	OnStop(m *Machine, ev Event) error
}

// defaultHandlers log events a state does not expect. Stop is honoured
// everywhere.
type defaultHandlers struct{}

func unexpected(m *Machine, ev Event) error {
	core.DebugPrintln("[HOME] !e" + ev.Kind.String() + " in " + m.StateID().String())
	return nil
}

func (defaultHandlers) OnStart(m *Machine, ev Event) error {
	return unexpected(m, ev)
}

func (defaultHandlers) OnRoughIntegrationDone(m *Machine, ev Event) error {
	return unexpected(m, ev)
}

func (defaultHandlers) OnRoughAlignmentDone(m *Machine, ev Event) error {
	return unexpected(m, ev)
}

func (defaultHandlers) OnRoughAlignmentFailed(m *Machine, ev Event) error {
	return unexpected(m, ev)
}

func (defaultHandlers) OnFineIntegrationDone(m *Machine, ev Event) error {
	return unexpected(m, ev)
}

func (defaultHandlers) OnFineAlignmentDone(m *Machine, ev Event) error {
	return unexpected(m, ev)
}

func (defaultHandlers) OnFineAlignmentFailed(m *Machine, ev Event) error {
	return unexpected(m, ev)
}

func (defaultHandlers) OnTravelIntegrationDone(m *Machine, ev Event) error {
	return unexpected(m, ev)
}

func (defaultHandlers) OnTravelAlignmentFailed(m *Machine, ev Event) error {
	return unexpected(m, ev)
}

func (defaultHandlers) OnStop(m *Machine, ev Event) error {
	return m.transition(&stopState{})
}

// stale reports and drops a result from an integration nobody waits for
func stale(m *Machine, ev Event, want uint32) bool {
	if ev.Seq == want {
		return false
	}
	core.DebugPrintln("[HOME] stale " + ev.Kind.String() + " seq " + strconv.FormatUint(uint64(ev.Seq), 10) +
		" in " + m.StateID().String())
	return true
}

func abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ---- INIT ----

type initState struct {
	defaultHandlers
}

func (*initState) ID() StateID { return StateInit }

func (*initState) enter(m *Machine) error {
	c := &m.Context
	if !c.RunCounts.zero() {
		c.LastRun = c.RunCounts
		c.RunCounts = RunCounts{}
	}
	m.motion.Idle(m.ctx)
	return nil
}

func (*initState) OnStart(m *Machine, ev Event) error {
	return m.transition(&roughState{})
}

// Nothing is moving in Init
func (*initState) OnStop(m *Machine, ev Event) error {
	return unexpected(m, ev)
}

// ---- ROUGH ALIGNMENT ----

// roughState turns the robot until the front detector sees the beacon
// clearly more than the side detectors.
type roughState struct {
	defaultHandlers
	retries int
	seq     uint32
}

func (*roughState) ID() StateID { return StateRoughAlignment }

func (s *roughState) enter(m *Machine) error {
	m.motion.Stop(m.ctx)
	s.retries = 0
	m.Context.RoughAlignmentEntries++
	if exceeded(m.Context.RoughAlignmentEntries, m.cfg.Rough.MaxEntries) {
		return m.raise(KindRoughAlignmentFailed)
	}
	s.seq = m.integrate(sensor.KindRough, m.cfg.Rough.PhaseConfig)
	return nil
}

func (s *roughState) OnRoughIntegrationDone(m *Machine, ev Event) error {
	if stale(m, ev, s.seq) {
		return nil
	}
	cfg := m.cfg.Rough
	c := ev.Counts
	if c.Front > c.Left && c.Front > c.Right && c.Front > cfg.Threshold {
		return m.raise(KindRoughAlignmentDone)
	}

	s.retries++
	if exceeded(s.retries, cfg.MaxRetries) {
		return m.raise(KindRoughAlignmentFailed)
	}
	if !m.motion.Turn(m.ctx, StrongestBearing(c, cfg.SimilarityPercent, cfg.SearchTurnDegrees)) {
		return m.raise(KindRoughAlignmentFailed)
	}
	s.seq = m.integrate(sensor.KindRough, cfg.PhaseConfig)
	return nil
}

func (*roughState) OnRoughAlignmentDone(m *Machine, ev Event) error {
	return m.transition(&fineState{})
}

func (*roughState) OnRoughAlignmentFailed(m *Machine, ev Event) error {
	return m.transition(&failedState{})
}

// ---- FINE ALIGNMENT ----

// fineState pulses the robot round until left and right detectors balance
type fineState struct {
	defaultHandlers
	retries     int
	left, right int
	seq         uint32
}

func (*fineState) ID() StateID { return StateFineAlignment }

func (s *fineState) enter(m *Machine) error {
	m.motion.Stop(m.ctx)
	s.retries = 0
	m.Context.FineAlignmentEntries++
	if exceeded(m.Context.FineAlignmentEntries, m.cfg.Fine.MaxEntries) {
		return m.raise(KindFineAlignmentFailed)
	}
	s.seq = m.integrate(sensor.KindFine, m.cfg.Fine.PhaseConfig)
	return nil
}

func (s *fineState) OnFineIntegrationDone(m *Machine, ev Event) error {
	if stale(m, ev, s.seq) {
		return nil
	}
	cfg := m.cfg.Fine
	s.left, s.right = ev.Counts.Left, ev.Counts.Right
	diff := s.left - s.right
	if abs(diff) < cfg.Threshold {
		return m.raise(KindFineAlignmentDone)
	}

	s.retries++
	if exceeded(s.retries, cfg.MaxRetries) {
		return m.raise(KindFineAlignmentFailed)
	}
	pulse := cfg.PulseDegrees
	if diff < 0 {
		pulse = -pulse
	}
	if !m.motion.Turn(m.ctx, pulse) {
		return m.raise(KindFineAlignmentFailed)
	}
	s.seq = m.integrate(sensor.KindFine, cfg.PhaseConfig)
	return nil
}

func (*fineState) OnFineAlignmentDone(m *Machine, ev Event) error {
	return m.transition(&travelState{})
}

func (*fineState) OnFineAlignmentFailed(m *Machine, ev Event) error {
	return m.transition(&roughState{})
}

// ---- TRAVEL ----

// travelState reverses onto the charger, trimming the wheels to keep the
// beacon balanced between the side detectors.
type travelState struct {
	defaultHandlers
	retries             int
	trimLeft, trimRight int
	seq                 uint32
}

func (*travelState) ID() StateID { return StateTravel }

// Trims returns the current wheel trims
func (s *travelState) Trims() (left, right int) {
	return s.trimLeft, s.trimRight
}

func (s *travelState) enter(m *Machine) error {
	m.Context.TravelEntries++
	s.retries = 0
	s.trimLeft, s.trimRight = 0, 0
	if exceeded(m.Context.TravelEntries, m.cfg.Travel.MaxEntries) {
		return m.raise(KindTravelAlignmentFailed)
	}
	if !m.motion.Move(m.ctx, -m.homeSpeed, 0, 0) {
		return m.raise(KindTravelAlignmentFailed)
	}
	s.seq = m.integrate(sensor.KindTravel, m.cfg.Travel.PhaseConfig)
	return nil
}

func (s *travelState) OnTravelIntegrationDone(m *Machine, ev Event) error {
	if stale(m, ev, s.seq) {
		return nil
	}
	cfg := m.cfg.Travel
	diff := ev.Counts.Left - ev.Counts.Right
	if abs(diff) > cfg.Threshold {
		s.retries++
		if exceeded(s.retries, cfg.MaxRetries) {
			return m.raise(KindTravelAlignmentFailed)
		}
		step := cfg.TrimStep
		if diff < 0 {
			step = -step
		}
		s.trimLeft = clamp(s.trimLeft+step, -cfg.MaxTrim, cfg.MaxTrim)
		s.trimRight = clamp(s.trimRight-step, -cfg.MaxTrim, cfg.MaxTrim)
		if !m.motion.Move(m.ctx, -m.homeSpeed, s.trimLeft, s.trimRight) {
			return m.raise(KindTravelAlignmentFailed)
		}
	}
	s.seq = m.integrate(sensor.KindTravel, cfg.PhaseConfig)
	return nil
}

func (*travelState) OnTravelAlignmentFailed(m *Machine, ev Event) error {
	return m.transition(&fineState{})
}

// ---- STOP / FAILED ----

// Both are transitory: brake and return to Init

type stopState struct {
	defaultHandlers
}

func (*stopState) ID() StateID { return StateStop }

func (*stopState) enter(m *Machine) error {
	m.sensors.Cancel()
	m.motion.Stop(m.ctx)
	return m.transition(&initState{})
}

type failedState struct {
	defaultHandlers
}

func (*failedState) ID() StateID { return StateFailed }

func (*failedState) enter(m *Machine) error {
	m.sensors.Cancel()
	m.motion.Stop(m.ctx)
	return m.transition(&initState{})
}
