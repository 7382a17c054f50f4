// Package home implements the return-to-charger behaviour: a state machine
// that aligns the robot with the charger beacon using the IR detectors and
// then reverses onto it, driven entirely by events on the home queue.
package home

import (
	"strconv"

	"roboone/core"
	"roboone/sensor"
)

// Kind identifies a home event
type Kind uint8

const (
	KindStart Kind = iota + 1
	KindRoughIntegrationDone
	KindRoughAlignmentDone
	KindRoughAlignmentFailed
	KindFineIntegrationDone
	KindFineAlignmentDone
	KindFineAlignmentFailed
	KindTravelIntegrationDone
	KindTravelAlignmentFailed
	KindStop
)

// String returns the short tag used in diagnostics
func (k Kind) String() string {
	switch k {
	case KindStart:
		return "H+"
	case KindRoughIntegrationDone:
		return "RID"
	case KindRoughAlignmentDone:
		return "RAD"
	case KindRoughAlignmentFailed:
		return "RAF"
	case KindFineIntegrationDone:
		return "FID"
	case KindFineAlignmentDone:
		return "FAD"
	case KindFineAlignmentFailed:
		return "FAF"
	case KindTravelIntegrationDone:
		return "TID"
	case KindTravelAlignmentFailed:
		return "TAF"
	case KindStop:
		return "H-"
	}
	return "?" + strconv.Itoa(int(k))
}

// Event is one message on the home queue. Counts and Seq are only set for
// the integration-done kinds.
type Event struct {
	Kind   Kind
	Counts sensor.Counts
	Seq    uint32
}

// ResultEvent converts a finished integration into the matching event
func ResultEvent(r sensor.Result) (Event, error) {
	ev := Event{Counts: r.Counts, Seq: r.Seq}
	switch r.Kind {
	case sensor.KindRough:
		ev.Kind = KindRoughIntegrationDone
	case sensor.KindFine:
		ev.Kind = KindFineIntegrationDone
	case sensor.KindTravel:
		ev.Kind = KindTravelIntegrationDone
	default:
		return ev, core.InvariantValue("home result", "unknown integration kind", int(r.Kind))
	}
	return ev, nil
}
