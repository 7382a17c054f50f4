package sensor

import (
	"strconv"
	"strings"

	"roboone/core"
)

// FieldWidth is the width of one "<tag><distance> " field of a poll response
const FieldWidth = 7

const maxShownCM = 9999

// Poller formats one reading of every ranging sensor
type Poller struct {
	sensors core.DistanceSensors
	tags    []string
}

// NewPoller creates a Poller; tags name the channels in order
func NewPoller(sensors core.DistanceSensors, tags []string) *Poller {
	return &Poller{sensors: sensors, tags: tags}
}

// Poll reads every channel and returns fixed-width fields: a two letter
// tag, then the distance in cm right-aligned in four characters, or
// blanks when nothing is in range.
func (p *Poller) Poll() string {
	n := len(p.tags)
	if c := p.sensors.Channels(); c < n {
		n = c
	}

	var sb strings.Builder
	for ch := 0; ch < n; ch++ {
		sb.WriteString(p.tags[ch])
		cm, ok, err := p.sensors.Distance(ch)
		switch {
		case err != nil:
			core.DebugAsync("[SENSOR] " + p.tags[ch] + ": " + err.Error())
			sb.WriteString("    ")
		case !ok:
			sb.WriteString("    ")
		default:
			v := int(cm)
			if v > maxShownCM {
				v = maxShownCM
			}
			sb.WriteString(core.PadLeft(strconv.Itoa(v), 4))
		}
		sb.WriteByte(' ')
	}
	return strings.TrimRight(sb.String(), " ")
}
