//go:build rp2040

package main

import (
	"machine"

	"roboone/core"

	"tinygo.org/x/drivers/vl53l1x"
)

// Sharp GP2Y0A41 infra-red rangers report roughly 12 V.cm / distance;
// below minRangerMilliVolts nothing is in range.
const (
	rangerVoltCM         = 12000 // mV.cm
	minRangerMilliVolts  = 400
	timeOfFlightMaxRange = 4000 // mm
)

// rangers implements core.DistanceSensors. Channel 0 is a VL53L1X
// time-of-flight sensor; the rest are analog rangers on ADC pins, and
// channels without a pin never see anything.
type rangers struct {
	tof    *vl53l1x.Device
	analog []*machine.ADC
	count  int
}

func newRangers(bus *machine.I2C, pins []machine.Pin, count int) *rangers {
	r := &rangers{count: count}

	tof := vl53l1x.New(bus)
	if tof.Connected() && tof.Configure(true) {
		tof.SetDistanceMode(vl53l1x.SHORT)
		tof.SetMeasurementTimingBudget(50000)
		tof.StartContinuous(50)
		r.tof = &tof
	} else {
		core.LogPrintln("[BOARD] no time-of-flight sensor")
	}

	machine.InitADC()
	for _, p := range pins {
		adc := &machine.ADC{Pin: p}
		adc.Configure(machine.ADCConfig{})
		r.analog = append(r.analog, adc)
	}
	return r
}

func (r *rangers) Channels() int {
	return r.count
}

func (r *rangers) Distance(ch int) (uint16, bool, error) {
	if ch < 0 || ch >= r.count {
		return 0, false, core.InvariantValue("rangers", "channel", ch)
	}
	if ch == 0 {
		if r.tof == nil {
			return 0, false, nil
		}
		mm := r.tof.Read(false)
		if r.tof.Status() != vl53l1x.RangeValid || mm == 0 || mm > timeOfFlightMaxRange {
			return 0, false, nil
		}
		return mm / 10, true, nil
	}

	i := ch - 1
	if i >= len(r.analog) {
		return 0, false, nil
	}
	mv := uint32(r.analog[i].Get()) * 3300 / 0xffff
	if mv < minRangerMilliVolts {
		return 0, false, nil
	}
	return uint16(rangerVoltCM / mv), true, nil
}
