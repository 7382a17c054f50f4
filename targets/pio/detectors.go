//go:build rp2040

// Package pio samples the infra-red beacon detectors with a PIO state
// machine so that short bursts from the beacon are not missed between
// the integrator's samples.
package pio

import (
	"errors"
	"machine"

	"roboone/core"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// DetectorCount is the number of consecutive detector pins sampled
const DetectorCount = 4

// buildDetectorProgram reads the detector pins and pushes them without
// blocking; when the RX FIFO is full the newest samples are dropped.
func buildDetectorProgram() []uint16 {
	return []uint16{
		// .wrap_target
		rp2pio.EncodeIn(rp2pio.SrcDestPins, DetectorCount), // 0: in pins, 4
		rp2pio.EncodePush(false, false),                    // 1: push noblock
		// .wrap
	}
}

// DetectorSampler implements core.DetectorSampler. The detectors sit on
// consecutive pins starting at the front one, in the order front, right,
// back, left, and pull their output low while they see the beacon.
type DetectorSampler struct {
	pio  *rp2pio.PIO
	sm   rp2pio.StateMachine
	base machine.Pin
	last core.DetectorMask
}

// NewDetectorSampler claims a state machine on PIO0 or PIO1
func NewDetectorSampler(pioNum, smNum uint8) *DetectorSampler {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return &DetectorSampler{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	}
}

// Init loads the program and starts sampling at roughly sampleHz
func (d *DetectorSampler) Init(base machine.Pin, sampleHz uint32) error {
	d.base = base
	if !d.sm.TryClaim() {
		return errors.New("pio: detector state machine already claimed")
	}

	program := buildDetectorProgram()
	offset, err := d.pio.AddProgram(program, -1)
	if err != nil {
		return err
	}

	for i := machine.Pin(0); i < DetectorCount; i++ {
		(base + i).Configure(machine.PinConfig{Mode: d.pio.PinMode()})
	}
	d.sm.SetPindirsConsecutive(base, DetectorCount, false)

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetInPins(base)
	cfg.SetInShift(false, false, 32)
	cfg.SetFIFOJoin(rp2pio.FifoJoinRx)
	cfg.SetWrap(offset, offset+uint8(len(program))-1)

	// two instructions per sample
	whole, frac, err := rp2pio.ClkDivFromFrequency(sampleHz*2, machine.CPUFrequency())
	if err != nil {
		return err
	}
	cfg.SetClkDivIntFrac(whole, frac)

	d.sm.Init(offset, cfg)
	d.sm.SetEnabled(true)
	return nil
}

// SampleDetectors reports every detector that saw the beacon in any
// sample taken since the last call. With no new samples the previous
// answer stands.
func (d *DetectorSampler) SampleDetectors() (core.DetectorMask, error) {
	if d.sm.IsRxFIFOEmpty() {
		return d.last, nil
	}
	var seen uint32
	for !d.sm.IsRxFIFOEmpty() {
		// active low
		seen |= ^d.sm.RxGet() & (1<<DetectorCount - 1)
	}
	d.last = core.DetectorMask(seen)
	return d.last, nil
}
