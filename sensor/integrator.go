// Package sensor counts beacon detector activity and polls the ranging
// sensors.
package sensor

import (
	"context"
	"strconv"
	"sync"
	"time"

	"roboone/core"
)

// Kind identifies which homing phase asked for an integration
type Kind uint8

const (
	KindRough Kind = iota + 1
	KindFine
	KindTravel
)

func (k Kind) String() string {
	switch k {
	case KindRough:
		return "rough"
	case KindFine:
		return "fine"
	case KindTravel:
		return "travel"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Counts holds the number of samples each detector was active
type Counts struct {
	Front int
	Right int
	Back  int
	Left  int
}

// Add counts one sample
func (c *Counts) Add(m core.DetectorMask) {
	if m&core.DetectorFront != 0 {
		c.Front++
	}
	if m&core.DetectorRight != 0 {
		c.Right++
	}
	if m&core.DetectorBack != 0 {
		c.Back++
	}
	if m&core.DetectorLeft != 0 {
		c.Left++
	}
}

func (c Counts) String() string {
	return "F" + strconv.Itoa(c.Front) + " R" + strconv.Itoa(c.Right) +
		" B" + strconv.Itoa(c.Back) + " L" + strconv.Itoa(c.Left)
}

// Result is delivered when an integration window completes
type Result struct {
	Kind    Kind
	Seq     uint32
	Counts  Counts
	Samples int
}

// Integrator samples the detectors over a timed window in the background.
// At most one integration runs at a time; starting a new one cancels the
// previous one, whose result is then never delivered.
type Integrator struct {
	sampler  core.DetectorSampler
	clock    core.Clock
	interval time.Duration
	notify   func(Result)

	mu     sync.Mutex
	seq    uint32
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewIntegrator creates an Integrator sampling every interval.
// notify is called from the sampling goroutine.
func NewIntegrator(sampler core.DetectorSampler, clock core.Clock, interval time.Duration, notify func(Result)) *Integrator {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	return &Integrator{
		sampler:  sampler,
		clock:    clock,
		interval: interval,
		notify:   notify,
	}
}

// Start begins an integration of the given kind and returns its sequence
// number, which the Result will carry.
func (in *Integrator) Start(ctx context.Context, kind Kind, window time.Duration) uint32 {
	in.mu.Lock()
	if in.cancel != nil {
		in.cancel()
	}
	in.seq++
	seq := in.seq
	runCtx, cancel := context.WithCancel(ctx)
	in.cancel = cancel
	in.mu.Unlock()

	samples := int(window / in.interval)
	if samples < 1 {
		samples = 1
	}

	in.wg.Add(1)
	go func() {
		defer in.wg.Done()
		defer cancel()
		in.run(runCtx, Result{Kind: kind, Seq: seq, Samples: samples})
	}()
	return seq
}

// Cancel abandons any running integration
func (in *Integrator) Cancel() {
	in.mu.Lock()
	if in.cancel != nil {
		in.cancel()
		in.cancel = nil
	}
	in.mu.Unlock()
}

// Wait blocks until no sampling goroutine is left
func (in *Integrator) Wait() {
	in.wg.Wait()
}

func (in *Integrator) run(ctx context.Context, res Result) {
	for i := 0; i < res.Samples; i++ {
		if err := in.clock.Sleep(ctx, in.interval); err != nil {
			return
		}
		mask, err := in.sampler.SampleDetectors()
		if err != nil {
			core.DebugAsync("[SENSOR] sample failed: " + err.Error())
			continue
		}
		res.Counts.Add(mask)
	}

	// A Start or Cancel racing with the last sample wins
	in.mu.Lock()
	current := in.seq == res.Seq && ctx.Err() == nil
	in.mu.Unlock()
	if !current {
		return
	}

	core.RecordTrace(core.EvtIntegration, uint8(res.Kind), 0, int32(res.Counts.Left), int32(res.Counts.Right))
	in.notify(res)
}
