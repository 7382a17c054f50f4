package sensor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"roboone/core"
	"roboone/display"
	"roboone/protocol"
)

// patternSampler replays masks in a loop
type patternSampler struct {
	mu    sync.Mutex
	masks []core.DetectorMask
	i     int
}

func (p *patternSampler) SampleDetectors() (core.DetectorMask, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.masks[p.i%len(p.masks)]
	p.i++
	return m, nil
}

// fastClock sleeps for a tiny fixed time regardless of d
type fastClock struct {
	core.SystemClock
}

func (fastClock) Sleep(ctx context.Context, d time.Duration) error {
	return core.SystemClock{}.Sleep(ctx, time.Microsecond)
}

func TestIntegratorCounts(t *testing.T) {
	sampler := &patternSampler{masks: []core.DetectorMask{
		core.DetectorFront | core.DetectorLeft,
		core.DetectorFront,
		core.DetectorRight,
		0,
	}}
	results := make(chan Result, 1)
	in := NewIntegrator(sampler, fastClock{}, 10*time.Millisecond, func(r Result) { results <- r })

	seq := in.Start(context.Background(), KindRough, 80*time.Millisecond)

	select {
	case r := <-results:
		if r.Seq != seq || r.Kind != KindRough {
			t.Errorf("Result seq/kind = %d/%v, want %d/rough", r.Seq, r.Kind, seq)
		}
		if r.Samples != 8 {
			t.Errorf("Samples = %d, want 8", r.Samples)
		}
		want := Counts{Front: 4, Right: 2, Left: 2}
		if r.Counts != want {
			t.Errorf("Counts = %v, want %v", r.Counts, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Integration did not complete")
	}
	in.Wait()
}

func TestIntegratorRestartDropsStaleResult(t *testing.T) {
	sampler := &patternSampler{masks: []core.DetectorMask{core.DetectorBack}}
	results := make(chan Result, 4)
	in := NewIntegrator(sampler, core.SystemClock{}, time.Millisecond, func(r Result) { results <- r })

	ctx := context.Background()
	in.Start(ctx, KindFine, time.Second)
	second := in.Start(ctx, KindTravel, 5*time.Millisecond)

	select {
	case r := <-results:
		if r.Seq != second || r.Kind != KindTravel {
			t.Errorf("Got result %+v, want seq %d", r, second)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Integration did not complete")
	}

	in.Cancel()
	in.Wait()
	if len(results) != 0 {
		t.Errorf("Cancelled integration delivered a result")
	}
}

func TestIntegratorCancel(t *testing.T) {
	sampler := &patternSampler{masks: []core.DetectorMask{core.DetectorFront}}
	results := make(chan Result, 1)
	in := NewIntegrator(sampler, core.SystemClock{}, time.Millisecond, func(r Result) { results <- r })

	in.Start(context.Background(), KindRough, time.Hour)
	in.Cancel()
	in.Wait()

	if len(results) != 0 {
		t.Errorf("Cancelled integration delivered a result")
	}
}

type fakeRanges struct {
	cm  []uint16
	ok  []bool
	err error
}

func (f *fakeRanges) Channels() int { return len(f.cm) }

func (f *fakeRanges) Distance(ch int) (uint16, bool, error) {
	if f.err != nil && ch == 0 {
		return 0, false, f.err
	}
	return f.cm[ch], f.ok[ch], nil
}

func TestPollerFormat(t *testing.T) {
	ranges := &fakeRanges{
		cm: []uint16{12, 0, 345, 10000, 7, 0},
		ok: []bool{true, false, true, true, true, false},
	}
	p := NewPoller(ranges, []string{"FL", "FR", "LS", "RS", "BL", "BR"})

	got := p.Poll()
	want := "FL  12 FR     LS 345 RS9999 BL   7 BR"
	if got != want {
		t.Errorf("Poll() = %q, want %q", got, want)
	}
}

func TestPollerSensorError(t *testing.T) {
	ranges := &fakeRanges{cm: []uint16{1, 2}, ok: []bool{true, true}, err: errors.New("i2c nack")}
	p := NewPoller(ranges, []string{"FL", "FR"})
	if got := p.Poll(); got != "FL     FR   2" {
		t.Errorf("Poll() = %q", got)
	}
}

type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) Send(line string) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}

func TestTaskHandle(t *testing.T) {
	ranges := &fakeRanges{cm: []uint16{50}, ok: []bool{true}}
	out := &recorder{}
	buf := display.NewBuffer(16, 4)
	task := NewTask(nil, NewPoller(ranges, []string{"FL"}), out, display.New(buf))

	if err := task.Handle(protocol.CodedCommand{Index: 3, ID: '*'}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(out.lines) != 1 || out.lines[0] != "#3 FL  50" {
		t.Errorf("Sent %q", out.lines)
	}
	if got := buf.Line(display.RowCommand); got != "CMD: #3 *" {
		t.Errorf("Display row = %q", got)
	}

	err := task.Handle(protocol.CodedCommand{Index: protocol.NoIndex, ID: 'F'})
	if !core.IsInvariant(err) {
		t.Errorf("Expected invariant error for unknown command, got %v", err)
	}
}
