// Package core holds what every task shares: the hardware interfaces,
// bounded queues, invariant errors and the debug output with its trace.
package core

import (
	"context"
	"time"
)

// MaxMotorSpeed is the largest magnitude a drivetrain channel accepts
const MaxMotorSpeed = 255

// Drivetrain drives the two wheel motors.
// Speeds are signed: positive is forwards, range -MaxMotorSpeed..MaxMotorSpeed.
type Drivetrain interface {
	SetSpeeds(left, right int) error
}

// DetectorMask has one bit per infra-red beacon detector
type DetectorMask uint8

const (
	DetectorFront DetectorMask = 1 << iota
	DetectorRight
	DetectorBack
	DetectorLeft
)

// DetectorSampler reads the instantaneous state of the beacon detectors
type DetectorSampler interface {
	SampleDetectors() (DetectorMask, error)
}

// DistanceSensors reads the ranging sensors.
// ok is false when nothing is in range on that channel.
type DistanceSensors interface {
	Channels() int
	Distance(channel int) (cm uint16, ok bool, err error)
}

// TextDisplay is a character display such as a 16x4 LCD
type TextDisplay interface {
	Size() (cols, rows int)
	Clear() error
	SetCursor(col, row int) error
	Write(b []byte) (int, error)
}

// Note is a MIDI note number (A4 = 69)
type Note uint8

// TonePlayer produces square-wave notes
type TonePlayer interface {
	PlayNote(n Note, volume uint8) error
	Silence() error
}

// Clock abstracts time so tasks can be driven by tests
type Clock interface {
	Now() time.Time
	// Sleep yields for d or until ctx is done
	Sleep(ctx context.Context, d time.Duration) error
	// After delivers once d has elapsed
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the Clock backed by the runtime timers
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// LineSender queues a response line for the transmit task.
// Implementations never block.
type LineSender interface {
	Send(line string)
}
