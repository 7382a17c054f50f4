// Package protocol implements the robot's command line protocol: framing
// of command lines, decoding into coded commands and tagged responses.
package protocol

import (
	"errors"
	"strconv"
)

// ErrUnparseable is returned by Decode for any malformed or out of range
// command. Sub-reasons are not distinguished on the wire.
var ErrUnparseable = errors.New("unparseable command")

// Units tags the value of a coded command
type Units byte

const (
	UnitsNone     Units = 0
	UnitsDistance Units = 'D' // value in cm
	UnitsSpeed    Units = 'S' // value in cm/s
)

// Coded command limits
const (
	NoIndex          = 255 // index when none was supplied
	MaxIndex         = 99
	MaxTurnDegrees   = 180
	DefaultTurn      = 90
	MaxDistanceCM    = 10000
	MaxSpeedCMPerSec = 100
	CodedCommandSize = 5
)

// Command verbs
const (
	VerbForwards  = 'F'
	VerbBackwards = 'B'
	VerbRight     = 'R'
	VerbLeft      = 'L'
	VerbStop      = 'S'
	VerbHome      = 'H'
	VerbMark      = 'M'
	VerbDistance  = 'D'
	VerbVelocity  = 'V'
	VerbProgress  = 'P'
	VerbInfo      = 'I'
	VerbEcho      = 'E'
	VerbAlpha     = 'A'
	VerbTune      = 'T'
	VerbBang      = '!'
	VerbSensors   = '*'
)

// CodedCommand is the compact form of one command line.
// For A and T, Value is the offset of the quoted text in the line and
// Units holds its length.
type CodedCommand struct {
	Index uint8
	ID    byte
	Value uint16
	Units Units
}

// HasIndex reports whether the line carried a #n index
func (c CodedCommand) HasIndex() bool {
	return c.Index != NoIndex
}

// Bytes returns the 5-byte record: index, id, value (big-endian), units
func (c CodedCommand) Bytes() [CodedCommandSize]byte {
	return [CodedCommandSize]byte{c.Index, c.ID, byte(c.Value >> 8), byte(c.Value), byte(c.Units)}
}

// CodedCommandFromBytes is the inverse of Bytes
func CodedCommandFromBytes(b [CodedCommandSize]byte) CodedCommand {
	return CodedCommand{
		Index: b[0],
		ID:    b[1],
		Value: uint16(b[2])<<8 | uint16(b[3]),
		Units: Units(b[4]),
	}
}

// Text returns the quoted text of an A or T command decoded from line
func (c CodedCommand) Text(line string) string {
	start := int(c.Value)
	end := start + int(c.Units)
	if end > len(line) || start > end {
		return ""
	}
	return line[start:end]
}

// String renders the command for status displays, e.g. "#5 F 150 D"
func (c CodedCommand) String() string {
	s := ""
	if c.HasIndex() {
		s = "#" + strconv.Itoa(int(c.Index)) + " "
	}
	s += string(c.ID)
	if c.ID == VerbAlpha || c.ID == VerbTune {
		return s
	}
	if c.Value != 0 || c.Units != UnitsNone {
		s += " " + strconv.Itoa(int(c.Value))
	}
	if c.Units != UnitsNone {
		s += " " + string(byte(c.Units))
	}
	return s
}

type lexState uint8

const (
	stateNull lexState = iota
	stateGetIndex
	stateGetID
	stateGetValueMantissa
	stateGetValueFractional
	stateGetUnits
	stateGetOpeningQuote
	stateGetString
	stateFinished
)

type charClass uint8

const (
	classOther charClass = iota
	classDigit
	classDot
	classHash
	classSpace
	classQuote
	classNul
	classLetter
	classBang
	classStar
)

func classify(c byte) charClass {
	switch {
	case c >= '0' && c <= '9':
		return classDigit
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return classLetter
	}
	switch c {
	case '.':
		return classDot
	case '#':
		return classHash
	case ' ':
		return classSpace
	case '"':
		return classQuote
	case 0:
		return classNul
	case '!':
		return classBang
	case '*':
		return classStar
	}
	return classOther
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// decoder holds the scan state of one Decode call
type decoder struct {
	state      lexState
	cmd        CodedCommand
	index      int
	mantissa   int
	fractional int
	multiplier int
	sawDigit   bool
	openQuote  int
	closeQuote int
}

// Decode parses one command line:
//
//	[#index ]verb[ mantissa[.fractional][ units]]
//	[#index ]A"text"  or  [#index ]T"text"
//
// Decode is pure: the same line always gives the same result.
func Decode(line string) (CodedCommand, error) {
	d := decoder{
		cmd:        CodedCommand{Index: NoIndex},
		multiplier: 10,
		openQuote:  -1,
		closeQuote: -1,
	}

	for i := 0; i < len(line); i++ {
		if !d.step(line[i], i) {
			return CodedCommand{}, ErrUnparseable
		}
		if d.state == stateFinished && line[i] == 0 {
			break
		}
	}

	if !d.validate() {
		return CodedCommand{}, ErrUnparseable
	}
	return d.cmd, nil
}

// step consumes one character and returns false if the line must be rejected
func (d *decoder) step(c byte, pos int) bool {
	class := classify(c)

	// Inside a quoted string everything is text except the closing quote
	if d.state == stateGetString && class != classQuote && class != classNul {
		return true
	}

	switch class {
	case classNul:
		d.state = stateFinished
		return true

	case classHash:
		if d.state != stateNull {
			return false
		}
		d.state = stateGetIndex
		return true

	case classDigit:
		return d.digit(int(c - '0'))

	case classDot:
		switch {
		case d.state == stateGetValueMantissa:
		case d.state == stateGetID && d.takesValue():
		default:
			return false
		}
		d.state = stateGetValueFractional
		return true

	case classSpace:
		switch d.state {
		case stateGetIndex:
			if d.index > MaxIndex {
				return false
			}
			d.cmd.Index = uint8(d.index)
			d.state = stateGetID
		case stateGetID:
			// a second space after the index leaves no room for a verb
			d.state = stateGetValueMantissa
		case stateGetValueMantissa, stateGetValueFractional:
			d.state = stateGetUnits
		}
		return true

	case classQuote:
		switch d.state {
		case stateGetOpeningQuote:
			d.state = stateGetString
			d.openQuote = pos
		case stateGetString:
			d.state = stateFinished
			d.closeQuote = pos
		default:
			return false
		}
		return true

	case classLetter:
		d.letter(toUpper(c))
		return true

	case classBang, classStar:
		d.verb(c)
		return true
	}

	// Anything else is discarded
	return true
}

func (d *decoder) digit(n int) bool {
	switch d.state {
	case stateGetIndex:
		d.index = 10*d.index + n
		return d.index < NoIndex
	case stateGetID:
		if !d.takesValue() {
			return false
		}
		d.state = stateGetValueMantissa
		fallthrough
	case stateGetValueMantissa:
		d.mantissa = 10*d.mantissa + n
		d.sawDigit = true
		return d.mantissa < 255
	case stateGetValueFractional:
		d.fractional += d.multiplier * n
		d.multiplier /= 10
		d.sawDigit = true
		return d.fractional <= 99
	}
	return false
}

// takesValue reports whether a numeric argument may follow the verb
func (d *decoder) takesValue() bool {
	switch d.cmd.ID {
	case VerbForwards, VerbBackwards, VerbRight, VerbLeft:
		return true
	}
	return false
}

// letter interprets c by position: units after a value, verb at the
// start of a command, ignored anywhere else.
func (d *decoder) letter(c byte) {
	switch d.state {
	case stateGetValueMantissa, stateGetValueFractional:
		if !d.sawDigit {
			return
		}
		if c == 'M' || c == 'S' {
			d.state = stateGetUnits
			d.units(c)
		}
	case stateGetUnits:
		d.units(c)
	case stateNull, stateGetID:
		d.verb(c)
	}
}

func (d *decoder) units(c byte) {
	switch c {
	case 'M':
		if d.cmd.Units != UnitsSpeed {
			d.cmd.Units = UnitsDistance
		}
	case 'S':
		d.cmd.Units = UnitsSpeed
	}
}

// verb records the first verb letter; later ones are ignored
func (d *decoder) verb(c byte) {
	if d.cmd.ID != 0 || (d.state != stateNull && d.state != stateGetID) {
		return
	}
	switch c {
	case VerbForwards, VerbBackwards, VerbRight, VerbLeft:
		d.cmd.ID = c
		d.state = stateGetID
	case VerbAlpha, VerbTune:
		d.cmd.ID = c
		d.state = stateGetOpeningQuote
	case VerbStop, VerbHome, VerbMark, VerbDistance, VerbVelocity, VerbProgress,
		VerbInfo, VerbEcho, VerbBang, VerbSensors:
		d.cmd.ID = c
		d.state = stateFinished
	}
}

// validate applies the per-verb range rules and fills in the value
func (d *decoder) validate() bool {
	if d.cmd.ID == 0 {
		return false
	}
	value := d.mantissa*100 + d.fractional

	switch d.cmd.ID {
	case VerbRight, VerbLeft:
		value /= 100
		if value > MaxTurnDegrees {
			return false
		}
		if value == 0 {
			value = DefaultTurn
		}
		d.cmd.Value = uint16(value)

	case VerbForwards, VerbBackwards:
		switch d.cmd.Units {
		case UnitsDistance:
			if value > MaxDistanceCM {
				return false
			}
		case UnitsSpeed:
			if value > MaxSpeedCMPerSec {
				return false
			}
		default:
			return false
		}
		d.cmd.Value = uint16(value)

	case VerbAlpha, VerbTune:
		d.cmd.Units = UnitsNone
		if d.openQuote <= 0 || d.closeQuote <= d.openQuote+1 {
			return false
		}
		d.cmd.Value = uint16(d.openQuote + 1)
		d.cmd.Units = Units(d.closeQuote - d.openQuote - 1)

	default:
		if value > 0 || d.cmd.Units != UnitsNone {
			return false
		}
	}
	return true
}
