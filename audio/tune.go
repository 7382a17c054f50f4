// Package audio parses and plays tunes written in the Pololu play syntax,
// e.g. ">g32>>c32" or "!L16 V8 dc#".
package audio

import (
	"errors"
	"time"

	"roboone/core"
)

// ErrBadTune is returned for characters outside the play syntax
var ErrBadTune = errors.New("bad tune string")

// Defaults restored by '!'
const (
	DefaultOctave = 4
	DefaultTempo  = 120 // quarter notes per minute
	DefaultLength = 4   // quarter note
	DefaultVolume = 15
	MaxVolume     = 15
)

// Step is one note or rest of a parsed tune
type Step struct {
	Note     core.Note
	Rest     bool
	Duration time.Duration
	Volume   uint8
	Staccato bool
}

// semitone offsets of c d e f g a b from c
var semitones = [7]int{9, 11, 0, 2, 4, 5, 7} // indexed by letter - 'a'

// parser holds the persistent settings of one tune
type parser struct {
	s        string
	pos      int
	octave   int
	tempo    int
	length   int
	volume   int
	staccato bool
	shift    int // octave shift for the next note only
}

func (p *parser) reset() {
	p.octave = DefaultOctave
	p.tempo = DefaultTempo
	p.length = DefaultLength
	p.volume = DefaultVolume
	p.staccato = false
	p.shift = 0
}

// ParseTune converts a play string into notes and rests
func ParseTune(s string) ([]Step, error) {
	p := &parser{s: s}
	p.reset()

	var steps []Step
	for p.pos < len(s) {
		c := toLower(s[p.pos])
		p.pos++

		switch {
		case c == ' ':
		case c == '!':
			p.reset()
		case c == '>':
			p.shift++
		case c == '<':
			p.shift--
		case c == 'o':
			n, ok := p.number()
			if !ok || n > 8 {
				return nil, ErrBadTune
			}
			p.octave = n
		case c == 't':
			n, ok := p.number()
			if !ok || n == 0 {
				return nil, ErrBadTune
			}
			p.tempo = n
		case c == 'l':
			n, ok := p.number()
			if !ok || n == 0 {
				return nil, ErrBadTune
			}
			p.length = n
		case c == 'v':
			n, ok := p.number()
			if !ok || n > MaxVolume {
				return nil, ErrBadTune
			}
			p.volume = n
		case c == 'm':
			if p.pos >= len(s) {
				return nil, ErrBadTune
			}
			switch toLower(s[p.pos]) {
			case 'l':
				p.staccato = false
			case 's':
				p.staccato = true
			default:
				return nil, ErrBadTune
			}
			p.pos++
		case c == 'r':
			steps = append(steps, Step{Rest: true, Duration: p.duration()})
		case c >= 'a' && c <= 'g':
			step, err := p.note(c)
			if err != nil {
				return nil, err
			}
			steps = append(steps, step)
		default:
			return nil, ErrBadTune
		}
	}
	return steps, nil
}

func (p *parser) note(c byte) (Step, error) {
	semi := semitones[c-'a']
	octave := p.octave + p.shift
	p.shift = 0

accidentals:
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '#', '+':
			semi++
		case '-':
			semi--
		default:
			break accidentals
		}
		p.pos++
	}
	midi := 12*(octave+1) + semi
	if midi < 0 || midi > 127 {
		return Step{}, ErrBadTune
	}
	return Step{
		Note:     core.Note(midi),
		Duration: p.duration(),
		Volume:   uint8(p.volume),
		Staccato: p.staccato,
	}, nil
}

// duration reads an optional length and dots following a note or rest
func (p *parser) duration() time.Duration {
	length := p.length
	if n, ok := p.number(); ok && n > 0 {
		length = n
	}
	whole := 4 * time.Minute / time.Duration(p.tempo)
	d := whole / time.Duration(length)
	extra := d / 2
	for p.pos < len(p.s) && p.s[p.pos] == '.' {
		d += extra
		extra /= 2
		p.pos++
	}
	return d
}

// number parses decimal digits at the current position
func (p *parser) number() (int, bool) {
	start := p.pos
	n := 0
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		n = n*10 + int(p.s[p.pos]-'0')
		p.pos++
		if n > 10000 {
			return 0, false
		}
	}
	return n, p.pos > start
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
