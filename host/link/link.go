// Package link talks to the robot over its line protocol from a host. It
// tags each command with an index so that several commands can be in
// flight and their responses matched up.
package link

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"roboone/host/serial"
	"roboone/protocol"
)

var (
	ErrClosed      = errors.New("link closed")
	ErrTooManyBusy = errors.New("too many commands in flight")
)

type pending struct {
	index uint8
	reply chan string
}

// Link is a connection to the robot
type Link struct {
	port io.ReadWriteCloser

	mu          sync.Mutex
	next        uint8
	inflight    []pending // in send order
	unsolicited func(string)
	err         error
	done        chan struct{}
}

// Open opens the serial device and starts reading responses
func Open(cfg *serial.Config) (*Link, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	return New(port), nil
}

// New starts a Link on an open port
func New(port io.ReadWriteCloser) *Link {
	l := &Link{port: port, done: make(chan struct{})}
	go l.readLoop()
	return l
}

// OnUnsolicited sets the handler for lines that answer no command, such
// as the greeting. It is called from the reader goroutine.
func (l *Link) OnUnsolicited(f func(line string)) {
	l.mu.Lock()
	l.unsolicited = f
	l.mu.Unlock()
}

// Send writes a raw line without waiting for anything
func (l *Link) Send(line string) error {
	_, err := l.port.Write(protocol.FrameResponse(line))
	return err
}

// Command sends cmd tagged with a fresh index and waits for the response
// carrying the same index. The tag is stripped from the returned text.
func (l *Link) Command(ctx context.Context, cmd string) (string, error) {
	p, err := l.register()
	if err != nil {
		return "", err
	}
	if err := l.Send("#" + strconv.Itoa(int(p.index)) + " " + cmd); err != nil {
		l.forget(p.index)
		return "", fmt.Errorf("send %q: %w", cmd, err)
	}

	select {
	case resp := <-p.reply:
		return resp, nil
	case <-l.done:
		return "", l.closedErr()
	case <-ctx.Done():
		l.forget(p.index)
		return "", ctx.Err()
	}
}

func (l *Link) register() (pending, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return pending{}, l.err
	}
	if len(l.inflight) > protocol.MaxIndex {
		return pending{}, ErrTooManyBusy
	}
	index := l.next
	for l.inUse(index) {
		index = (index + 1) % (protocol.MaxIndex + 1)
	}
	p := pending{index: index, reply: make(chan string, 1)}
	l.next = (index + 1) % (protocol.MaxIndex + 1)
	l.inflight = append(l.inflight, p)
	return p, nil
}

// inUse reports whether a command still waits on index. Called with mu held.
func (l *Link) inUse(index uint8) bool {
	for _, p := range l.inflight {
		if p.index == index {
			return true
		}
	}
	return false
}

func (l *Link) forget(index uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, p := range l.inflight {
		if p.index == index {
			l.inflight = append(l.inflight[:i], l.inflight[i+1:]...)
			return
		}
	}
}

// deliver hands a response to the command it answers. Responses that
// could not be decoded far enough to carry a tag go to the oldest command,
// which is the one the robot processed first.
func (l *Link) deliver(line string) {
	index, body, tagged := SplitTag(line)

	l.mu.Lock()
	var target *pending
	at := -1
	for i := range l.inflight {
		if (tagged && l.inflight[i].index == index) || (!tagged && isUntaggedReply(body)) {
			target, at = &l.inflight[i], i
			break
		}
	}
	handler := l.unsolicited
	if target != nil {
		p := *target
		l.inflight = append(l.inflight[:at], l.inflight[at+1:]...)
		l.mu.Unlock()
		p.reply <- body
		return
	}
	l.mu.Unlock()

	if handler != nil {
		handler(line)
	}
}

// the robot answers these without an index when it could not read one
func isUntaggedReply(body string) bool {
	return body == protocol.ResponseError || body == protocol.ResponseBusy
}

// SplitTag separates a "#n " prefix from a response
func SplitTag(line string) (index uint8, body string, ok bool) {
	if !strings.HasPrefix(line, "#") {
		return 0, line, false
	}
	sp := strings.IndexByte(line, ' ')
	if sp < 2 {
		return 0, line, false
	}
	n, err := strconv.Atoi(line[1:sp])
	if err != nil || n < 0 || n > protocol.MaxIndex {
		return 0, line, false
	}
	return uint8(n), line[sp+1:], true
}

func (l *Link) readLoop() {
	r := bufio.NewReader(l.port)
	for {
		line, err := r.ReadString(protocol.CommandTerminator)
		if err != nil {
			l.mu.Lock()
			if l.err == nil {
				l.err = fmt.Errorf("%w: %v", ErrClosed, err)
			}
			l.mu.Unlock()
			close(l.done)
			return
		}
		l.deliver(strings.TrimSuffix(line, string(protocol.CommandTerminator)))
	}
}

func (l *Link) closedErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close closes the port and fails every waiting command
func (l *Link) Close() error {
	return l.port.Close()
}
