package processing

import (
	"context"
	"errors"
	"testing"

	"roboone/core"
	"roboone/display"
	"roboone/home"
	"roboone/motion"
	"roboone/protocol"
)

type recorder struct {
	lines []string
}

func (r *recorder) Send(line string) {
	r.lines = append(r.lines, line)
}

func (r *recorder) last() string {
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

type fakeTunes struct {
	played []string
	err    error
}

func (f *fakeTunes) Play(ctx context.Context, tune string) error {
	f.played = append(f.played, tune)
	return f.err
}

type fixture struct {
	d     *Dispatcher
	q     Queues
	out   *recorder
	lcd   *display.Buffer
	tunes *fakeTunes
}

func newFixture(size int) *fixture {
	f := &fixture{
		q: Queues{
			Motion: core.NewQueue[motion.Request]("motion", size),
			Sensor: core.NewQueue[protocol.CodedCommand]("sensor", size),
			Home:   core.NewQueue[home.Event]("home", size),
		},
		out:   &recorder{},
		lcd:   display.NewBuffer(16, 4),
		tunes: &fakeTunes{},
	}
	f.d = NewDispatcher(f.q, f.out, display.New(f.lcd), f.tunes)
	return f
}

func (f *fixture) process(t *testing.T, line string) {
	t.Helper()
	if err := f.d.Process(context.Background(), line); err != nil {
		t.Fatalf("Process(%q): %v", line, err)
	}
}

func TestLocalCommands(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"!", "OK"},
		{"#4 !", "#4 OK"},
		{`A"hello"`, "OK"},
		{`#9 T"cde"`, "#9 OK"},
		{"L270", "ERROR"},
		{"", "ERROR"},
	}
	for _, tt := range tests {
		f := newFixture(4)
		f.process(t, tt.line)
		if f.out.last() != tt.want {
			t.Errorf("Process(%q) replied %q, want %q", tt.line, f.out.last(), tt.want)
		}
	}
}

func TestAlphaShowsText(t *testing.T) {
	f := newFixture(4)
	f.process(t, `A"hello"`)
	if got := f.lcd.Line(display.RowCommand); got != "hello" {
		t.Errorf("Display = %q", got)
	}
}

func TestBadCommandShown(t *testing.T) {
	f := newFixture(4)
	f.process(t, "#100 S")
	if got := f.lcd.Line(display.RowCommand); got != "Bad command" {
		t.Errorf("Display = %q", got)
	}
}

func TestTunePlayed(t *testing.T) {
	f := newFixture(4)
	f.process(t, `T"!L16 V8 dc#"`)
	if len(f.tunes.played) != 1 || f.tunes.played[0] != "!L16 V8 dc#" {
		t.Errorf("Played %q", f.tunes.played)
	}

	f.tunes.err = errors.New("bad tune")
	f.process(t, `#2 T"x"`)
	if f.out.last() != "#2 ERROR" {
		t.Errorf("Reply = %q", f.out.last())
	}
}

func TestRouting(t *testing.T) {
	f := newFixture(4)
	f.process(t, "#1 F 1 M")
	f.process(t, "*")
	f.process(t, "#3 H")

	req, ok := f.q.Motion.TryReceive()
	if !ok || req.Op != motion.OpCommand || req.Cmd.ID != 'F' || req.Cmd.Index != 1 || req.Cmd.Value != 100 {
		t.Errorf("Motion request = %+v", req)
	}
	cmd, ok := f.q.Sensor.TryReceive()
	if !ok || cmd.ID != '*' {
		t.Errorf("Sensor command = %+v", cmd)
	}
	ev, ok := f.q.Home.TryReceive()
	if !ok || ev.Kind != home.KindStart {
		t.Errorf("Home event = %+v", ev)
	}
	// Only H is answered by the dispatcher
	if len(f.out.lines) != 1 || f.out.lines[0] != "#3 OK" {
		t.Errorf("Replies = %q", f.out.lines)
	}
}

func TestStopAlsoStopsHoming(t *testing.T) {
	f := newFixture(4)
	f.process(t, "S")

	if req, ok := f.q.Motion.TryReceive(); !ok || req.Cmd.ID != 'S' {
		t.Errorf("Motion request = %+v", req)
	}
	if ev, ok := f.q.Home.TryReceive(); !ok || ev.Kind != home.KindStop {
		t.Errorf("Home event = %+v", ev)
	}
}

func TestBusyWhenQueueFull(t *testing.T) {
	tests := []struct {
		fill  string
		line  string
		reply string
	}{
		{"F 1 M", "#7 B 1 M", "#7 Sorry, busy."},
		{"*", "#1 *", "#1 Sorry, busy."},
		{"H", "#2 H", "#2 Sorry, busy."},
	}
	for _, tt := range tests {
		f := newFixture(1)
		f.process(t, tt.fill)
		f.out.lines = nil
		f.process(t, tt.line)
		if f.out.last() != tt.reply {
			t.Errorf("%q on full queue replied %q, want %q", tt.line, f.out.last(), tt.reply)
		}
	}
}

func TestEchoMode(t *testing.T) {
	f := newFixture(4)
	f.process(t, "#1 E")
	if f.out.last() != "#1 OK" || !f.d.Echo() {
		t.Fatalf("Echo not enabled: %q", f.out.last())
	}

	f.process(t, "F 1 M")
	f.process(t, "garbage")
	if f.out.last() != "garbage" || f.out.lines[1] != "F 1 M" {
		t.Errorf("Echoed %q", f.out.lines)
	}
	if f.q.Motion.Len() != 0 {
		t.Errorf("Echo mode executed a command")
	}
}

type chanSender chan string

func (c chanSender) Send(line string) {
	c <- line
}

func TestTaskRun(t *testing.T) {
	f := newFixture(4)
	out := make(chanSender, 4)
	d := NewDispatcher(f.q, out, display.New(f.lcd), f.tunes)
	lines := core.NewQueue[string]("command", 4)
	task := NewTask(lines, d)
	ctx, cancel := context.WithCancel(context.Background())

	lines.TrySend("!")
	lines.TrySend("#2 !")
	done := make(chan error, 1)
	go func() { done <- task.Run(ctx) }()

	for _, want := range []string{"OK", "#2 OK"} {
		if got := <-out; got != want {
			t.Errorf("Reply = %q, want %q", got, want)
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}
