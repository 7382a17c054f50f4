package core

import "sync"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent captures a control event for post-mortem analysis
type TraceEvent struct {
	EventType uint8  // Event type code
	Tag       uint8  // Event or state tag
	Millis    uint32 // Milliseconds since start
	Value1    int32  // Context-dependent value
	Value2    int32  // Context-dependent value
}

// Trace event type codes
const (
	EvtCommand     = 1 // command accepted by the dispatcher
	EvtHomeEvent   = 2 // home event dispatched
	EvtStateEntry  = 3 // home state entered
	EvtMotion      = 4 // drivetrain speeds set
	EvtIntegration = 5 // sensor integration finished
	EvtQueueFull   = 6 // a send found the queue full
)

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugMu serializes whole messages so output from tasks never interleaves
	debugMu sync.Mutex

	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function.
// This allows platforms to redirect debug output to UART, stderr, etc.
func SetDebugWriter(writer DebugWriter) {
	debugMu.Lock()
	debugPrintln = writer
	debugMu.Unlock()
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugMu.Lock()
	debugEnabled = enabled
	debugMu.Unlock()
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	debugMu.Lock()
	defer debugMu.Unlock()
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine.
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugMu.Lock()
	if debugChan == nil {
		debugChan = make(chan string, 16)
		go debugOutputWorker(debugChan)
	}
	debugMu.Unlock()
}

// debugOutputWorker runs in background, drains debug channel
func debugOutputWorker(ch chan string) {
	for msg := range ch {
		writeDebug(msg)
	}
}

func writeDebug(msg string) {
	debugMu.Lock()
	if debugPrintln != nil {
		debugPrintln(msg)
	}
	debugMu.Unlock()
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Blocks while another task is writing (use DebugAsync for non-blocking)
func DebugPrintln(msg string) {
	debugMu.Lock()
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
	debugMu.Unlock()
}

// LogPrintln writes msg regardless of the debug switch.
// Used for diagnostics that must always reach the console.
func LogPrintln(msg string) {
	writeDebug(msg)
}

// DebugAsync queues a debug message for async output (non-blocking).
// Returns immediately even if channel is full (drops message)
func DebugAsync(msg string) {
	debugMu.Lock()
	ch, enabled := debugChan, debugEnabled
	debugMu.Unlock()
	if ch == nil || !enabled {
		return
	}
	select {
	case ch <- msg:
	default:
		// Channel full, drop message
	}
}

// RecordTrace captures an event in the trace ring buffer
func RecordTrace(eventType, tag uint8, millis uint32, value1, value2 int32) {
	debugMu.Lock()
	idx := traceRingHead
	traceRing[idx] = TraceEvent{
		EventType: eventType,
		Tag:       tag,
		Millis:    millis,
		Value1:    value1,
		Value2:    value2,
	}
	traceRingHead = (idx + 1) % TraceRingSize
	debugMu.Unlock()
}

// TraceSnapshot returns the recorded events, oldest first
func TraceSnapshot() []TraceEvent {
	debugMu.Lock()
	defer debugMu.Unlock()

	out := make([]TraceEvent, 0, TraceRingSize)
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := traceRing[(start+i)%TraceRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// DumpTrace outputs the trace ring buffer (call on shutdown/error)
func DumpTrace() {
	events := TraceSnapshot()

	LogPrintln("[TRACE] === Trace Dump ===")
	for _, evt := range events {
		var name string
		switch evt.EventType {
		case EvtCommand:
			name = "COMMAND"
		case EvtHomeEvent:
			name = "HOME_EVENT"
		case EvtStateEntry:
			name = "STATE_ENTRY"
		case EvtMotion:
			name = "MOTION"
		case EvtIntegration:
			name = "INTEGRATION"
		case EvtQueueFull:
			name = "QUEUE_FULL!"
		default:
			name = "UNKNOWN"
		}

		LogPrintln("[TRACE] " + name +
			" tag=" + itoa(int(evt.Tag)) +
			" ms=" + utoa(evt.Millis) +
			" v1=" + itoa(int(evt.Value1)) +
			" v2=" + itoa(int(evt.Value2)))
	}
	LogPrintln("[TRACE] === End Dump ===")
}

// ClearTrace clears the trace buffer
func ClearTrace() {
	debugMu.Lock()
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
	debugMu.Unlock()
}
