package otel

import (
	"fmt"
	"os"
	"sync/atomic"
)

// traceEnabled is read on the UI goroutine and written by tests.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("POPCORN_TRACE") != "")
}

// TraceEnabled reports whether POPCORN_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}

// TraceMsg records that the UI received msg. No-op unless tracing is enabled.
func TraceMsg(l *Logger, msg any) {
	if !TraceEnabled() || msg == nil {
		return
	}
	l.Emit(Event{Level: LevelDebug, Kind: KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
}
