package errors

import (
	"log"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// Sink receives errors raised by subscription callbacks after setup.
type Sink interface {
	HandleError(err error)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(err error)

func (f SinkFunc) HandleError(err error) {
	f(err)
}

// LogSink writes errors to a logger. A nil Logger uses the standard logger.
type LogSink struct {
	Logger *log.Logger
	// Verbose includes stack traces of recovered panics.
	Verbose bool
}

func (s *LogSink) HandleError(err error) {
	logf := log.Printf
	if s.Logger != nil {
		logf = s.Logger.Printf
	}
	if p, ok := err.(*PanicError); ok && s.Verbose && p.StackTrace != "" {
		logf("%v\n%s", err, p.StackTrace)
		return
	}
	logf("%v", err)
}

var (
	defaultSink Sink = &LogSink{}
	sinkMu      sync.RWMutex
)

// SetDefaultSink replaces the process-wide sink.
// Pass nil to restore the default LogSink.
func SetDefaultSink(s Sink) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if s == nil {
		defaultSink = &LogSink{}
	} else {
		defaultSink = s
	}
}

// DefaultSink returns the process-wide sink.
func DefaultSink() Sink {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return defaultSink
}

// Report sends err to sink, or to the default sink when sink is nil.
func Report(sink Sink, err error) {
	if err == nil {
		return
	}
	if sink == nil {
		sink = DefaultSink()
	}
	sink.HandleError(err)
}

// Recover is a helper for deferred panic recovery.
// Usage: defer errors.Recover("operation.name", sink)
func Recover(op string, sink Sink) {
	if r := recover(); r != nil {
		Report(sink, &PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
		})
	}
}

// CaptureStack returns the current call stack as a string.
// It skips the frames of CaptureStack and its direct callers in this package.
func CaptureStack() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.Function, "runtime.") {
			sb.WriteString(frame.Function)
			sb.WriteString("\n\t")
			sb.WriteString(frame.File)
			sb.WriteString(":")
			sb.WriteString(strconv.Itoa(frame.Line))
			sb.WriteString("\n")
		}
		if !more {
			break
		}
	}
	return sb.String()
}
