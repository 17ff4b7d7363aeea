package timing

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidState is returned by Start and StartReverse when the
	// animator is already running or paused.
	ErrInvalidState = errors.New("timing: animator is not idle")
	// ErrNoTimingSource is returned by Build when neither the builder nor
	// its defaults supply a TimingSource.
	ErrNoTimingSource = errors.New("timing: no timing source")
	// ErrInvalidDuration is returned for a zero or negative duration.
	ErrInvalidDuration = errors.New("timing: duration must be positive or InfiniteDuration")
	// ErrInvalidStartDelay is returned for a negative start delay.
	ErrInvalidStartDelay = errors.New("timing: start delay must not be negative")
	// ErrInvalidRepeatCount is returned for a repeat count that is not
	// positive and not InfiniteRepeat.
	ErrInvalidRepeatCount = errors.New("timing: repeat count must be positive or InfiniteRepeat")
	// ErrNilTarget is returned when a nil TimingTarget is added.
	ErrNilTarget = errors.New("timing: nil timing target")
	// ErrSourceInitialized is returned by TimingSource.Init on a source
	// that is already running.
	ErrSourceInitialized = errors.New("timing: timing source already initialized")
)

// TargetError records a panic raised by a TimingTarget callback.
type TargetError struct {
	// Op names the callback, e.g. "TimingEvent".
	Op string
	// Target is the target that panicked.
	Target TimingTarget
	// Value is the value passed to panic().
	Value any
	// StackTrace is the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic was recovered.
	Timestamp time.Time
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("timing target %T panicked in %s: %v", e.Target, e.Op, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *TargetError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// An ErrorHandler receives target failures. It is called on the goroutine
// that was dispatching the callback.
type ErrorHandler interface {
	HandleTargetError(err *TargetError)
}

// ErrorHandlerFunc adapts a function to ErrorHandler.
type ErrorHandlerFunc func(err *TargetError)

// HandleTargetError calls f(err).
func (f ErrorHandlerFunc) HandleTargetError(err *TargetError) {
	f(err)
}

// LogHandler writes target failures to a logger.
type LogHandler struct {
	// Logger receives the output; nil means log.Default().
	Logger *log.Logger
	// Verbose adds the stack trace.
	Verbose bool
}

// HandleTargetError logs err.
func (h *LogHandler) HandleTargetError(err *TargetError) {
	if err == nil {
		return
	}
	l := h.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf("[timing] %v", err)
	if h.Verbose && err.StackTrace != "" {
		l.Printf("[timing] stack trace:\n%s", err.StackTrace)
	}
}

// captureStack returns the current call stack, skipping the recovery
// frames.
func captureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(4, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteString("\n")
		if !more {
			break
		}
	}
	return sb.String()
}
