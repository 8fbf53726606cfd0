// Package logx builds the one process-wide logger every other package
// reports diagnosable events through (deadlock, watchdog, output-sink
// writes). It wires github.com/joeycumines/logiface onto
// github.com/joeycumines/logiface-slog, the same "one injected Logger
// value, never ad hoc prints" convention the teacher repo used with its
// own hand-rolled Logger, but backed by a real structured-logging stack
// since this program targets hosted Go, not TinyGo.
package logx

import (
	"log/slog"
	"os"

	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

// Logger is the shape every sim.Logger-consuming component depends on.
type Logger = *logiface.Logger[*islog.Event]

// New builds a Logger backed by a JSON slog handler writing to os.Stderr,
// at the given minimum level.
func New(level slog.Level) Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return islog.L.New(islog.L.WithSlogHandler(handler))
}

// Discard builds a Logger that drops everything; useful for tests and for
// callers that genuinely don't want diagnostics.
func Discard() Logger {
	handler := slog.NewJSONHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return islog.L.New(islog.L.WithSlogHandler(handler))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// SchedulerAdapter adapts a Logger to sim.Logger's single-method contract.
type SchedulerAdapter struct {
	L Logger
}

func (a SchedulerAdapter) Warn(msg string, kv map[string]any) {
	b := a.L.Warning()
	for k, v := range kv {
		b = b.Interface(k, v)
	}
	b.Log(msg)
}

// OutputAdapter adapts a Logger to outputsink.Logger's single-method
// contract, reporting every write an output peripheral sees.
type OutputAdapter struct {
	L Logger
}

func (a OutputAdapter) Info(name string, val int32) {
	a.L.Info().Str("sink", name).Int("value", int(val)).Log("output write")
}
