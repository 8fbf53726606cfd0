// Package outputsink implements the output peripheral: an XBus sink that
// reports every write and retains it for later inspection. The original
// (original_source/src/components/outputsink.rs) only printed each write;
// the CSV harness example the original source tree ships
// (examples/doubler.rs) references a newer `queue_into` verification API
// that wasn't present in the kept Rust file, so the replay queue here is a
// supplemented feature (SPEC_FULL.md §3) reconciling the two.
package outputsink

import (
	"sync"

	"shenzhenvm/sim"
)

// Logger is the minimal shape outputsink needs to report a write;
// satisfied by internal/logx's Logger via a small adapter, or left nil to
// disable reporting.
type Logger interface {
	Info(name string, val int32)
}

// Sink is an XBus sink that logs every write and buffers it into a
// replay queue a CSV harness (or REPL) can drain after each tick.
type Sink struct {
	name string
	log  Logger

	mu     sync.Mutex
	queued []int32
}

// New builds a Sink named name (used only in diagnostics) and a bus
// already connected to it as a sink. log may be nil to skip reporting.
func New(name string, log Logger) (*Sink, *sim.XBus) {
	s := &Sink{name: name, log: log}
	bus := sim.NewXBus(name)
	bus.ConnectSink(s)
	return s, bus
}

// Write records val into the replay queue and reports it if a Logger was
// supplied.
func (s *Sink) Write(val int32) {
	s.mu.Lock()
	s.queued = append(s.queued, val)
	s.mu.Unlock()

	if s.log != nil {
		s.log.Info(s.name, val)
	}
}

// Drain returns every value written since the last Drain and clears the
// queue. A CSV harness calls this once per timestep to compare against an
// expected space-separated field.
func (s *Sink) Drain() []int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.queued
	s.queued = nil
	return out
}
