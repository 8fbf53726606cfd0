// Package inputsource puts external program input onto an XBus. It is
// grounded on original_source/src/components/inputsource.rs.
package inputsource

import (
	"sync"

	"shenzhenvm/sim"
)

// emptySentinel is the value a non-blocking source yields when its queue
// is empty, matching the original's -999.
const emptySentinel = -999

// Mode selects how a source behaves when its queue is empty.
type Mode int

const (
	// ModeBlocking reports CanRead() == false while the queue is empty, so a
	// reader suspends through the normal XBus resolution path (I6)
	// instead of ever reading a sentinel.
	ModeBlocking Mode = iota
	// ModeNonBlocking always reports CanRead() == true and yields
	// emptySentinel instead of suspending when the queue is empty.
	ModeNonBlocking
)

// Source is a queue-backed XBus source. Values are appended with Inject,
// which — unlike a controller's XBus write — may be called at any time,
// including across timestep boundaries; it is the one sanctioned way
// program input enters the simulation outside of a controller.
type Source struct {
	mode Mode

	mu    sync.Mutex
	queue []int32
}

// New builds a Source of the given mode and a bus already connected to it.
func New(mode Mode) (*Source, *sim.XBus) {
	s := &Source{mode: mode}
	bus := sim.NewXBus("input")
	bus.ConnectSource(s)
	return s, bus
}

// Blocking is a convenience constructor for New(ModeBlocking).
func Blocking() (*Source, *sim.XBus) { return New(ModeBlocking) }

// NonBlocking is a convenience constructor for New(ModeNonBlocking).
func NonBlocking() (*Source, *sim.XBus) { return New(ModeNonBlocking) }

// Inject appends value to the queue.
func (s *Source) Inject(value int32) {
	s.mu.Lock()
	s.queue = append(s.queue, value)
	s.mu.Unlock()
}

// CanRead reports queue non-emptiness in Blocking mode, always true in
// NonBlocking mode.
func (s *Source) CanRead() bool {
	if s.mode == ModeNonBlocking {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0
}

// Read pops the front of the queue. The bus only calls Read immediately
// after CanRead reported true, so a Blocking source's queue is guaranteed
// non-empty here; a NonBlocking source falls back to emptySentinel.
func (s *Source) Read() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return emptySentinel
	}
	v := s.queue[0]
	s.queue = s.queue[1:]
	return v
}
