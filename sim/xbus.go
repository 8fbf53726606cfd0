package sim

import (
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/maps"
)

// Source is the read-only half of a peripheral capability contract
// (§4.3, §6). CanRead must never block; Read is only ever called by the
// bus immediately after CanRead reported true.
type Source interface {
	CanRead() bool
	Read() int32
}

// Sink is the write-only half of a peripheral capability contract. Write
// must never block.
type Sink interface {
	Write(val int32)
}

// XBus is the rendezvous channel: a multi-producer/multi-consumer bus that
// either resolves a read/write immediately against a pending counterpart or
// a connected peripheral, or suspends the caller until it can (§4.3).
//
// The inner lock is held only for the duration of a resolution check, never
// across a suspension (§5).
type XBus struct {
	name string // diagnostic label only, e.g. for deadlock messages

	mu      sync.Mutex
	sources []Source
	sinks   []Sink

	pendingReaders map[string]*atomic.Int32 // name -> cell the writer will fill
	pendingWriters map[string]int32         // name -> value waiting for a reader
}

// NewXBus returns an unconnected bus. name is used only in diagnostics.
func NewXBus(name string) *XBus {
	return &XBus{
		name:           name,
		pendingReaders: make(map[string]*atomic.Int32),
		pendingWriters: make(map[string]int32),
	}
}

// Name returns the bus's diagnostic label.
func (b *XBus) Name() string { return b.name }

// ConnectSource registers a peripheral as a read endpoint. Must be called
// before the scheduler starts (§4.3); the bus never removes sources.
func (b *XBus) ConnectSource(s Source) {
	b.mu.Lock()
	b.sources = append(b.sources, s)
	b.mu.Unlock()
}

// ConnectSink registers a peripheral as a write endpoint, in registration
// order (first-registered-wins on write, §9).
func (b *XBus) ConnectSink(s Sink) {
	b.mu.Lock()
	b.sinks = append(b.sinks, s)
	b.mu.Unlock()
}

// CanRead reports whether a read would resolve immediately: a pending
// writer exists, or a connected source is itself readable (I1-I6).
func (b *XBus) CanRead() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canReadLocked()
}

func (b *XBus) canReadLocked() bool {
	if len(b.pendingWriters) > 0 {
		return true
	}
	for _, s := range b.sources {
		if s.CanRead() {
			return true
		}
	}
	return false
}

func (b *XBus) isReadPending(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pendingReaders[name]
	return ok
}

func (b *XBus) isWritePending(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pendingWriters[name]
	return ok
}

// sortedKeys gives a deterministic order over a map's string keys — the
// "lowest name wins" tie-break §9 pins down where the original left an
// unordered hash iteration.
func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	sort.Strings(keys)
	return keys
}

// Sleep parks until CanRead() would return true (§4.3). NB: even after
// returning, an immediate Read on the same bus may still suspend — every
// controller slx-ing on a bus wakes the moment anything becomes readable,
// even though only one of them will actually get to consume it (§9
// wake-all-on-slx; this is deliberate and must not be "fixed").
func (b *XBus) Sleep(ctx *Context) bool {
	if b.CanRead() {
		return true
	}
	return ctx.post(xbusSleepToken(b))
}

// Read resolves against a pending writer, then a readable source, else
// suspends the caller (§4.3 read resolution order). Returns false if the
// simulation is shutting down.
func (b *XBus) Read(ctx *Context) (int32, bool) {
	b.mu.Lock()
	if len(b.pendingWriters) > 0 {
		name := sortedKeys(b.pendingWriters)[0]
		val := b.pendingWriters[name]
		delete(b.pendingWriters, name)
		b.mu.Unlock()
		return val, true
	}

	for _, s := range b.sources {
		if s.CanRead() {
			val := s.Read()
			b.mu.Unlock()
			return val, true
		}
	}

	cell := new(atomic.Int32)
	b.pendingReaders[ctx.name] = cell
	b.mu.Unlock()

	if !ctx.post(xbusReadToken(b)) {
		return 0, false
	}
	return cell.Load(), true
}

// Write resolves against a pending reader, then a connected sink, else
// suspends the caller (§4.3 write resolution order). Returns false if the
// simulation is shutting down.
func (b *XBus) Write(ctx *Context, val int32) bool {
	b.mu.Lock()
	if len(b.pendingReaders) > 0 {
		name := sortedKeys(b.pendingReaders)[0]
		cell := b.pendingReaders[name]
		delete(b.pendingReaders, name)
		cell.Store(val)
		b.mu.Unlock()
		return true
	}

	if len(b.sinks) > 0 {
		sink := b.sinks[0]
		b.mu.Unlock()
		sink.Write(val)
		return true
	}

	b.pendingWriters[ctx.name] = val
	b.mu.Unlock()

	return ctx.post(xbusWriteToken(b))
}
