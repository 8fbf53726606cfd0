package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spinningContext returns a Context whose post function busy-waits until
// the posted token is runnable, then returns true. It stands in for a real
// Scheduler in tests that only care about XBus resolution, not tick
// advancement.
func spinningContext(name string) *Context {
	return &Context{
		name: name,
		post: func(t SleepToken) bool {
			for !t.runnable(0, name) {
				time.Sleep(time.Millisecond)
			}
			return true
		},
	}
}

type fakeSource struct {
	ready bool
	val   int32
}

func (f *fakeSource) CanRead() bool { return f.ready }
func (f *fakeSource) Read() int32   { return f.val }

type fakeSink struct {
	writes []int32
}

func (f *fakeSink) Write(val int32) { f.writes = append(f.writes, val) }

func TestXBusSourceFastPath(t *testing.T) {
	b := NewXBus("b")
	src := &fakeSource{ready: true, val: 9}
	b.ConnectSource(src)

	assert.True(t, b.CanRead())

	ctx := spinningContext("r")
	val, ok := b.Read(ctx)
	require.True(t, ok)
	assert.Equal(t, int32(9), val)
}

func TestXBusSinkFastPath(t *testing.T) {
	b := NewXBus("b")
	sink := &fakeSink{}
	b.ConnectSink(sink)

	ctx := spinningContext("w")
	ok := b.Write(ctx, 5)
	require.True(t, ok)
	assert.Equal(t, []int32{5}, sink.writes)
}

func TestXBusSinkRegistrationOrderWins(t *testing.T) {
	b := NewXBus("b")
	first := &fakeSink{}
	second := &fakeSink{}
	b.ConnectSink(first)
	b.ConnectSink(second)

	ctx := spinningContext("w")
	require.True(t, b.Write(ctx, 1))
	assert.Equal(t, []int32{1}, first.writes)
	assert.Empty(t, second.writes)
}

func TestXBusPendingWriterThenReader(t *testing.T) {
	b := NewXBus("b")

	done := make(chan bool, 1)
	go func() {
		ctx := spinningContext("writer")
		done <- b.Write(ctx, 77)
	}()

	require.Eventually(t, func() bool { return b.isWritePending("writer") }, time.Second, time.Millisecond)

	rctx := spinningContext("reader")
	val, ok := b.Read(rctx)
	require.True(t, ok)
	assert.Equal(t, int32(77), val)
	assert.True(t, <-done)
}

func TestXBusPendingReaderThenWriter(t *testing.T) {
	b := NewXBus("b")

	type result struct {
		val int32
		ok  bool
	}
	done := make(chan result, 1)
	go func() {
		ctx := spinningContext("reader")
		val, ok := b.Read(ctx)
		done <- result{val, ok}
	}()

	require.Eventually(t, func() bool { return b.isReadPending("reader") }, time.Second, time.Millisecond)

	wctx := spinningContext("writer")
	require.True(t, b.Write(wctx, 42))

	r := <-done
	require.True(t, r.ok)
	assert.Equal(t, int32(42), r.val)
}

func TestXBusPendingWritersTieBreakLowestNameWins(t *testing.T) {
	b := NewXBus("b")

	go func() { _ = b.Write(spinningContext("bob"), 2) }()
	go func() { _ = b.Write(spinningContext("alice"), 1) }()

	require.Eventually(t, func() bool {
		return b.isWritePending("bob") && b.isWritePending("alice")
	}, time.Second, time.Millisecond)

	rctx := spinningContext("reader")
	val, ok := b.Read(rctx)
	require.True(t, ok)
	assert.Equal(t, int32(1), val) // alice sorts before bob
}

func TestXBusCanReadWithNoSourcesOrPendingWriters(t *testing.T) {
	b := NewXBus("b")
	assert.False(t, b.CanRead())
}
