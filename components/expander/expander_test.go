package expander

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"shenzhenvm/sim"
)

func TestExpanderReadProjectsDigitsToWeights(t *testing.T) {
	p0, p1, p2 := sim.NewSimplePin(), sim.NewSimplePin(), sim.NewSimplePin()
	e := &Expander{p0: p0, p1: p1, p2: p2}

	assert.Equal(t, int32(0), e.Read())

	p0.Store(100)
	assert.Equal(t, int32(1), e.Read())

	p1.Store(100)
	assert.Equal(t, int32(11), e.Read())

	p2.Store(100)
	assert.Equal(t, int32(111), e.Read())

	p0.Store(49) // below threshold
	assert.Equal(t, int32(110), e.Read())
}

func TestExpanderWriteDecomposesDigits(t *testing.T) {
	p0, p1, p2 := sim.NewSimplePin(), sim.NewSimplePin(), sim.NewSimplePin()
	e := &Expander{p0: p0, p1: p1, p2: p2}

	e.Write(205)
	assert.Equal(t, int32(100), p2.Load())
	assert.Equal(t, int32(0), p1.Load())
	assert.Equal(t, int32(100), p0.Load())

	e.Write(-40)
	assert.Equal(t, int32(0), p2.Load())
	assert.Equal(t, int32(100), p1.Load())
	assert.Equal(t, int32(0), p0.Load())
}

func TestExpanderNilPinsAreSkipped(t *testing.T) {
	p0 := sim.NewSimplePin()
	e := &Expander{p0: p0}

	assert.NotPanics(t, func() { e.Write(123) })
	assert.Equal(t, int32(100), p0.Load())
	assert.Equal(t, int32(1), e.Read())
}

func TestNewWiresAllThreeBusesAsSourceAndSink(t *testing.T) {
	p0 := sim.NewSimplePin()
	x0, x1, x2 := New(p0, nil, nil)

	ctx := sim.NewContext("w", func(sim.SleepToken) bool { return true })
	for _, b := range []*sim.XBus{x0, x1, x2} {
		assert.True(t, b.CanRead())
		p0.Store(0)
		assert.True(t, b.Write(ctx, 1))
		assert.Equal(t, int32(100), p0.Load())
	}
}
