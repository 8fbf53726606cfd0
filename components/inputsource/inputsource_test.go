package inputsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockingCanReadReflectsQueue(t *testing.T) {
	s, _ := Blocking()
	assert.False(t, s.CanRead())
	s.Inject(5)
	assert.True(t, s.CanRead())
}

func TestBlockingReadDrainsFIFO(t *testing.T) {
	s, _ := Blocking()
	s.Inject(1)
	s.Inject(2)
	require.Equal(t, int32(1), s.Read())
	require.Equal(t, int32(2), s.Read())
	assert.False(t, s.CanRead())
}

func TestNonBlockingAlwaysReadable(t *testing.T) {
	s, _ := NonBlocking()
	assert.True(t, s.CanRead())
	assert.Equal(t, int32(emptySentinel), s.Read())

	s.Inject(9)
	assert.Equal(t, int32(9), s.Read())
	assert.True(t, s.CanRead())
	assert.Equal(t, int32(emptySentinel), s.Read())
}

func TestInjectCrossesTimestepBoundaries(t *testing.T) {
	s, _ := Blocking()
	s.Inject(1)
	s.Inject(2)
	s.Inject(3)
	require.Equal(t, int32(1), s.Read())
	// values 2 and 3 remain queued for a future timestep
	assert.True(t, s.CanRead())
}
