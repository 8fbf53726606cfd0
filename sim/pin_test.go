package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimplePinZeroValue(t *testing.T) {
	p := NewSimplePin()
	assert.Equal(t, int32(0), p.Load())
}

func TestSimplePinStoreLoad(t *testing.T) {
	p := NewSimplePin()
	p.Store(42)
	assert.Equal(t, int32(42), p.Load())
	p.Store(-7)
	assert.Equal(t, int32(-7), p.Load())
}
