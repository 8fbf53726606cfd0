package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shenzhenvm/sim"
)

// spinningContext never actually parks in these tests: RAM's address and
// data buses always have a connected source and sink, so every Read/Write
// below resolves synchronously.
func spinningContext(name string) *sim.Context {
	return sim.NewContext(name, func(sim.SleepToken) bool { return true })
}

func TestAdjustIndexTrueModulo(t *testing.T) {
	assert.Equal(t, 0, adjustIndex(0))
	assert.Equal(t, 0, adjustIndex(14))
	assert.Equal(t, 13, adjustIndex(-1))
	assert.Equal(t, 12, adjustIndex(-2))
	assert.Equal(t, 13, adjustIndex(-15))
}

func TestRAMDataPinReadWriteAutoIncrements(t *testing.T) {
	m := &memory{}
	d0 := &dataPin{mem: m, index: 0}

	d0.Write(7)
	d0.Write(8)
	require.Equal(t, 2, m.pointers[0])

	a0 := &addrPin{mem: m, index: 0}
	a0.Write(0)

	assert.Equal(t, int32(7), d0.Read())
	assert.Equal(t, int32(8), d0.Read())
	assert.Equal(t, 2, m.pointers[0])
}

func TestAddrPinWrapsNegativeWrite(t *testing.T) {
	m := &memory{}
	a0 := &addrPin{mem: m, index: 0}

	a0.Write(-1)
	assert.Equal(t, int32(13), a0.Read())
}

func TestROMDataPinHasNoSinkButIsAlwaysReadable(t *testing.T) {
	pins := ROM([cellCount]int32{1, 2, 3})
	assert.True(t, pins.Data0.CanRead())

	// With no sink, a write suspends on the bus instead of resolving.
	posted := false
	ctx := sim.NewContext("w", func(sim.SleepToken) bool { posted = true; return false })
	assert.False(t, pins.Data0.Write(ctx, 5))
	assert.True(t, posted)
}

func TestRAMRoundTripThroughAddrAndDataBuses(t *testing.T) {
	pins := RAM()

	require.True(t, pins.Addr0.Write(spinningContext("w"), 5))
	require.True(t, pins.Data0.Write(spinningContext("w"), 99))

	require.True(t, pins.Addr0.Write(spinningContext("w"), 5))
	val, ok := pins.Data0.Read(spinningContext("r"))
	require.True(t, ok)
	assert.Equal(t, int32(99), val)
}
