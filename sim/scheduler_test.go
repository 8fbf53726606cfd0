package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shenzhenvm/errcode"
)

func TestSchedulerNewBlocksUntilAllHandshake(t *testing.T) {
	specs := []ControllerSpec{
		{Name: "a", Body: func(ctx *Context, state *State) error {
			if !ctx.Sleep(1) {
				return errors.New("stop")
			}
			return nil
		}},
		{Name: "b", Body: func(ctx *Context, state *State) error {
			if !ctx.Sleep(1) {
				return errors.New("stop")
			}
			return nil
		}},
	}

	s, err := New(specs)
	require.NoError(t, err)
	assert.Equal(t, int32(0), s.Time())
	s.End()
}

func TestSchedulerAdvanceProgressesTime(t *testing.T) {
	specs := []ControllerSpec{
		{Name: "looper", Body: func(ctx *Context, state *State) error {
			if !ctx.Sleep(1) {
				return errors.New("stop")
			}
			return nil
		}},
	}
	s, err := New(specs)
	require.NoError(t, err)
	defer s.End()

	for want := int32(1); want <= 3; want++ {
		require.NoError(t, s.Advance())
		assert.Equal(t, want, s.Time())
	}
}

func TestSchedulerDetectsDeadlock(t *testing.T) {
	bus := NewXBus("lonely")
	specs := []ControllerSpec{
		{Name: "blocked-reader", Body: func(ctx *Context, state *State) error {
			_, ok := bus.Read(ctx)
			if !ok {
				return errors.New("stop")
			}
			return nil
		}},
	}
	s, err := New(specs)
	require.NoError(t, err)
	defer s.End()

	err = s.Advance()
	require.Error(t, err)
	assert.Equal(t, errcode.Deadlock, errcode.Of(err))
}

func TestSchedulerWatchdogTripsOnHungController(t *testing.T) {
	calls := 0
	specs := []ControllerSpec{
		{Name: "hung", Body: func(ctx *Context, state *State) error {
			calls++
			if calls == 1 {
				if !ctx.Sleep(1) {
					return errors.New("stop")
				}
				return nil
			}
			// Second call onward: never reports back. Violates the
			// "always park before returning" contract on purpose.
			time.Sleep(2 * time.Second)
			return errors.New("stop")
		}},
	}
	s, err := New(specs)
	require.NoError(t, err)
	defer s.End()

	require.NoError(t, s.Advance()) // wakes the startup handshake; the first Body call parks on Sleep(1)

	// Wakes the Sleep(1); the controller re-enters Body and hangs.
	err = s.Advance()
	require.Error(t, err)
	assert.Equal(t, errcode.Watchdog, errcode.Of(err))
}

func TestSchedulerEndWakesParkedControllersWithFalse(t *testing.T) {
	stopped := make(chan struct{})
	specs := []ControllerSpec{
		{Name: "a", Body: func(ctx *Context, state *State) error {
			if !ctx.Sleep(100) {
				close(stopped)
				return errors.New("stop")
			}
			return nil
		}},
	}
	s, err := New(specs)
	require.NoError(t, err)
	require.NoError(t, s.Advance()) // runs Body once so it parks on Sleep(100)

	s.End()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("controller did not observe shutdown")
	}
}
