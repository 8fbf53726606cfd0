package sim

import "strconv"

// tokenKind distinguishes the four sleep conditions a controller can park
// on. Only xbusRead and xbusWrite are blocking (§4.4): a controller parked
// on either is waiting for a rendezvous partner, not for a clock tick or a
// merely-possible read.
type tokenKind uint8

const (
	tokenTime tokenKind = iota
	tokenXBusSleep
	tokenXBusRead
	tokenXBusWrite
)

// SleepToken is the condition a parked controller is waiting on. It is
// immutable and safe to share; construct one with Time or an XBus method,
// never directly.
type SleepToken struct {
	kind tokenKind
	at   int32 // tokenTime only: relative steps as posted, absolute tick once rebased
	bus  *XBus // xbus tokens only
}

// Time parks the caller for n timesteps: time_at_post + n. Time(0) parks
// until the very next Advance call.
func Time(n int32) SleepToken { return SleepToken{kind: tokenTime, at: n} }

func xbusSleepToken(b *XBus) SleepToken { return SleepToken{kind: tokenXBusSleep, bus: b} }
func xbusReadToken(b *XBus) SleepToken  { return SleepToken{kind: tokenXBusRead, bus: b} }
func xbusWriteToken(b *XBus) SleepToken { return SleepToken{kind: tokenXBusWrite, bus: b} }

// blocking reports whether this token classifies as a stuck controller if
// it is still present after a tick's wake-loop fixed point (§4.4, §7).
func (t SleepToken) blocking() bool {
	return t.kind == tokenXBusRead || t.kind == tokenXBusWrite
}

// rebase turns a posted Time(n) into an absolute Time(now+n). Non-Time
// tokens pass through unchanged; this is the scheduler's await_sleepers
// step (§4.4 construction step 3, advance step 2c).
func (t SleepToken) rebase(now int32) SleepToken {
	if t.kind == tokenTime {
		return SleepToken{kind: tokenTime, at: now + t.at}
	}
	return t
}

// runnable evaluates the table in §4.4 step 2a for a sleeper parked under
// the given controller name.
func (t SleepToken) runnable(now int32, name string) bool {
	switch t.kind {
	case tokenTime:
		return now >= t.at
	case tokenXBusSleep:
		return t.bus.CanRead()
	case tokenXBusRead:
		return !t.bus.isReadPending(name)
	case tokenXBusWrite:
		return !t.bus.isWritePending(name)
	default:
		return false
	}
}

// String renders a short diagnostic form, used in deadlock/watchdog
// messages — never exposed to controllers.
func (t SleepToken) String() string {
	switch t.kind {
	case tokenTime:
		return "Time(" + strconv.Itoa(int(t.at)) + ")"
	case tokenXBusSleep:
		return "XBusSleep"
	case tokenXBusRead:
		return "XBusRead"
	case tokenXBusWrite:
		return "XBusWrite"
	default:
		return "Unknown"
	}
}
