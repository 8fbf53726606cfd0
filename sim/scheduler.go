package sim

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"shenzhenvm/errcode"
)

// Logger is the minimal diagnostic sink the scheduler reports through. It
// is satisfied by internal/logx's wrapper over a logiface logger; tests and
// callers that don't care can pass NoopLogger{}.
type Logger interface {
	Warn(msg string, kv map[string]any)
}

// NoopLogger discards everything. It is the Scheduler's default.
type NoopLogger struct{}

func (NoopLogger) Warn(string, map[string]any) {}

// watchdogTimeout bounds how long the scheduler will wait for a sleep
// report before concluding a controller has hung outright rather than
// merely blocked on a rendezvous (§4.4).
const watchdogTimeout = 500 * time.Millisecond

type sleepMsg struct {
	name  string
	token SleepToken
	wake  chan bool
}

type sleeperEntry struct {
	token SleepToken
	wake  chan bool
}

// Scheduler is the global clock. It owns the sleeper registry and is the
// sole authority that advances simulated time; every controller goroutine
// talks to it only through the Context handle it was given at start (§4.4).
//
// A Scheduler is not safe for concurrent use by multiple goroutines: like
// the original, it is meant to be driven by one owner (a CSV harness, a
// REPL, a test) calling Advance/End in sequence.
type Scheduler struct {
	time     int32
	msgCh    chan sleepMsg
	sleepers map[string]sleeperEntry
	log      Logger
	wg       sync.WaitGroup
}

// Option configures a Scheduler at construction.
type Option func(*Scheduler)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New spawns one goroutine per ControllerSpec and blocks until every one
// of them has posted its startup handshake. This is a deliberate departure
// from the original implementation, which populated its sleeper registry
// lazily on the first call to Advance; this package's contract is that a
// *Scheduler returned from New is immediately in a well-defined, fully
// registered state (see DESIGN.md).
func New(specs []ControllerSpec, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		msgCh:    make(chan sleepMsg),
		sleepers: make(map[string]sleeperEntry),
		log:      NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(len(specs))
	for _, spec := range specs {
		go runController(spec, s)
	}

	if err := s.awaitSleepers(len(specs)); err != nil {
		return nil, fmt.Errorf("scheduler startup: %w", err)
	}
	return s, nil
}

// postSleep is called from a controller goroutine to report the condition
// it is parking on, and blocks until the scheduler wakes it. The boolean
// result is false only once, at shutdown.
func (s *Scheduler) postSleep(name string, token SleepToken) bool {
	wake := make(chan bool)
	s.msgCh <- sleepMsg{name: name, token: token, wake: wake}
	return <-wake
}

// awaitSleepers blocks until `expected` controllers have reported a sleep
// condition, rebasing each posted Time(n) against the current tick. It is
// the bounded-receive watchdog (§4.4): a single missing report within the
// timeout window is treated as a hung controller, not a deadlock.
func (s *Scheduler) awaitSleepers(expected int) error {
	for i := 0; i < expected; i++ {
		select {
		case msg := <-s.msgCh:
			s.sleepers[msg.name] = sleeperEntry{
				token: msg.token.rebase(s.time),
				wake:  msg.wake,
			}
		case <-time.After(watchdogTimeout):
			return errcode.New(errcode.Watchdog, "scheduler.awaitSleepers",
				fmt.Sprintf("timed out waiting for %d sleep report(s) at t=%d (%d received)",
					expected, s.time, i))
		}
	}
	return nil
}

// Time returns the current simulated tick.
func (s *Scheduler) Time() int32 { return s.time }

// Advance moves the clock forward one tick and runs the wake-loop fixed
// point: repeatedly wake every sleeper whose condition is now satisfied,
// wait for each of them to report a new condition, and repeat until a pass
// wakes no one. If sleepers remain and every one of them is blocked on an
// XBus rendezvous (never on a future Time), nothing in the simulation can
// make further progress and Advance reports a deadlock (§4.4, §7).
func (s *Scheduler) Advance() error {
	s.time++

	for {
		runCount := 0
		for _, name := range sortedKeys(s.sleepers) {
			entry, ok := s.sleepers[name]
			if !ok {
				continue // woken earlier this pass by a prior iteration's side effect
			}
			if entry.token.runnable(s.time, name) {
				delete(s.sleepers, name)
				entry.wake <- true
				runCount++
			}
		}
		if runCount == 0 {
			break
		}
		if err := s.awaitSleepers(runCount); err != nil {
			s.log.Warn("watchdog timeout", map[string]any{"t": s.time, "error": err.Error()})
			return err
		}
	}

	if len(s.sleepers) == 0 {
		return nil
	}
	stuck := make([]string, 0, len(s.sleepers))
	for _, name := range sortedKeys(s.sleepers) {
		if !s.sleepers[name].token.blocking() {
			return nil // at least one sleeper is waiting on a future tick or an slx, not a rendezvous
		}
		stuck = append(stuck, fmt.Sprintf("%s=%s", name, s.sleepers[name].token))
	}
	s.log.Warn("deadlock", map[string]any{"t": s.time, "stuck": stuck})
	return errcode.New(errcode.Deadlock, "scheduler.Advance",
		fmt.Sprintf("t=%d: all %d remaining controller(s) blocked: %s",
			s.time, len(stuck), strings.Join(stuck, ", ")))
}

// End terminates the simulation: every parked controller is woken with a
// false result (the signal to stop looping), then End joins every
// controller goroutine New spawned before returning, so the caller can
// assume no controller is still running once End has returned.
func (s *Scheduler) End() {
	s.time = -1
	for _, entry := range s.sleepers {
		entry.wake <- false
	}
	s.sleepers = make(map[string]sleeperEntry)
	s.wg.Wait()
}
