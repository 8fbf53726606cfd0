package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"shenzhenvm/scenario"
	"shenzhenvm/sim"
)

func buildTestScenario(t *testing.T) (*sim.Scheduler, *scenario.Wiring) {
	t.Helper()
	doc := `{
	  "pins": ["a"],
	  "buses": [],
	  "peripherals": [{"type": "outputsink", "bus": "out"}],
	  "controllers": []
	}`
	sched, w, err := scenario.Build([]byte(doc), nil)
	require.NoError(t, err)
	return sched, w
}

func TestReplPinSetAndGet(t *testing.T) {
	sched, w := buildTestScenario(t)
	defer sched.End()

	var out bytes.Buffer
	r := &repl{wiring: w, out: &out}

	require.NoError(t, r.dispatch(sched, []string{"pin", "set", "a", "7"}))
	out.Reset()
	require.NoError(t, r.dispatch(sched, []string{"pin", "get", "a"}))
	require.Equal(t, "7\n", out.String())
}

func TestReplDrainReturnsQueuedValues(t *testing.T) {
	sched, w := buildTestScenario(t)
	defer sched.End()

	w.Sinks["out"].Write(3)
	w.Sinks["out"].Write(4)

	var out bytes.Buffer
	r := &repl{wiring: w, out: &out}
	require.NoError(t, r.dispatch(sched, []string{"drain", "out"}))
	require.Equal(t, "[3 4]\n", out.String())
}

func TestReplUnknownCommandErrors(t *testing.T) {
	sched, w := buildTestScenario(t)
	defer sched.End()

	r := &repl{wiring: w, out: &bytes.Buffer{}}
	require.Error(t, r.dispatch(sched, []string{"frobnicate"}))
}

func TestReplPinSetRejectsUnknownName(t *testing.T) {
	sched, w := buildTestScenario(t)
	defer sched.End()

	r := &repl{wiring: w, out: &bytes.Buffer{}}
	require.Error(t, r.dispatch(sched, []string{"pin", "set", "nope", "1"}))
}
